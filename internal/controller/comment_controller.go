package controller

import (
	"kreuzen_backend/internal/service"
	"kreuzen_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CommentController struct {
	CommentService     *service.CommentService
	ErrorReportService *service.ErrorReportService
}

func NewCommentController(commentService *service.CommentService, errorReportService *service.ErrorReportService) *CommentController {
	return &CommentController{
		CommentService:     commentService,
		ErrorReportService: errorReportService,
	}
}

// ListComments godoc
// @Summary 题目评论
// @Tags 评论
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response{data=[]model.Comment} "成功"
// @Router /api/questions/{id}/comments [get]
func (c *CommentController) ListComments(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	comments, err := c.CommentService.ListByQuestion(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, comments)
}

// CreateComment godoc
// @Summary 发表评论
// @Tags 评论
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Param   body body service.CommentRequest true "评论"
// @Success 201 {object} util.Response{data=model.Comment} "创建成功"
// @Router /api/questions/{id}/comments [post]
func (c *CommentController) CreateComment(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	comment, err := c.CommentService.Create(ctx.Request.Context(), id, actorOf(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, comment)
}

// UpdateComment godoc
// @Summary 修改评论
// @Tags 评论
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "评论ID"
// @Param   body body service.CommentRequest true "评论"
// @Success 200 {object} util.Response{data=model.Comment} "成功"
// @Router /api/comments/{id} [put]
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	comment, err := c.CommentService.Update(ctx.Request.Context(), id, actorOf(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, comment)
}

// DeleteComment godoc
// @Summary 删除评论
// @Tags 评论
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "评论ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/comments/{id} [delete]
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CommentService.Delete(ctx.Request.Context(), id, actorOf(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateErrorReport godoc
// @Summary 提交纠错
// @Tags 纠错
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Param   body body service.ErrorReportRequest true "纠错内容"
// @Success 201 {object} util.Response{data=model.ErrorReport} "创建成功"
// @Router /api/questions/{id}/error-reports [post]
func (c *CommentController) CreateErrorReport(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.ErrorReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	report, err := c.ErrorReportService.Create(ctx.Request.Context(), id, actorOf(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, report)
}

// ListErrorReports godoc
// @Summary 纠错列表
// @Tags 纠错
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId query int false "题目ID"
// @Param   resolved query bool false "是否已处理"
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页条数" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse{list=[]model.ErrorReport}} "成功"
// @Router /api/error-reports [get]
func (c *CommentController) ListErrorReports(ctx *gin.Context) {
	pageNum, limit := util.Pagination(ctx)
	reports, total, err := c.ErrorReportService.List(ctx.Request.Context(),
		util.QueryUint(ctx, "questionId"), util.QueryBool(ctx, "resolved"), pageNum, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	page(ctx, reports, total, pageNum, limit)
}

// GetErrorReport godoc
// @Summary 纠错详情
// @Tags 纠错
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "纠错ID"
// @Success 200 {object} util.Response{data=model.ErrorReport} "成功"
// @Router /api/error-reports/{id} [get]
func (c *CommentController) GetErrorReport(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	report, err := c.ErrorReportService.Get(ctx.Request.Context(), id, actorOf(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// AssignErrorReport godoc
// @Summary 认领纠错
// @Tags 纠错
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "纠错ID"
// @Success 200 {object} util.Response{data=model.ErrorReport} "成功"
// @Failure 409 {object} util.Response "已处理"
// @Router /api/error-reports/{id}/assign [put]
func (c *CommentController) AssignErrorReport(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	report, err := c.ErrorReportService.Assign(ctx.Request.Context(), id, actorOf(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// ResolveErrorReport godoc
// @Summary 处理纠错
// @Description 标记为已处理并通知提交人
// @Tags 纠错
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "纠错ID"
// @Success 200 {object} util.Response{data=model.ErrorReport} "成功"
// @Failure 409 {object} util.Response "已处理"
// @Router /api/error-reports/{id}/resolve [put]
func (c *CommentController) ResolveErrorReport(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	report, err := c.ErrorReportService.Resolve(ctx.Request.Context(), id, actorOf(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
