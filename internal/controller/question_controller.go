package controller

import (
	"kreuzen_backend/internal/repository"
	"kreuzen_backend/internal/service"
	"kreuzen_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
	MaxImageBytes   int64
}

func NewQuestionController(questionService *service.QuestionService, maxImageMB int64) *QuestionController {
	return &QuestionController{
		QuestionService: questionService,
		MaxImageBytes:   maxImageMB << 20,
	}
}

// CreateQuestion godoc
// @Summary 创建题目
// @Description 按题型创建题目，题型数据随请求体提交
// @Tags 题目
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   type path string true "题型" Enums(single-choice, multiple-choice, assignment)
// @Param   body body service.QuestionRequest true "题目"
// @Success 201 {object} util.Response{data=service.QuestionView} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "课程或考试不存在"
// @Failure 409 {object} util.Response "题型数据不合法"
// @Router /api/questions/{type} [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	// 与 /questions/:id 共用同一路径段
	t, err := service.ParseQuestionType(ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	payload, err := req.CreatePayload(t)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	q, err := c.QuestionService.Create(ctx.Request.Context(), actorOf(ctx).UserID, req.QuestionBaseRequest, payload)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, service.RenderQuestion(q))
}

// GetQuestion godoc
// @Summary 获取题目
// @Tags 题目
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response{data=service.QuestionView} "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	q, err := c.QuestionService.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, service.RenderQuestion(q))
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Description 只修改提交的字段；提交答案时整体替换。任何修改都会撤销审核状态
// @Tags 题目
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Param   body body service.QuestionRequest true "要修改的字段"
// @Success 200 {object} util.Response{data=service.QuestionView} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "题目不存在"
// @Failure 409 {object} util.Response "题型数据不合法"
// @Router /api/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionService.Update(ctx.Request.Context(), id, actorOf(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, service.RenderQuestion(q))
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 题目
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.QuestionService.Delete(ctx.Request.Context(), id, actorOf(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListQuestions godoc
// @Summary 题目列表
// @Description 非审核员只能看到已审核的题目和自己创建的题目
// @Tags 题目
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页条数" default(20)
// @Param   searchTerm query string false "关键词"
// @Param   moduleId query int false "模块"
// @Param   semesterId query int false "学期"
// @Param   courseId query int false "课程"
// @Param   examId query int false "考试"
// @Param   tagId query int false "标签"
// @Param   type query string false "题型"
// @Param   onlyApproved query bool false "仅已审核"
// @Success 200 {object} util.Response{data=util.PageResponse{list=[]service.QuestionView}} "成功"
// @Router /api/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	pageNum, limit := util.Pagination(ctx)
	filter := repository.QuestionFilter{
		SearchTerm: ctx.Query("searchTerm"),
		ModuleID:   util.QueryUint(ctx, "moduleId"),
		SemesterID: util.QueryUint(ctx, "semesterId"),
		CourseID:   util.QueryUint(ctx, "courseId"),
		ExamID:     util.QueryUint(ctx, "examId"),
		TagID:      util.QueryUint(ctx, "tagId"),
		Type:       ctx.Query("type"),
	}
	if onlyApproved := util.QueryBool(ctx, "onlyApproved"); onlyApproved != nil {
		filter.OnlyApproved = *onlyApproved
	}
	if filter.Type != "" {
		if _, err := service.ParseQuestionType(filter.Type); err != nil {
			util.HandleError(ctx, err)
			return
		}
	}

	views, total, err := c.QuestionService.List(ctx.Request.Context(), actorOf(ctx), filter, pageNum, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	page(ctx, views, total, pageNum, limit)
}

// ListByCourse godoc
// @Summary 课程下的题目
// @Tags 题目
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]service.QuestionView} "成功"
// @Router /api/courses/{id}/questions [get]
func (c *QuestionController) ListByCourse(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	views, err := c.QuestionService.ListByCourse(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

// ListByExam godoc
// @Summary 考试下的题目
// @Tags 题目
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Success 200 {object} util.Response{data=[]service.QuestionView} "成功"
// @Router /api/exams/{id}/questions [get]
func (c *QuestionController) ListByExam(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	views, err := c.QuestionService.ListByExam(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

func (c *QuestionController) setApproval(ctx *gin.Context, approved bool) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	q, err := c.QuestionService.SetApproval(ctx.Request.Context(), id, actorOf(ctx), approved)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, service.RenderQuestion(q))
}

// ApproveQuestion godoc
// @Summary 审核通过
// @Description 审核员不能审核自己最后修改的题目
// @Tags 题目
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response{data=service.QuestionView} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 409 {object} util.Response "不能审核自己的修改"
// @Router /api/questions/{id}/approve [put]
func (c *QuestionController) ApproveQuestion(ctx *gin.Context) {
	c.setApproval(ctx, true)
}

// DisapproveQuestion godoc
// @Summary 撤销审核
// @Tags 题目
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response{data=service.QuestionView} "成功"
// @Router /api/questions/{id}/disapprove [put]
func (c *QuestionController) DisapproveQuestion(ctx *gin.Context) {
	c.setApproval(ctx, false)
}

// AddTag godoc
// @Summary 为题目添加标签
// @Tags 题目
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Param   tagId path int true "标签ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/questions/{id}/tags/{tagId} [post]
func (c *QuestionController) AddTag(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	tagID, ok := util.ParamID(ctx, "tagId")
	if !ok {
		return
	}
	if err := c.QuestionService.AddTag(ctx.Request.Context(), id, tagID, actorOf(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// RemoveTag godoc
// @Summary 移除题目标签
// @Tags 题目
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Param   tagId path int true "标签ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/questions/{id}/tags/{tagId} [delete]
func (c *QuestionController) RemoveTag(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	tagID, ok := util.ParamID(ctx, "tagId")
	if !ok {
		return
	}
	if err := c.QuestionService.RemoveTag(ctx.Request.Context(), id, tagID, actorOf(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadImage godoc
// @Summary 上传题目配图
// @Tags 题目
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Param   file formData file true "图片"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "文件不合法"
// @Failure 413 {object} util.Response "文件过大"
// @Router /api/questions/{id}/image [post]
func (c *QuestionController) UploadImage(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "File is required")
		return
	}
	if c.MaxImageBytes > 0 && file.Size > c.MaxImageBytes {
		util.Error(ctx, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	url, err := c.QuestionService.AttachImage(ctx.Request.Context(), id, actorOf(ctx), file.Filename, src, file.Size)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"imageUrl": url})
}

// ListOrigins godoc
// @Summary 题目来源列表
// @Tags 题目
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.QuestionOrigin} "成功"
// @Router /api/origins [get]
func (c *QuestionController) ListOrigins(ctx *gin.Context) {
	origins, err := c.QuestionService.Origins(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, origins)
}
