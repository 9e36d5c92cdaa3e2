package controller

import (
	"kreuzen_backend/internal/service"
	"kreuzen_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	SessionService   *service.SessionService
	SelectionService *service.SelectionService
}

func NewSessionController(sessionService *service.SessionService, selectionService *service.SelectionService) *SessionController {
	return &SessionController{
		SessionService:   sessionService,
		SelectionService: selectionService,
	}
}

// swagger:model RecordTimeRequest
type RecordTimeRequest struct {
	Time *int `json:"time" binding:"required,min=0"`
}

// sessionQuestionParams 解析 :id 与 :localId
func sessionQuestionParams(ctx *gin.Context) (uint, int, bool) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return 0, 0, false
	}
	localID, ok := util.ParamInt(ctx, "localId")
	if !ok {
		return 0, 0, false
	}
	return id, localID, true
}

// CreateSession godoc
// @Summary 创建练习会话
// @Description 按筛选条件组卷；isRandom 为 false 时按题目 id 升序
// @Tags 会话
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateSessionRequest true "会话"
// @Success 201 {object} util.Response{data=service.SessionView} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "没有符合条件的题目"
// @Router /api/sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	var req service.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	view, err := c.SessionService.Create(ctx.Request.Context(), actorOf(ctx).UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// ListSessions godoc
// @Summary 我的会话
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页条数" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse{list=[]model.Session}} "成功"
// @Router /api/sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	pageNum, limit := util.Pagination(ctx)
	sessions, total, err := c.SessionService.List(ctx.Request.Context(), actorOf(ctx), pageNum, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	page(ctx, sessions, total, pageNum, limit)
}

// CountPool godoc
// @Summary 统计符合条件的题目数
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   moduleIds query []int false "模块" collectionFormat(csv)
// @Param   semesterIds query []int false "学期" collectionFormat(csv)
// @Param   tagIds query []int false "标签" collectionFormat(csv)
// @Param   questionTypes query []string false "题型" collectionFormat(csv)
// @Param   questionOrigins query []string false "来源" collectionFormat(csv)
// @Param   filterTerm query string false "关键词"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/sessions/pool/count [get]
func (c *SessionController) CountPool(ctx *gin.Context) {
	filter := service.SessionFilter{
		ModuleIDs:       util.QueryUints(ctx, "moduleIds"),
		SemesterIDs:     util.QueryUints(ctx, "semesterIds"),
		TagIDs:          util.QueryUints(ctx, "tagIds"),
		QuestionTypes:   util.QueryStrings(ctx, "questionTypes"),
		QuestionOrigins: util.QueryStrings(ctx, "questionOrigins"),
		FilterTerm:      ctx.Query("filterTerm"),
	}
	count, err := c.SessionService.CountPool(ctx.Request.Context(), filter)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"count": count})
}

// GetSession godoc
// @Summary 获取会话
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	view, err := c.SessionService.Get(ctx.Request.Context(), id, actorOf(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// UpdateSession godoc
// @Summary 更新会话
// @Tags 会话
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Param   body body service.UpdateSessionRequest true "要修改的字段"
// @Success 200 {object} util.Response{data=service.SessionView} "成功"
// @Router /api/sessions/{id} [put]
func (c *SessionController) UpdateSession(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.UpdateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	view, err := c.SessionService.Update(ctx.Request.Context(), id, actorOf(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// DeleteSession godoc
// @Summary 删除会话
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/sessions/{id} [delete]
func (c *SessionController) DeleteSession(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.SessionService.Delete(ctx.Request.Context(), id, actorOf(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// FinishSession godoc
// @Summary 结束会话
// @Description 提交全部题目，结束后不能再修改作答与用时
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView} "成功"
// @Router /api/sessions/{id}/finish [post]
func (c *SessionController) FinishSession(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	view, err := c.SessionService.Finish(ctx.Request.Context(), id, actorOf(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// ListSessionQuestions godoc
// @Summary 会话题目列表
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Success 200 {object} util.Response{data=[]model.SessionQuestion} "成功"
// @Router /api/sessions/{id}/questions [get]
func (c *SessionController) ListSessionQuestions(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	sqs, err := c.SessionService.ListQuestions(ctx.Request.Context(), id, actorOf(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sqs)
}

// AddQuestionToSession godoc
// @Summary 向会话追加题目
// @Description 题目已在会话中时不变
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Param   sessionId path int true "会话ID"
// @Success 200 {object} util.Response{data=model.SessionQuestion} "成功"
// @Router /api/questions/{id}/sessions/{sessionId} [put]
func (c *SessionController) AddQuestionToSession(ctx *gin.Context) {
	questionID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	sessionID, ok := util.ParamID(ctx, "sessionId")
	if !ok {
		return
	}
	sq, err := c.SessionService.AddQuestion(ctx.Request.Context(), sessionID, questionID, actorOf(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sq)
}

// RemoveQuestionFromSession godoc
// @Summary 从会话移除题目
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Param   sessionId path int true "会话ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/questions/{id}/sessions/{sessionId} [delete]
func (c *SessionController) RemoveQuestionFromSession(ctx *gin.Context) {
	questionID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	sessionID, ok := util.ParamID(ctx, "sessionId")
	if !ok {
		return
	}
	if err := c.SessionService.RemoveQuestion(ctx.Request.Context(), sessionID, questionID, actorOf(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CountSessionQuestions godoc
// @Summary 会话题目数
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/sessions/{id}/questions/count [get]
func (c *SessionController) CountSessionQuestions(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	count, err := c.SessionService.CountQuestions(ctx.Request.Context(), id, actorOf(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"count": count})
}

// GetSessionQuestion godoc
// @Summary 按会话内序号获取题目
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Param   localId path int true "会话内序号"
// @Success 200 {object} util.Response{data=service.SessionQuestionView} "成功"
// @Router /api/sessions/{id}/questions/{localId} [get]
func (c *SessionController) GetSessionQuestion(ctx *gin.Context) {
	id, localID, ok := sessionQuestionParams(ctx)
	if !ok {
		return
	}
	view, err := c.SessionService.QuestionByLocalID(ctx.Request.Context(), id, localID, actorOf(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// GetQuestionStatus godoc
// @Summary 题目作答状态
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Param   localId path int true "会话内序号"
// @Success 200 {object} util.Response{data=service.QuestionStatus} "成功"
// @Router /api/sessions/{id}/questions/{localId}/status [get]
func (c *SessionController) GetQuestionStatus(ctx *gin.Context) {
	id, localID, ok := sessionQuestionParams(ctx)
	if !ok {
		return
	}
	status, err := c.SessionService.Status(ctx.Request.Context(), id, localID, actorOf(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// RecordTime godoc
// @Summary 记录用时
// @Tags 会话
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Param   localId path int true "会话内序号"
// @Param   body body RecordTimeRequest true "累计秒数"
// @Success 200 {object} util.Response "成功"
// @Failure 409 {object} util.Response "会话已结束"
// @Router /api/sessions/{id}/questions/{localId}/time [put]
func (c *SessionController) RecordTime(ctx *gin.Context) {
	id, localID, ok := sessionQuestionParams(ctx)
	if !ok {
		return
	}
	var req RecordTimeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.SessionService.RecordTime(ctx.Request.Context(), id, localID, *req.Time, actorOf(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SubmitQuestion godoc
// @Summary 提交题目
// @Description 重复提交不报错
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Param   localId path int true "会话内序号"
// @Success 200 {object} util.Response "成功"
// @Router /api/sessions/{id}/questions/{localId}/submit [post]
func (c *SessionController) SubmitQuestion(ctx *gin.Context) {
	id, localID, ok := sessionQuestionParams(ctx)
	if !ok {
		return
	}
	if err := c.SessionService.Submit(ctx.Request.Context(), id, localID, actorOf(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SetSelection godoc
// @Summary 保存作答
// @Description 整体替换该题的勾选、划掉或连线结果；type 必须与题型一致
// @Tags 会话
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Param   localId path int true "会话内序号"
// @Param   body body service.SelectionRequest true "作答"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "答案序号越界"
// @Failure 409 {object} util.Response "题型不符或题目已提交"
// @Router /api/sessions/{id}/questions/{localId}/selection [put]
func (c *SessionController) SetSelection(ctx *gin.Context) {
	id, localID, ok := sessionQuestionParams(ctx)
	if !ok {
		return
	}
	var req service.SelectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.SelectionService.SetSelection(ctx.Request.Context(), id, localID, actorOf(ctx), req); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetSelection godoc
// @Summary 获取作答
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Param   localId path int true "会话内序号"
// @Success 200 {object} util.Response{data=service.SelectionView} "成功"
// @Router /api/sessions/{id}/questions/{localId}/selection [get]
func (c *SessionController) GetSelection(ctx *gin.Context) {
	id, localID, ok := sessionQuestionParams(ctx)
	if !ok {
		return
	}
	view, err := c.SelectionService.GetSelection(ctx.Request.Context(), id, localID, actorOf(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// GetResult godoc
// @Summary 会话得分
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionResult} "成功"
// @Router /api/sessions/{id}/result [get]
func (c *SessionController) GetResult(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	result, err := c.SelectionService.Score(ctx.Request.Context(), id, actorOf(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
