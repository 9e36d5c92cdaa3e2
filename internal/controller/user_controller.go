package controller

import (
	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/service"
	"kreuzen_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController 用户资料与管理员的用户管理
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// swagger:model SetRoleRequest
type SetRoleRequest struct {
	Role model.UserRole `json:"role" binding:"required,oneof=user moderator admin sudo"`
}

// swagger:model SetLockedRequest
type SetLockedRequest struct {
	Locked *bool `json:"locked" binding:"required"`
}

// UpdateProfile godoc
// @Summary 修改个人资料
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.UpdateProfileRequest true "资料"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Router /api/users/me [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	var req service.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	user, err := c.UserService.UpdateProfile(ctx.Request.Context(), actorOf(ctx).UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// ChangePassword godoc
// @Summary 修改密码
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ChangePasswordRequest true "旧密码与新密码"
// @Success 200 {object} util.Response "成功"
// @Failure 401 {object} util.Response "旧密码错误"
// @Router /api/users/me/password [put]
func (c *UserController) ChangePassword(ctx *gin.Context) {
	var req service.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.UserService.ChangePassword(ctx.Request.Context(), actorOf(ctx).UserID, req); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetUsers godoc
// @Summary 用户列表
// @Tags 用户管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页条数" default(20)
// @Param   search query string false "搜索关键词"
// @Success 200 {object} util.Response{data=util.PageResponse{list=[]model.User}} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/users [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	pageNum, limit := util.Pagination(ctx)
	users, total, err := c.UserService.GetUsers(ctx.Request.Context(), ctx.Query("search"), pageNum, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	page(ctx, users, total, pageNum, limit)
}

// GetUser godoc
// @Summary 获取单个用户信息
// @Tags 用户管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	user, err := c.UserService.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// SetRole godoc
// @Summary 修改用户角色
// @Description 只有 sudo 可以授予或收回 sudo
// @Tags 用户管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   body body SetRoleRequest true "角色"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/users/{id}/role [put]
func (c *UserController) SetRole(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req SetRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.UserService.SetRole(ctx.Request.Context(), actorOf(ctx), id, req.Role); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SetLocked godoc
// @Summary 锁定或解锁用户
// @Tags 用户管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   body body SetLockedRequest true "是否锁定"
// @Success 200 {object} util.Response "成功"
// @Router /api/users/{id}/lock [put]
func (c *UserController) SetLocked(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req SetLockedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.UserService.SetLocked(ctx.Request.Context(), actorOf(ctx), id, *req.Locked); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
