package controller

import (
	"kreuzen_backend/internal/service"
	"kreuzen_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

func NewAuthController(authService *service.AuthService, userService *service.UserService) *AuthController {
	return &AuthController{
		AuthService: authService,
		UserService: userService,
	}
}

// swagger:model LoginRequest
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// swagger:model TokenRequest
type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// swagger:model PasswordResetRequest
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// swagger:model PasswordResetConfirmRequest
type PasswordResetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// Register godoc
// @Summary 注册新用户
// @Description 邮箱域名必须在所选大学的白名单内，注册后发送确认邮件
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "邮箱域名不被允许"
// @Failure 409 {object} util.Response "邮箱或用户名已被注册"
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"id": user.ID})
}

// Login godoc
// @Summary 用户登录
// @Description 使用用户名或邮箱登录
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录凭证"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 401 {object} util.Response "凭证无效"
// @Failure 403 {object} util.Response "账户被锁定或邮箱未确认"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.Login(ctx.Request.Context(), req.Login, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"token": token, "user": user})
}

// ConfirmEmail godoc
// @Summary 确认邮箱
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body TokenRequest true "确认令牌"
// @Success 200 {object} util.Response "成功"
// @Failure 401 {object} util.Response "令牌无效或过期"
// @Router /api/auth/confirm-email [post]
func (c *AuthController) ConfirmEmail(ctx *gin.Context) {
	var req TokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.AuthService.ConfirmEmail(ctx.Request.Context(), req.Token); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// RequestPasswordReset godoc
// @Summary 申请重置密码
// @Description 无论邮箱是否存在都返回成功
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body PasswordResetRequest true "邮箱"
// @Success 200 {object} util.Response "成功"
// @Router /api/auth/password-reset [post]
func (c *AuthController) RequestPasswordReset(ctx *gin.Context) {
	var req PasswordResetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.AuthService.RequestPasswordReset(ctx.Request.Context(), req.Email); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ConfirmPasswordReset godoc
// @Summary 重置密码
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body PasswordResetConfirmRequest true "令牌与新密码"
// @Success 200 {object} util.Response "成功"
// @Failure 401 {object} util.Response "令牌无效或过期"
// @Router /api/auth/password-reset/confirm [post]
func (c *AuthController) ConfirmPasswordReset(ctx *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.AuthService.ResetPassword(ctx.Request.Context(), req.Token, req.Password); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetCurrentUser godoc
// @Summary 当前用户
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/users/me [get]
func (c *AuthController) GetCurrentUser(ctx *gin.Context) {
	user, err := c.UserService.GetUserByID(ctx.Request.Context(), actorOf(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
