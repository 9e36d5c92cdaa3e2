package app

import (
	"kreuzen_backend/docs"
	"kreuzen_backend/internal/config"
	"kreuzen_backend/internal/middleware"
	"kreuzen_backend/internal/model"
	"kreuzen_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerUserRoutes(authGroup, c)
		a.registerQuestionRoutes(authGroup, c)
		a.registerSessionRoutes(authGroup, c)

		// 审核员
		moderator := authGroup.Group("")
		moderator.Use(middleware.RoleMiddleware(model.RoleModerator))
		a.registerModeratorRoutes(moderator, c)

		// 管理员
		admin := authGroup.Group("")
		admin.Use(middleware.RoleMiddleware(model.RoleAdmin))
		a.registerAdminRoutes(admin, c)

		a.registerCatalogRoutes(authGroup, moderator, admin, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/universities", c.university.List)
		public.GET("/hints/random", c.hint.Random)

		auth := public.Group("/auth")
		auth.POST("/register", c.auth.Register)
		auth.POST("/login", c.auth.Login)
		auth.POST("/confirm-email", c.auth.ConfirmEmail)
		auth.POST("/password-reset", c.auth.RequestPasswordReset)
		auth.POST("/password-reset/confirm", c.auth.ConfirmPasswordReset)
	}
}

func (a *App) registerUserRoutes(r *gin.RouterGroup, c *controllers) {
	r.GET("/users/me", c.auth.GetCurrentUser)
	r.PUT("/users/me", c.user.UpdateProfile)
	r.PUT("/users/me/password", c.user.ChangePassword)

	// 专业与方向订阅，本人或管理员
	r.GET("/users/:id/modules", c.links.UserModules)
	r.GET("/users/:id/majors", c.links.UserMajors)
	r.PUT("/users/:id/majors/:majorId", c.links.SubscribeMajor)
	r.DELETE("/users/:id/majors/:majorId", c.links.UnsubscribeMajor)
	r.GET("/users/:id/majors/:majorId/sections", c.links.UserSections)
	r.PUT("/users/:id/majors/:majorId/sections/:sectionId", c.links.SubscribeSection)
	r.DELETE("/users/:id/sections/:sectionId", c.links.UnsubscribeSection)
}

func (a *App) registerQuestionRoutes(r *gin.RouterGroup, c *controllers) {
	r.GET("/origins", c.question.ListOrigins)

	r.GET("/questions", c.question.ListQuestions)
	r.POST("/questions/:id", c.question.CreateQuestion)
	r.GET("/questions/:id", c.question.GetQuestion)
	r.PUT("/questions/:id", c.question.UpdateQuestion)
	r.DELETE("/questions/:id", c.question.DeleteQuestion)
	r.POST("/questions/:id/image", c.question.UploadImage)
	r.POST("/questions/:id/tags/:tagId", c.question.AddTag)
	r.DELETE("/questions/:id/tags/:tagId", c.question.RemoveTag)
	r.PUT("/questions/:id/sessions/:sessionId", c.session.AddQuestionToSession)
	r.DELETE("/questions/:id/sessions/:sessionId", c.session.RemoveQuestionFromSession)

	r.GET("/questions/:id/comments", c.comment.ListComments)
	r.POST("/questions/:id/comments", c.comment.CreateComment)
	r.PUT("/comments/:id", c.comment.UpdateComment)
	r.DELETE("/comments/:id", c.comment.DeleteComment)

	r.POST("/questions/:id/error-reports", c.comment.CreateErrorReport)
	r.GET("/error-reports/:id", c.comment.GetErrorReport)

	r.GET("/courses/:id/questions", c.question.ListByCourse)
	r.GET("/exams/:id/questions", c.question.ListByExam)
}

func (a *App) registerSessionRoutes(r *gin.RouterGroup, c *controllers) {
	sessions := r.Group("/sessions")
	{
		sessions.POST("", c.session.CreateSession)
		sessions.GET("", c.session.ListSessions)
		sessions.GET("/pool/count", c.session.CountPool)
		sessions.GET("/:id", c.session.GetSession)
		sessions.PUT("/:id", c.session.UpdateSession)
		sessions.DELETE("/:id", c.session.DeleteSession)
		sessions.POST("/:id/finish", c.session.FinishSession)
		sessions.GET("/:id/result", c.session.GetResult)

		sessions.GET("/:id/questions", c.session.ListSessionQuestions)
		sessions.GET("/:id/questions/count", c.session.CountSessionQuestions)
		sessions.GET("/:id/questions/:localId", c.session.GetSessionQuestion)
		sessions.GET("/:id/questions/:localId/status", c.session.GetQuestionStatus)
		sessions.PUT("/:id/questions/:localId/time", c.session.RecordTime)
		sessions.POST("/:id/questions/:localId/submit", c.session.SubmitQuestion)
		sessions.GET("/:id/questions/:localId/selection", c.session.GetSelection)
		sessions.PUT("/:id/questions/:localId/selection", c.session.SetSelection)
	}
}

func (a *App) registerModeratorRoutes(r *gin.RouterGroup, c *controllers) {
	r.PUT("/questions/:id/approve", c.question.ApproveQuestion)
	r.PUT("/questions/:id/disapprove", c.question.DisapproveQuestion)

	r.GET("/error-reports", c.comment.ListErrorReports)
	r.PUT("/error-reports/:id/assign", c.comment.AssignErrorReport)
	r.PUT("/error-reports/:id/resolve", c.comment.ResolveErrorReport)
}

func (a *App) registerAdminRoutes(r *gin.RouterGroup, c *controllers) {
	r.GET("/users", c.user.GetUsers)
	r.GET("/users/:id", c.user.GetUser)
	r.PUT("/users/:id/role", c.user.SetRole)
	r.PUT("/users/:id/lock", c.user.SetLocked)
}

// registerCatalogRoutes 大学、学期与提示由管理员维护，其余目录由审核员维护
func (a *App) registerCatalogRoutes(read, moderator, admin *gin.RouterGroup, c *controllers) {
	read.GET("/universities/:id", c.university.Get)
	admin.POST("/universities", c.university.Create)
	admin.PUT("/universities/:id", c.university.Update)
	admin.DELETE("/universities/:id", c.university.Delete)

	c.semester.Register(read, admin, "/semesters")
	c.hint.Register(read, admin, "/hints")

	c.major.Register(read, moderator, "/majors")
	c.section.Register(read, moderator, "/sections")
	c.module.Register(read, moderator, "/modules")
	c.course.Register(read, moderator, "/courses")
	c.exam.Register(read, moderator, "/exams")
	c.tag.Register(read, moderator, "/tags")

	read.GET("/majors/:id/modules", c.links.ModulesByMajor)
	read.GET("/sections/:id/modules", c.links.ModulesBySection)
	read.GET("/modules/:id/majors", c.links.MajorsByModule)
	read.GET("/modules/:id/sections", c.links.SectionsByModule)
	moderator.PUT("/majors/:id/modules/:moduleId", c.links.LinkMajorModule)
	moderator.DELETE("/majors/:id/modules/:moduleId", c.links.UnlinkMajorModule)
	moderator.PUT("/sections/:id/modules/:moduleId", c.links.LinkSectionModule)
	moderator.DELETE("/sections/:id/modules/:moduleId", c.links.UnlinkSectionModule)
}
