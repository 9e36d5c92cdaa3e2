package controller

import (
	"kreuzen_backend/internal/service"
	"kreuzen_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CatalogLinkController struct {
	LinkService *service.CatalogLinkService
}

func NewCatalogLinkController(linkService *service.CatalogLinkService) *CatalogLinkController {
	return &CatalogLinkController{LinkService: linkService}
}

// twoIDs 解析两个路径 id
func twoIDs(ctx *gin.Context, first, second string) (uint, uint, bool) {
	a, ok := util.ParamID(ctx, first)
	if !ok {
		return 0, 0, false
	}
	b, ok := util.ParamID(ctx, second)
	if !ok {
		return 0, 0, false
	}
	return a, b, true
}

func reply(ctx *gin.Context, data interface{}, err error) {
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// ModulesByMajor godoc
// @Summary 专业下的模块
// @Tags 目录
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "专业ID"
// @Success 200 {object} util.Response{data=[]model.Module} "成功"
// @Router /api/majors/{id}/modules [get]
func (c *CatalogLinkController) ModulesByMajor(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	modules, err := c.LinkService.ModulesByMajor(ctx.Request.Context(), id)
	reply(ctx, modules, err)
}

// LinkMajorModule godoc
// @Summary 关联模块到专业
// @Tags 目录
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "专业ID"
// @Param   moduleId path int true "模块ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/majors/{id}/modules/{moduleId} [put]
func (c *CatalogLinkController) LinkMajorModule(ctx *gin.Context) {
	majorID, moduleID, ok := twoIDs(ctx, "id", "moduleId")
	if !ok {
		return
	}
	reply(ctx, nil, c.LinkService.LinkModuleToMajor(ctx.Request.Context(), majorID, moduleID))
}

func (c *CatalogLinkController) UnlinkMajorModule(ctx *gin.Context) {
	majorID, moduleID, ok := twoIDs(ctx, "id", "moduleId")
	if !ok {
		return
	}
	reply(ctx, nil, c.LinkService.UnlinkModuleFromMajor(ctx.Request.Context(), majorID, moduleID))
}

// ModulesBySection godoc
// @Summary 方向下的模块
// @Tags 目录
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "方向ID"
// @Success 200 {object} util.Response{data=[]model.Module} "成功"
// @Router /api/sections/{id}/modules [get]
func (c *CatalogLinkController) ModulesBySection(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	modules, err := c.LinkService.ModulesBySection(ctx.Request.Context(), id)
	reply(ctx, modules, err)
}

func (c *CatalogLinkController) LinkSectionModule(ctx *gin.Context) {
	sectionID, moduleID, ok := twoIDs(ctx, "id", "moduleId")
	if !ok {
		return
	}
	reply(ctx, nil, c.LinkService.LinkModuleToSection(ctx.Request.Context(), sectionID, moduleID))
}

func (c *CatalogLinkController) UnlinkSectionModule(ctx *gin.Context) {
	sectionID, moduleID, ok := twoIDs(ctx, "id", "moduleId")
	if !ok {
		return
	}
	reply(ctx, nil, c.LinkService.UnlinkModuleFromSection(ctx.Request.Context(), sectionID, moduleID))
}

func (c *CatalogLinkController) MajorsByModule(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	majors, err := c.LinkService.MajorsByModule(ctx.Request.Context(), id)
	reply(ctx, majors, err)
}

func (c *CatalogLinkController) SectionsByModule(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	sections, err := c.LinkService.SectionsByModule(ctx.Request.Context(), id)
	reply(ctx, sections, err)
}

// UserMajors godoc
// @Summary 用户所学专业
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response{data=[]model.Major} "成功"
// @Router /api/users/{id}/majors [get]
func (c *CatalogLinkController) UserMajors(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	majors, err := c.LinkService.MajorsOfUser(ctx.Request.Context(), actorOf(ctx), id)
	reply(ctx, majors, err)
}

func (c *CatalogLinkController) SubscribeMajor(ctx *gin.Context) {
	userID, majorID, ok := twoIDs(ctx, "id", "majorId")
	if !ok {
		return
	}
	reply(ctx, nil, c.LinkService.SubscribeMajor(ctx.Request.Context(), actorOf(ctx), userID, majorID))
}

func (c *CatalogLinkController) UnsubscribeMajor(ctx *gin.Context) {
	userID, majorID, ok := twoIDs(ctx, "id", "majorId")
	if !ok {
		return
	}
	reply(ctx, nil, c.LinkService.UnsubscribeMajor(ctx.Request.Context(), actorOf(ctx), userID, majorID))
}

// UserSections godoc
// @Summary 用户在某专业下所选方向
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   majorId path int true "专业ID"
// @Success 200 {object} util.Response{data=[]model.Section} "成功"
// @Router /api/users/{id}/majors/{majorId}/sections [get]
func (c *CatalogLinkController) UserSections(ctx *gin.Context) {
	userID, majorID, ok := twoIDs(ctx, "id", "majorId")
	if !ok {
		return
	}
	sections, err := c.LinkService.SectionsOfUser(ctx.Request.Context(), actorOf(ctx), userID, majorID)
	reply(ctx, sections, err)
}

func (c *CatalogLinkController) SubscribeSection(ctx *gin.Context) {
	userID, majorID, ok := twoIDs(ctx, "id", "majorId")
	if !ok {
		return
	}
	sectionID, ok := util.ParamID(ctx, "sectionId")
	if !ok {
		return
	}
	reply(ctx, nil, c.LinkService.SubscribeSection(ctx.Request.Context(), actorOf(ctx), userID, majorID, sectionID))
}

func (c *CatalogLinkController) UnsubscribeSection(ctx *gin.Context) {
	userID, sectionID, ok := twoIDs(ctx, "id", "sectionId")
	if !ok {
		return
	}
	reply(ctx, nil, c.LinkService.UnsubscribeSection(ctx.Request.Context(), actorOf(ctx), userID, sectionID))
}

// UserModules godoc
// @Summary 用户可见的模块
// @Description 所在大学的校级模块，加上所学专业和所选方向关联的模块
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response{data=[]model.Module} "成功"
// @Router /api/users/{id}/modules [get]
func (c *CatalogLinkController) UserModules(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	modules, err := c.LinkService.ModulesOfUser(ctx.Request.Context(), actorOf(ctx), id)
	reply(ctx, modules, err)
}
