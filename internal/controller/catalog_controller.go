package controller

import (
	"kreuzen_backend/internal/repository"
	"kreuzen_backend/internal/service"
	"kreuzen_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CatalogController 目录实体的通用 REST 处理器
type CatalogController[T repository.CatalogEntity, R service.CatalogRequest[T]] struct {
	Service *service.CatalogService[T, R]
	// Filters 查询参数名 -> 列名，仅支持正整数 id 的等值筛选
	Filters map[string]string
}

func NewCatalogController[T repository.CatalogEntity, R service.CatalogRequest[T]](s *service.CatalogService[T, R], filters map[string]string) *CatalogController[T, R] {
	return &CatalogController[T, R]{Service: s, Filters: filters}
}

func (c *CatalogController[T, R]) List(ctx *gin.Context) {
	conds := make(map[string]interface{})
	for param, column := range c.Filters {
		if id := util.QueryUint(ctx, param); id != 0 {
			conds[column] = id
		}
	}
	items, err := c.Service.List(ctx.Request.Context(), conds)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

func (c *CatalogController[T, R]) Get(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	item, err := c.Service.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

func (c *CatalogController[T, R]) Create(ctx *gin.Context) {
	var req R
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	item, err := c.Service.Create(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, item)
}

func (c *CatalogController[T, R]) Update(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req R
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	item, err := c.Service.Update(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

func (c *CatalogController[T, R]) Delete(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.Service.Delete(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Random 随机返回一条启用中的记录
func (c *CatalogController[T, R]) Random(ctx *gin.Context) {
	item, err := c.Service.Random(ctx.Request.Context(), map[string]interface{}{"is_active": true})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

// Register 挂载读路由到 read，写路由到 write
func (c *CatalogController[T, R]) Register(read, write *gin.RouterGroup, path string) {
	read.GET(path, c.List)
	read.GET(path+"/:id", c.Get)
	write.POST(path, c.Create)
	write.PUT(path+"/:id", c.Update)
	write.DELETE(path+"/:id", c.Delete)
}
