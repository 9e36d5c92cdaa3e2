package controller

import (
	"kreuzen_backend/internal/service"
	"kreuzen_backend/internal/util"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// actorOf 当前登录用户
func actorOf(ctx *gin.Context) service.Actor {
	return service.ActorFromClaims(util.GetUserFromContext(ctx))
}

// page 分页列表响应
func page(ctx *gin.Context, list interface{}, total int64, pageNum, limit int) {
	util.Success(ctx, util.PageResponse{
		List:  list,
		Total: total,
		Page:  pageNum,
		Limit: limit,
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	_, err := service.ParseQuestionType(fl.Field().String())
	return err == nil
}

// RegisterValidators 向 gin 的校验引擎注册自定义规则，字段名取 json tag
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v.RegisterValidation("question_type", validateQuestionType)
}
