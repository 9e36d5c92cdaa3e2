package util

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParamID 读取路径参数中的正整数 id
func ParamID(c *gin.Context, name string) (uint, bool) {
	id := MustParseUint(c.Param(name))
	if id == 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// ParamInt 读取路径参数中的正整数
func ParamInt(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 1 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

// Pagination 解析 page/limit 查询参数
func Pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func FormatUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

// QueryUint 读取可选的查询参数，缺省或非法时返回 0
func QueryUint(c *gin.Context, name string) uint {
	return MustParseUint(c.Query(name))
}

// QueryBool 读取可选的布尔查询参数，缺省时返回 nil
func QueryBool(c *gin.Context, name string) *bool {
	raw, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// QueryUints 读取逗号分隔或重复出现的 id 列表
func QueryUints(c *gin.Context, name string) []uint {
	var ids []uint
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			if id := MustParseUint(strings.TrimSpace(part)); id != 0 {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// QueryStrings 读取逗号分隔或重复出现的字符串列表
func QueryStrings(c *gin.Context, name string) []string {
	var values []string
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
	}
	return values
}
