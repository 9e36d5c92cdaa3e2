package service

import (
	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/util"
)

// Actor 当前请求的用户身份
type Actor struct {
	UserID uint
	Role   model.UserRole
}

func ActorFromClaims(c *util.Claims) Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{UserID: c.UserID, Role: c.Role}
}

func (a Actor) CanModerate() bool {
	return a.Role.IsModerator()
}

func (a Actor) IsAdmin() bool {
	return a.Role.IsAdmin()
}

// canManage 资源创建者或审核员及以上
func (a Actor) canManage(ownerID uint) bool {
	return a.UserID == ownerID || a.CanModerate()
}

// owns 会话只允许创建者与审核员及以上访问
func (a Actor) owns(ownerID uint) bool {
	return a.UserID == ownerID || a.CanModerate()
}
