package service

import (
	"context"
	"encoding/json"
	"time"

	"kreuzen_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	MailConfirmEmail   = "confirm-email"
	MailPasswordReset  = "password-reset"
	MailReportResolved = "error-report-resolved"
)

// MailJob 由外部邮件服务消费的发信任务
type MailJob struct {
	To        string            `json:"to"`
	From      string            `json:"from,omitempty"`
	Template  string            `json:"template"`
	Data      map[string]string `json:"data"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Notifier 异步投递通知，失败只记日志
type Notifier interface {
	Notify(ctx context.Context, job MailJob)
}

// RedisNotifier 将发信任务写入 Redis 列表
type RedisNotifier struct {
	Client *redis.Client
	Key    string
	Sender string
}

func NewRedisNotifier(rdb *redis.Client, key, sender string) *RedisNotifier {
	return &RedisNotifier{Client: rdb, Key: key, Sender: sender}
}

func (n *RedisNotifier) Notify(ctx context.Context, job MailJob) {
	if job.From == "" {
		job.From = n.Sender
	}
	job.CreatedAt = time.Now()

	go func() {
		payload, err := json.Marshal(job)
		if err != nil {
			logger.Log.Error("encode mail job failed", zap.Error(err))
			return
		}
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := n.Client.LPush(pushCtx, n.Key, payload).Err(); err != nil {
			logger.Log.Error("enqueue mail job failed",
				zap.String("template", job.Template),
				zap.String("to", job.To),
				zap.Error(err))
		}
	}()
}

// LogNotifier Redis 未启用时仅记录日志
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, job MailJob) {
	logger.Log.Info("mail job",
		zap.String("template", job.Template),
		zap.String("to", job.To),
		zap.Any("data", job.Data))
}
