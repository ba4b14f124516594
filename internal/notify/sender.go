package notify

import (
	"context"
	"time"
)

// CodeMail 发往邮件队列的载荷，投递由外部 mailer 消费完成
type CodeMail struct {
	Email       string    `json:"email"`
	Code        string    `json:"confirmation_code"`
	RequestedAt time.Time `json:"requested_at"`
}

// Sender 尽力而为：投递失败只记日志，绝不让登录请求失败
type Sender interface {
	SendCode(ctx context.Context, m CodeMail) error
	Close()
}

// NopSender 未配置 MQ 时的空实现
type NopSender struct{}

func (NopSender) SendCode(context.Context, CodeMail) error { return nil }
func (NopSender) Close()                                   {}
