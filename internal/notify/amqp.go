package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// AMQPSender 把确认码邮件任务发进 RabbitMQ 队列
type AMQPSender struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	log     *zap.Logger
}

func NewAMQPSender(url, queueName string, l *zap.Logger) (*AMQPSender, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	// 幂等声明：durable 队列，重启不丢任务
	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp queue declare: %w", err)
	}
	return &AMQPSender{conn: conn, channel: ch, queue: q, log: l}, nil
}

func (s *AMQPSender) SendCode(ctx context.Context, m CodeMail) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err = s.channel.PublishWithContext(
		pubCtx,
		"", // 默认交换机
		s.queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish mail: %w", err)
	}
	return nil
}

func (s *AMQPSender) Close() {
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			s.log.Warn("amqp channel close", zap.Error(err))
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.log.Warn("amqp connection close", zap.Error(err))
		}
	}
}
