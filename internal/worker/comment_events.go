// Package worker 消费RabbitMQ里的评论事件，写成审核流水
package worker

import (
	"context"
	"encoding/json"
	"errors"

	"Lumen_Blog/internal/event"
	"Lumen_Blog/internal/repository"
	"Lumen_Blog/pkg/logger"
	"Lumen_Blog/pkg/rabbitmq"

	"github.com/go-sql-driver/mysql"
	"github.com/streadway/amqp"
	"gorm.io/gorm"
)

// Outcome 一条消息处理完之后怎么回复mq
type Outcome int

const (
	Ack     Outcome = iota
	Reject          // 坏消息，直接丢弃
	Requeue         // 临时性错误，放回队列重试
)

type CommentEventConsumer struct {
	eventRepo repository.CommentEventRepository
}

func NewCommentEventConsumer(eventRepo repository.CommentEventRepository) *CommentEventConsumer {
	return &CommentEventConsumer{eventRepo: eventRepo}
}

// Handle 1、反序列化并校验消息 2、落库 3、重复键说明是重复消费，按成功处理
func (c *CommentEventConsumer) Handle(ctx context.Context, body []byte) Outcome {
	var msg event.CommentEventMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		logger.Log.WithError(err).WithField("body", string(body)).Error("消息JSON解析失败")
		return Reject
	}
	if !msg.Valid() {
		logger.Log.WithField("body", string(body)).Error("评论事件字段不完整，丢弃")
		return Reject
	}

	logCtx := logger.Log.WithField("event_id", msg.EventID).WithField("comment_id", msg.CommentID).WithField("action", msg.Action)
	if err := c.eventRepo.Create(ctx, msg.ToModel()); err != nil {
		if isDuplicateKey(err) {
			logCtx.WithError(err).Warn("处理消息时出现重复键错误，可能是一次重复消费，消息将被确认为成功。")
			return Ack
		}
		logCtx.WithError(err).Error("审核流水写入失败，将进行重试")
		return Requeue
	}
	logCtx.Info("审核流水写入成功")
	return Ack
}

// Run 注册消费者并阻塞到ctx取消或者channel被关闭
func (c *CommentEventConsumer) Run(ctx context.Context, ch *amqp.Channel) error {
	if err := rabbitmq.DeclareCommentEventQueue(ch); err != nil {
		return err
	}
	// 一次只取一条，处理完再取下一条
	if err := ch.Qos(1, 0, false); err != nil {
		return err
	}
	msgs, err := ch.Consume(
		rabbitmq.QueueCommentEvent, // queue
		"",                         // consumer
		false,                      // auto-ack: 手动确认
		false,                      // exclusive
		false,                      // no-local
		false,                      // no-wait
		nil,                        // args
	)
	if err != nil {
		return err
	}

	logger.Log.Info(" [*] 等待评论事件消息中. 按 CTRL+C 退出")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			c.reply(d, c.Handle(ctx, d.Body))
		}
	}
}

func (c *CommentEventConsumer) reply(d amqp.Delivery, outcome Outcome) {
	var err error
	switch outcome {
	case Ack:
		err = d.Ack(false)
	case Reject:
		err = d.Nack(false, false)
	case Requeue:
		err = d.Nack(false, true)
	}
	if err != nil {
		logger.Log.WithError(err).WithField("message_id", d.MessageId).Error("回复mq失败")
	}
}

// isDuplicateKey 开了TranslateError的驱动返回gorm.ErrDuplicatedKey，没翻译的MySQL错误号是1062
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
