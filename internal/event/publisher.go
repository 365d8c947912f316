package event

import (
	"context"
	"encoding/json"

	"Lumen_Blog/pkg/rabbitmq"

	"github.com/streadway/amqp"
)

type Publisher interface {
	PublishCommentEvent(ctx context.Context, msg CommentEventMessage) error
}

type amqpPublisher struct {
	conn *amqp.Connection
}

// NewAMQPPublisher 用一个临时Channel声明队列（幂等），之后每条消息单独开Channel
func NewAMQPPublisher(conn *amqp.Connection) (Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()
	if err := rabbitmq.DeclareCommentEventQueue(ch); err != nil {
		return nil, err
	}
	return &amqpPublisher{conn: conn}, nil
}

// PublishCommentEvent 1、创建channel 2、序列化消息 3、以持久化模式投递到默认交换机
func (p *amqpPublisher) PublishCommentEvent(_ context.Context, msg CommentEventMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return ch.Publish(
		"",                         // exchange
		rabbitmq.QueueCommentEvent, // routing key
		false,                      // mandatory
		false,                      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    msg.EventID,
			Timestamp:    msg.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent, // 确保消息持久化
		})
}
