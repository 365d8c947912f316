package rabbitmq

import (
	"github.com/streadway/amqp"
)

// QueueCommentEvent 评论生命周期事件队列：项目名.业务领域.实体
const QueueCommentEvent = "lumen.comment_event.queue"

// InitRabbitMQ 初始化RabbitMQ连接
func InitRabbitMQ(url string) (*amqp.Connection, error) {
	return amqp.Dial(url)
}

// DeclareCommentEventQueue 声明持久化队列，幂等
func DeclareCommentEventQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		QueueCommentEvent, // name
		true,              // durable
		false,             // autoDelete
		false,             // exclusive
		false,             // noWait
		nil,               // args
	)
	return err
}
