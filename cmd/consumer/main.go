package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"Lumen_Blog/internal/config"
	"Lumen_Blog/internal/repository"
	"Lumen_Blog/internal/worker"
	"Lumen_Blog/pkg/database"
	"Lumen_Blog/pkg/logger"
	"Lumen_Blog/pkg/rabbitmq"
)

// 消费者进程：连接数据库和RabbitMQ，把评论事件落成审核流水
func main() {
	if err := config.LoadEnv(); err != nil {
		log.Printf(".env文件加载失败，使用环境变量: %v", err)
	}
	cfg := config.Load()
	if err := logger.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}

	// 连接数据库
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Log.Fatalf("消费者无法连接到数据库: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatalf("数据库迁移失败: %v", err)
	}

	// 连接RabbitMQ
	rabbitMQConn, err := rabbitmq.InitRabbitMQ(cfg.AMQPURL)
	if err != nil {
		logger.Log.Fatalf("消费者无法连接到RabbitMQ: %v", err)
	}
	defer rabbitMQConn.Close()

	ch, err := rabbitMQConn.Channel()
	if err != nil {
		logger.Log.Fatalf("无法打开Channel: %v", err)
	}
	defer ch.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := worker.NewCommentEventConsumer(repository.NewCommentEventRepository(db))
	if err := consumer.Run(ctx, ch); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.WithError(err).Error("评论事件消费者异常退出")
		return
	}
	logger.Log.Info("评论事件消费者已退出")
}
