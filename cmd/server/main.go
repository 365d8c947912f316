package main

import (
	"log"
	"strings"

	"Lumen_Blog/internal/auth"
	"Lumen_Blog/internal/config"
	"Lumen_Blog/internal/data"
	"Lumen_Blog/internal/event"
	"Lumen_Blog/internal/handler"
	"Lumen_Blog/internal/repository"
	"Lumen_Blog/internal/router"
	"Lumen_Blog/internal/service"
	"Lumen_Blog/pkg/database"
	"Lumen_Blog/pkg/logger"
	"Lumen_Blog/pkg/rabbitmq"
	"Lumen_Blog/pkg/redis"
)

func main() {
	// 加载.env文件，不存在时直接用环境变量
	if err := config.LoadEnv(); err != nil {
		log.Printf(".env文件加载失败，使用环境变量: %v", err)
	}
	cfg := config.Load()

	// 初始化logger
	if err := logger.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	if cfg.JWTSecret == "" {
		logger.Log.Fatal("JWT_SECRET_KEY未设置")
	}

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Log.Fatalf("无法连接到数据库: %v", err)
	}
	logger.Log.WithField("driver", cfg.DBDriver).Info("数据库连接成功")
	// 没有这个表就创建,没有属性列则创建列,没有约束则增加约束;不会主动删除和修改
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatalf("数据库迁移失败: %v", err)
	}
	logger.Log.Info("数据库迁移成功")

	// 初始化Redis
	redisClient, err := redis.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Log.Fatalf("无法连接到Redis: %v", err)
	}
	defer redisClient.Close()
	logger.Log.Info("Redis连接成功")

	// 初始化RabbitMQ
	rabbitMQConn, err := rabbitmq.InitRabbitMQ(cfg.AMQPURL)
	if err != nil {
		logger.Log.Fatalf("无法连接到RabbitMQ: %v", err)
	}
	defer rabbitMQConn.Close() // 确保程序退出时关闭连接
	publisher, err := event.NewAMQPPublisher(rabbitMQConn)
	if err != nil {
		logger.Log.Fatalf("评论事件队列声明失败: %v", err)
	}
	logger.Log.Info("RabbitMQ连接成功")

	policy := auth.NewRolePolicy(cfg.ModeratorRoles...)
	secret := []byte(cfg.JWTSecret)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	eventRepo := repository.NewCommentEventRepository(db)
	commentCache := repository.NewCommentCache(redisClient)

	uow := data.NewUnitOfWork(db, commentRepo)

	userService := service.NewUserService(userRepo, secret, cfg.TokenTTL)
	postService := service.NewPostService(postRepo, policy)
	commentService := service.NewCommentService(commentRepo, postRepo, eventRepo, uow, commentCache, publisher, policy)

	userHandler := handler.NewUserHandler(userService)
	postHandler := handler.NewPostHandler(postService)
	commentHandler := handler.NewCommentHandler(commentService)

	r := router.SetupRouter(secret, policy, userHandler, postHandler, commentHandler)
	logger.Log.WithField("moderator_roles", strings.Join(cfg.ModeratorRoles, ",")).
		Infof("服务器将在%s启动", cfg.HTTPAddr)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Log.Fatalf("服务器启动失败: %v", err)
	}
}
