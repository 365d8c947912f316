package router

import (
	"net/http"

	"Lumen_Blog/internal/auth"
	"Lumen_Blog/internal/handler"
	"Lumen_Blog/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRouter(jwtSecret []byte, policy auth.ModeratorPolicy, userHandler handler.UserHandler, postHandler handler.PostHandler, commentHandler handler.CommentHandler) *gin.Engine {
	r := gin.Default()
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pang",
		})
	})
	apiV1 := r.Group("/api/v1")
	{
		userGroup := apiV1.Group("/users")
		{
			userGroup.POST("/register", userHandler.Register)
			userGroup.POST("/login", userHandler.Login)
		}

		apiV1.GET("/posts", postHandler.ListPosts)
		apiV1.GET("/posts/:post_id", postHandler.GetPost)

		// 匿名也能看评论和提交评论；带了令牌的审核员能看到未发布的评论
		optional := apiV1.Group("/")
		optional.Use(middleware.Authenticate(jwtSecret, false))
		{
			optional.GET("/posts/:post_id/comments", commentHandler.ListComments)
			optional.POST("/posts/:post_id/comments", commentHandler.SubmitComment)
		}

		authorized := apiV1.Group("/")
		authorized.Use(middleware.Authenticate(jwtSecret, true))
		{
			authorized.GET("/profile", userHandler.GetProfile)
			authorized.PUT("/users/:user_id/role", middleware.RequireAdmin(), userHandler.SetRole)
		}

		moderation := apiV1.Group("/")
		moderation.Use(middleware.Authenticate(jwtSecret, true), middleware.RequireModerator(policy))
		{
			moderation.POST("/posts", postHandler.CreatePost)
			moderation.PATCH("/comments/:comment_id/moderation", commentHandler.ModerateComment)
			moderation.PATCH("/comments/:comment_id", commentHandler.EditComment)
			moderation.DELETE("/comments/:comment_id", commentHandler.RemoveComment)
			moderation.GET("/comments/:comment_id/events", commentHandler.ListCommentEvents)
		}
	}

	return r
}
