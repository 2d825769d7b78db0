package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/promptroom/api/presentation/controllers/message"
)

// MessageRoutes registers the log endpoints. Posting gets its own limiter
// because every post can fan out into an inference call and a settlement.
func MessageRoutes(router *gin.RouterGroup, controller message.MessageController, postLimiter gin.HandlerFunc) {
	router.POST("/room/message", postLimiter, controller.PostMessage)
	router.GET("/room/messages", controller.GetMessages)
}
