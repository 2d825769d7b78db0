package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/promptroom/api/presentation/controllers/room"
)

func RoomRoutes(router *gin.RouterGroup, controller room.RoomController) {
	rooms := router.Group("/room")
	{
		rooms.POST("/claim-host", controller.ClaimHost)
		rooms.POST("/heartbeat", controller.Heartbeat)
		rooms.POST("/release-host", controller.ReleaseHost)
		rooms.GET("/state", controller.GetState)
	}
}
