package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/promptroom/api/presentation/controllers/balance"
)

func BalanceRoutes(router *gin.RouterGroup, controller balance.BalanceController) {
	router.GET("/room/balance", controller.GetBalance)
}
