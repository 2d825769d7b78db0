package balance

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/promptroom/api/application/usecases/balance"
	"github.com/promptroom/api/domain/model"
	"github.com/promptroom/api/infrastructure/config"
)

type BalanceController interface {
	GetBalance(ctx *gin.Context)
}

type balanceController struct {
	usecase balance.BalanceUseCase
	cfg     *config.Config
}

func NewBalanceController(usecase balance.BalanceUseCase, cfg *config.Config) BalanceController {
	return &balanceController{
		usecase: usecase,
		cfg:     cfg,
	}
}

// GetBalance reads one address's balance, seeding the demo allowance on
// first sight so new participants can play immediately.
func (c *balanceController) GetBalance(ctx *gin.Context) {
	addr := ctx.Query("addr")
	if addr == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "addr parameter is required",
		})
		return
	}

	roomID := model.NormalizeRoomID(ctx.Query("room"))

	seed := c.cfg.Pricing.DefaultSeed
	if seedStr := ctx.Query("seed"); seedStr != "" {
		parsed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil || parsed < 0 {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "seed must be a non-negative integer",
			})
			return
		}
		seed = parsed
	}

	value, err := c.usecase.Get(ctx.Request.Context(), roomID, addr, &seed)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "fetch_failed",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, BalanceResponse{
		RoomID:       roomID,
		Addr:         addr,
		BalanceMicro: value,
	})
}
