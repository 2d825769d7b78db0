package room

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptroom/api/application/usecases/host"
	"github.com/promptroom/api/domain/model"
	"github.com/promptroom/api/presentation/middlewares"
)

type RoomController interface {
	ClaimHost(ctx *gin.Context)
	Heartbeat(ctx *gin.Context)
	ReleaseHost(ctx *gin.Context)
	GetState(ctx *gin.Context)
}

type roomController struct {
	usecase host.HostUseCase
}

func NewRoomController(usecase host.HostUseCase) RoomController {
	return &roomController{usecase: usecase}
}

func (c *roomController) ClaimHost(ctx *gin.Context) {
	var req ClaimHostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: middlewares.TranslateValidationError(err),
		})
		return
	}

	recvAddr := req.RecvAddr
	if recvAddr == "" {
		recvAddr = req.HostAddr
	}

	record, err := c.usecase.Claim(ctx.Request.Context(), req.RoomID, model.HostRecord{
		HostAddr:      req.HostAddr,
		RecvAddr:      recvAddr,
		RatePerK:      req.RatePerK,
		ModelEndpoint: req.ModelEndpoint,
		ModelToken:    req.ModelToken,
		ModelID:       req.ModelID,
	})
	if err != nil {
		status, code := claimStatus(err)
		ctx.JSON(status, ErrorResponse{
			Error:     code,
			Message:   err.Error(),
			Retryable: errors.Is(err, model.ErrRoomBusy),
		})
		return
	}

	ctx.JSON(http.StatusOK, toHostResponse(record))
}

func (c *roomController) Heartbeat(ctx *gin.Context) {
	var req HeartbeatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: middlewares.TranslateValidationError(err),
		})
		return
	}

	record, err := c.usecase.Heartbeat(ctx.Request.Context(), req.RoomID, req.HostAddr)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNoActiveHost):
			ctx.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "no_active_host",
				Message: "no host to renew",
			})
		case errors.Is(err, model.ErrHostMismatch):
			ctx.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "another address holds this room",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "heartbeat_failed",
				Message: err.Error(),
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, toHostResponse(record))
}

func (c *roomController) ReleaseHost(ctx *gin.Context) {
	var req ReleaseHostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: middlewares.TranslateValidationError(err),
		})
		return
	}

	if err := c.usecase.Release(ctx.Request.Context(), req.RoomID, req.HostAddr); err != nil {
		if errors.Is(err, model.ErrHostMismatch) {
			ctx.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "another address holds this room",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "release_failed",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, SuccessResponse{Message: "host released"})
}

func (c *roomController) GetState(ctx *gin.Context) {
	roomID := model.NormalizeRoomID(ctx.Query("room"))

	online, record, err := c.usecase.State(ctx.Request.Context(), roomID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "state_failed",
			Message: err.Error(),
		})
		return
	}

	response := RoomStateResponse{
		RoomID: roomID,
		Online: online,
	}
	if record != nil {
		response.Host = toHostResponse(record)
	}

	ctx.JSON(http.StatusOK, response)
}

func claimStatus(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrRoomBusy):
		return http.StatusConflict, "room_busy"
	case errors.Is(err, model.ErrRoomHosted):
		return http.StatusConflict, "room_hosted"
	default:
		return http.StatusInternalServerError, "claim_failed"
	}
}

func toHostResponse(record *model.HostRecord) *HostResponse {
	public := record.Public()
	return &HostResponse{
		HostAddr:      public.HostAddr,
		RecvAddr:      public.RecvAddr,
		RatePerK:      public.RatePerK,
		ModelEndpoint: public.ModelEndpoint,
		ModelID:       public.ModelID,
		Connected:     public.Connected,
		LastSeen:      public.LastSeen,
	}
}
