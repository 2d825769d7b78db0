package message

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/promptroom/api/application/usecases/message"
	"github.com/promptroom/api/domain/model"
	"github.com/promptroom/api/presentation/middlewares"
)

type MessageController interface {
	PostMessage(ctx *gin.Context)
	GetMessages(ctx *gin.Context)
}

type messageController struct {
	usecase message.MessageUseCase
}

func NewMessageController(usecase message.MessageUseCase) MessageController {
	return &messageController{usecase: usecase}
}

func (c *messageController) PostMessage(ctx *gin.Context) {
	var req PostMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: middlewares.TranslateValidationError(err),
		})
		return
	}

	result, err := c.usecase.Post(ctx.Request.Context(), req.RoomID, req.From, req.Text, req.TokenBudget)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "post_failed",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, PostMessageResponse{
		Prompt:   toMessageResponse(result.Prompt),
		Response: toMessageResponse(result.Response),
		System:   toMessageResponse(result.System),
	})
}

func (c *messageController) GetMessages(ctx *gin.Context) {
	roomID := model.NormalizeRoomID(ctx.Query("room"))

	after := int64(0)
	if afterStr := ctx.Query("after"); afterStr != "" {
		parsed, err := strconv.ParseInt(afterStr, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "after must be a unix millisecond timestamp",
			})
			return
		}
		after = parsed
	}

	messages, err := c.usecase.List(ctx.Request.Context(), roomID, after)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "fetch_failed",
			Message: err.Error(),
		})
		return
	}

	responses := make([]MessageResponse, len(messages))
	for i, msg := range messages {
		responses[i] = *toMessageResponse(msg)
	}

	ctx.JSON(http.StatusOK, MessagesResponse{
		Messages: responses,
		Count:    len(responses),
		RoomID:   roomID,
	})
}

func toMessageResponse(msg *model.Message) *MessageResponse {
	if msg == nil {
		return nil
	}

	response := &MessageResponse{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		Kind:      string(msg.Kind),
		From:      msg.From,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
		PromptID:  msg.PromptID,
	}
	if msg.Meta != nil {
		response.TxHash = msg.Meta.TxHash
		response.ChargedMicro = msg.Meta.ChargedMicro
		response.TokenUsage = msg.Meta.TokenUsage
		response.TokensPerSecond = msg.Meta.TokensPerSecond
	}
	return response
}
