package message

type PostMessageRequest struct {
	RoomID      string `json:"room_id" binding:"omitempty,max=64"`
	From        string `json:"from" binding:"required,max=128"`
	Text        string `json:"text" binding:"required,max=4000"`
	TokenBudget int64  `json:"token_budget" binding:"omitempty,gte=0"`
}

type MessageResponse struct {
	ID              string  `json:"id"`
	RoomID          string  `json:"room_id"`
	Kind            string  `json:"kind"`
	From            string  `json:"from"`
	Text            string  `json:"text"`
	CreatedAt       int64   `json:"created_at"`
	PromptID        string  `json:"prompt_id,omitempty"`
	TxHash          string  `json:"tx_hash,omitempty"`
	ChargedMicro    int64   `json:"charged_micro,omitempty"`
	TokenUsage      int64   `json:"token_usage,omitempty"`
	TokensPerSecond float64 `json:"tokens_per_second,omitempty"`
}

type PostMessageResponse struct {
	Prompt   *MessageResponse `json:"prompt"`
	Response *MessageResponse `json:"response,omitempty"`
	System   *MessageResponse `json:"system,omitempty"`
}

type MessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
	Count    int               `json:"count"`
	RoomID   string            `json:"room_id"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
