package room

type ClaimHostRequest struct {
	RoomID        string  `json:"room_id" binding:"omitempty,max=64"`
	HostAddr      string  `json:"host_addr" binding:"required,max=128"`
	RecvAddr      string  `json:"recv_addr" binding:"omitempty,max=128"`
	RatePerK      float64 `json:"rate_per_thousand" binding:"required,gt=0"`
	ModelEndpoint string  `json:"model_endpoint" binding:"required,url"`
	ModelToken    string  `json:"model_token"`
	ModelID       string  `json:"model_id" binding:"required,max=128"`
}

type HeartbeatRequest struct {
	RoomID   string `json:"room_id" binding:"omitempty,max=64"`
	HostAddr string `json:"host_addr" binding:"required,max=128"`
}

type ReleaseHostRequest struct {
	RoomID   string `json:"room_id" binding:"omitempty,max=64"`
	HostAddr string `json:"host_addr" binding:"required,max=128"`
}

// HostResponse never carries the model token; that stays between the host
// and the coordination core.
type HostResponse struct {
	HostAddr      string  `json:"host_addr"`
	RecvAddr      string  `json:"recv_addr"`
	RatePerK      float64 `json:"rate_per_thousand"`
	ModelEndpoint string  `json:"model_endpoint"`
	ModelID       string  `json:"model_id"`
	Connected     bool    `json:"connected"`
	LastSeen      int64   `json:"last_seen_at"`
}

type RoomStateResponse struct {
	RoomID string        `json:"room_id"`
	Online bool          `json:"online"`
	Host   *HostResponse `json:"host,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
