package balance

type BalanceResponse struct {
	RoomID       string `json:"room_id"`
	Addr         string `json:"addr"`
	BalanceMicro int64  `json:"balance_micro"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
