package model

type MessageKind string

const (
	KindPrompt   MessageKind = "prompt"
	KindResponse MessageKind = "response"
	KindSystem   MessageKind = "system"
)

// SystemSender is the From value on system notices.
const SystemSender = "system"

// Message is one immutable entry in a room's append-only log. PromptID links
// responses and system notices back to the prompt they answer; the log never
// validates the link at write time.
type Message struct {
	ID        string       `json:"id"`
	RoomID    string       `json:"roomId"`
	Kind      MessageKind  `json:"kind"`
	From      string       `json:"from"`
	Text      string       `json:"text"`
	CreatedAt int64        `json:"createdAt"` // unix milliseconds, writer-assigned
	PromptID  string       `json:"promptId,omitempty"`
	Meta      *MessageMeta `json:"meta,omitempty"`
}

type MessageMeta struct {
	TxHash          string  `json:"txHash,omitempty"`
	ChargedMicro    int64   `json:"chargedMicroUnits,omitempty"`
	TokenUsage      int64   `json:"tokenUsage,omitempty"`
	TokensPerSecond float64 `json:"tokensPerSecond,omitempty"`
}
