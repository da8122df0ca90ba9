package notify

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeAllocation is for messages announcing a completed allocation.
	MessageTypeAllocation MessageType = "allocationComplete"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// AllocationPayload is the payload for an allocationComplete message.
type AllocationPayload struct {
	OrderID  string `json:"order_id"`
	RaffleID string `json:"raffle_id"`
	Numbers  []int  `json:"numbers"`
}
