package chat

// State tracks a single chat turn. Closed is terminal.
type State int32

const (
	StateConnecting State = iota
	StateStreaming
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Turn identifies one request/response cycle against the chat endpoint.
type Turn struct {
	RequestID string `json:"requestId"`
	MemoryID  int    `json:"memoryId"`
	Message   string `json:"message"`
}
