package domain

// TaskStatus is the lifecycle state of an agent task.
type TaskStatus string

const (
	TaskSubmitted TaskStatus = "submitted"
	TaskWorking   TaskStatus = "working"
	TaskCompleted TaskStatus = "completed"
	TaskCanceled  TaskStatus = "canceled"
	TaskFailed    TaskStatus = "failed"
)

// IsTerminal reports whether no further transitions are possible.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskCompleted, TaskCanceled, TaskFailed:
		return true
	}
	return false
}

// CanTransition reports whether a task may move from s to next.
//
//	submitted -> working -> completed | failed
//	any non-terminal     -> canceled
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case TaskCanceled:
		return true
	case TaskWorking:
		return s == TaskSubmitted
	case TaskCompleted, TaskFailed:
		return s == TaskWorking
	}
	return false
}

// Role of a message author.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Part is one piece of message content.
type Part struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Message is a single conversational turn.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// Text concatenates the text parts of the message.
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		if p.Type == "" || p.Type == "text" {
			out += p.Text
		}
	}
	return out
}

// NewTextMessage builds a single-part text message.
func NewTextMessage(role Role, text string) Message {
	return Message{Role: role, Parts: []Part{{Type: "text", Text: text}}}
}

// Task is a unit of conversational work as observed over the wire.
type Task struct {
	ID        string     `json:"id"`
	ContextID string     `json:"contextId,omitempty"`
	Status    TaskStatus `json:"status"`
	Messages  []Message  `json:"messages"`
}

// AgentMessage returns the last agent message, if any.
func (t *Task) AgentMessage() (Message, bool) {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].Role == RoleAgent {
			return t.Messages[i], true
		}
	}
	return Message{}, false
}

// AgentCapabilities advertises optional protocol features.
type AgentCapabilities struct {
	Streaming bool `json:"streaming"`
}

// AgentCard is the discovery document served at the well-known path.
type AgentCard struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	URL          string             `json:"url"`
	Version      string             `json:"version,omitempty"`
	Capabilities *AgentCapabilities `json:"capabilities"`
}

// TaskReply is a task as it arrived inside a JSON-RPC envelope.
type TaskReply struct {
	JSONRPC    string `json:"jsonrpc"`
	Task       *Task  `json:"result"`
	HTTPStatus int    `json:"-"`
}

// StreamEvent is one server-sent event.
type StreamEvent struct {
	Event string
	Data  string
}

// StreamReply is the outcome of a streaming request.
type StreamReply struct {
	ContentType string
	Events      []StreamEvent
}
