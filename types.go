package main

// Message roles understood by the chat completion endpoint
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in the chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is one completed exchange: the user's prompt and the reply it received.
type Turn struct {
	UserMessage    string
	AssistantReply string
}

// ChatCompletionRequest is the payload sent to the chat completion API
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
}
