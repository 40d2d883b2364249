package models

// ChatMessage is one turn of the conversation forwarded to the LLM provider.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest is what the chat page posts for a single astrologer reply.
type ChatRequest struct {
	PersonaContext string        `json:"personaContext" validate:"required"`
	ChatHistory    []ChatMessage `json:"chatHistory" validate:"dive"`
	UserMessage    string        `json:"userMessage" validate:"required,max=4000"`
	Model          string        `json:"model,omitempty"`
	MaxTokens      int           `json:"maxTokens,omitempty" validate:"omitempty,gt=0,lte=4096"`
	Temperature    float64       `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

// ChatReply is returned once the message has been billed and answered.
type ChatReply struct {
	Message       string `json:"message"`
	TransactionID string `json:"transactionId"`
	Balance       int64  `json:"balance"`
}
