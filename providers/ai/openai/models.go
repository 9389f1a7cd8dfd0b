package openai

/*
	CHAT COMPLETIONS API - INPUT
*/

// chatCompletionRequest represents the /v1/chat/completions request format
type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

// chatCompletionResponse represents the /v1/chat/completions response format
type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Index        int                  `json:"index"`
	Message      *chatResponseMessage `json:"message"`
	FinishReason string               `json:"finish_reason"`
}

type chatResponseMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"` // null when the model refused or only called tools
	Refusal string  `json:"refusal,omitempty"`
}
