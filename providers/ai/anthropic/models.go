package anthropic

/*
	ANTHROPIC MESSAGES API - REQUEST TYPES
*/

// anthropicRequest represents the request body for Anthropic's Messages API.
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"` // Required by Anthropic on every request
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

// anthropicMessage represents a single message in the conversation.
type anthropicMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

/*
	ANTHROPIC MESSAGES API - RESPONSE TYPES
*/

// anthropicResponse represents the response from Anthropic's Messages API.
type anthropicResponse struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"` // "message"
	Role       string                 `json:"role"` // "assistant"
	Content    []responseContentBlock `json:"content"`
	Model      string                 `json:"model"`
	StopReason string                 `json:"stop_reason"`
}

// responseContentBlock represents a content block in the response.
// The Type field discriminates between text, thinking, and tool_use blocks;
// only "text" blocks contribute to the rewritten prompt.
type responseContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}
