package gemini

/*
	GEMINI API - REQUEST TYPES
*/

// generateContentRequest represents the request to Gemini's generateContent endpoint.
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

// content represents a content block with role and parts.
type content struct {
	Role  string `json:"role,omitempty"` // "user" or "model"
	Parts []part `json:"parts"`
}

// part represents a text content part.
type part struct {
	Text string `json:"text"`
}

/*
	GEMINI API - RESPONSE TYPES
*/

// generateContentResponse represents the response from Gemini's generateContent endpoint.
// Pointers distinguish a missing path from an empty string.
type generateContentResponse struct {
	Candidates     []candidate     `json:"candidates,omitempty"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
	ModelVersion   string          `json:"modelVersion,omitempty"`
}

// candidate represents a response candidate.
type candidate struct {
	Content      *responseContent `json:"content,omitempty"`
	FinishReason string           `json:"finishReason,omitempty"`
}

type responseContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []responsePart `json:"parts,omitempty"`
}

type responsePart struct {
	Text *string `json:"text,omitempty"`
}

// promptFeedback is set when the prompt itself was blocked.
type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}
