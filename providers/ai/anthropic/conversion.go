package anthropic

import (
	"strings"

	"github.com/leofalp/promptcraft/providers/ai"
)

// requestToAnthropic folds the instruction into the system prompt and sends
// the draft as the only user message.
func requestToAnthropic(request ai.EnhanceRequest, model string) anthropicRequest {
	return anthropicRequest{
		Model:     model,
		MaxTokens: defaultMaxTokens,
		System:    request.Instruction,
		Messages: []anthropicMessage{
			{Role: "user", Content: request.Prompt},
		},
	}
}

// textFromAnthropic concatenates every text block in reply order. Unknown
// block types are skipped for forward-compatibility.
func textFromAnthropic(resp anthropicResponse) (string, error) {
	if resp.Content == nil {
		return "", ai.Malformed("response has no content array", nil)
	}

	var (
		builder strings.Builder
		found   bool
	)
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		found = true
		builder.WriteString(block.Text)
	}

	if !found {
		return "", ai.Malformed("response has no text content block", nil)
	}
	return builder.String(), nil
}
