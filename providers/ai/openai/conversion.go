package openai

import (
	"fmt"

	"github.com/leofalp/promptcraft/providers/ai"
)

// requestFromGeneric maps the instruction to a system message and the draft
// to a user message.
func requestFromGeneric(request ai.EnhanceRequest, model string) chatCompletionRequest {
	messages := make([]chatMessage, 0, 2)
	if request.Instruction != "" {
		messages = append(messages, chatMessage{Role: "system", Content: request.Instruction})
	}
	messages = append(messages, chatMessage{Role: "user", Content: request.Prompt})

	return chatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
}

// textFromResponse extracts choices[0].message.content.
func textFromResponse(resp chatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", ai.Malformed("no choices in response", nil)
	}

	message := resp.Choices[0].Message
	if message == nil {
		return "", ai.Malformed("first choice has no message", nil)
	}
	if message.Content == nil {
		if message.Refusal != "" {
			return "", ai.Malformed(fmt.Sprintf("model refused: %s", message.Refusal), nil)
		}
		return "", ai.Malformed("first choice message has no content", nil)
	}

	return *message.Content, nil
}
