package gemini

import (
	"fmt"

	"github.com/leofalp/promptcraft/providers/ai"
)

// requestToGemini folds the instruction and the prompt into one user part,
// instruction first.
func requestToGemini(request ai.EnhanceRequest) generateContentRequest {
	text := request.Prompt
	if request.Instruction != "" {
		text = request.Instruction + "\n\n" + request.Prompt
	}

	return generateContentRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: text}},
		}},
	}
}

// textFromGemini extracts candidates[0].content.parts[0].text.
func textFromGemini(resp generateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", ai.Malformed(fmt.Sprintf("no candidates, prompt blocked: %s", resp.PromptFeedback.BlockReason), nil)
		}
		return "", ai.Malformed("no candidates in response", nil)
	}

	first := resp.Candidates[0]
	if first.Content == nil || len(first.Content.Parts) == 0 {
		return "", ai.Malformed(fmt.Sprintf("first candidate has no content parts (finishReason %q)", first.FinishReason), nil)
	}

	text := first.Content.Parts[0].Text
	if text == nil {
		return "", ai.Malformed("first content part has no text", nil)
	}

	return *text, nil
}
