package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseJSONAs decodes content into T. Hand-edited documents are common
// (trailing commas, single quotes, unquoted keys, a markdown code fence around
// the JSON), so when strict decoding fails the content is repaired with
// jsonrepair and decoded again.
//
// Example:
//
//	nodes, err := ParseJSONAs[[]Node](`[{id: 1, title: 'KSampler',}]`)
func ParseJSONAs[T any](content string) (T, error) {
	var result T

	content = stripCodeFence(content)
	if strings.TrimSpace(content) == "" {
		return result, fmt.Errorf("empty document")
	}

	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}

	repairedJSON, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
	}

	var repaired T
	if err = json.Unmarshal([]byte(repairedJSON), &repaired); err != nil {
		return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w", result, err)
	}
	return repaired, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return content
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.IndexByte(trimmed, '\n'); newline >= 0 {
		trimmed = trimmed[newline+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
}
