// Package compose derives the final prompt text of a tool from its Shape.
package compose

import (
	"strings"

	"github.com/leofalp/promptcraft/core/prompt"
)

// Compose returns the text sent to a provider, copied or exported for tool.
//
// The main text comes first. Modifiers follow, joined by ". " for video tools
// and ", " otherwise. Between the main text and the first modifier goes a
// single space when the main text is empty or already ends in "." or ",",
// and the joiner otherwise. An empty main text therefore yields a leading
// space, e.g. " masterpiece, 8k".
func Compose(tool prompt.ToolID, shape prompt.Shape) string {
	if shape == nil {
		return ""
	}

	text := shape.MainText()
	modifiers := prompt.Modifiers(shape)
	if len(modifiers) == 0 {
		return text
	}

	joiner := ", "
	if tool.Family() == prompt.FamilyVideo {
		joiner = ". "
	}

	if text == "" || strings.HasSuffix(text, ".") || strings.HasSuffix(text, ",") {
		text += " "
	} else {
		text += joiner
	}
	return text + strings.Join(modifiers, joiner)
}

// Current composes tool's shape in state.
func Current(state prompt.State, tool prompt.ToolID) (string, bool) {
	shape, ok := state.Shape(tool)
	if !ok {
		return "", false
	}
	return Compose(tool, shape), true
}
