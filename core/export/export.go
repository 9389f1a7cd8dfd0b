// Package export renders a tool's prompt as a markdown document.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/leofalp/promptcraft/core/prompt"
)

// DateLayout formats the export timestamp.
const DateLayout = "1/2/2006, 3:04:05 PM"

// Markdown renders the export document for tool. composed is the final prompt
// text, usually compose.Compose(tool, shape).
//
// Sections appear in a fixed order: title and date, main prompt, negative
// prompt when present, then generation parameters (a1111) or the node graph
// (comfy).
func Markdown(tool prompt.ToolID, shape prompt.Shape, composed string, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# PromptCraft Export - %s\n", strings.ToUpper(string(tool)))
	fmt.Fprintf(&b, "Date: %s\n\n", now.Format(DateLayout))
	fmt.Fprintf(&b, "## Main Prompt\n%s\n\n", composed)

	diffusion, ok := shape.(prompt.DiffusionShape)
	if !ok {
		return b.String()
	}

	if diffusion.Negative != "" {
		fmt.Fprintf(&b, "## Negative Prompt\n%s\n\n", diffusion.Negative)
	}

	if tool == prompt.A1111 && diffusion.Params != nil {
		b.WriteString("## Generation Parameters\n")
		for _, param := range diffusion.Params {
			fmt.Fprintf(&b, "- **%s**: %v\n", param.Name, param.Value)
		}
	}

	if tool == prompt.Comfy && diffusion.Nodes != nil {
		b.WriteString("## ComfyUI Node Graph\n")
		for i, node := range diffusion.Nodes {
			fmt.Fprintf(&b, "\n### [%d] %s (%s)\n", i+1, node.Title, node.Type)
			for _, field := range node.Fields {
				label := field.Label
				if label == "" {
					label = field.Name
				}
				fmt.Fprintf(&b, "- **%s**: %v\n", label, field.Value)
			}
		}
	}

	return b.String()
}

// FileName returns the download name of an export made at now.
func FileName(tool prompt.ToolID, now time.Time) string {
	return fmt.Sprintf("promptcraft_%s_%d.md", tool, now.UnixMilli())
}
