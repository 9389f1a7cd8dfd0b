package prompt

import "strings"

// ToolID identifies a target generative system.
type ToolID string

const (
	Sora       ToolID = "sora"
	Veo        ToolID = "veo"
	Grok       ToolID = "grok"
	Midjourney ToolID = "midjourney"
	Comfy      ToolID = "comfy"
	A1111      ToolID = "a1111"
)

// Tools lists every tool in display order.
var Tools = []ToolID{Sora, Veo, Grok, Midjourney, Comfy, A1111}

// ParseToolID returns the ToolID for a case-insensitive name.
func ParseToolID(value string) (ToolID, bool) {
	id := ToolID(strings.ToLower(strings.TrimSpace(value)))
	for _, tool := range Tools {
		if tool == id {
			return id, true
		}
	}
	return "", false
}

// Family groups tools that share a Shape.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyVideo
	FamilyConversational
	FamilyImage
	FamilyDiffusion
)

func (f Family) String() string {
	switch f {
	case FamilyVideo:
		return "video"
	case FamilyConversational:
		return "conversational"
	case FamilyImage:
		return "image"
	case FamilyDiffusion:
		return "diffusion"
	}
	return "unknown"
}

// Family returns the tool's family.
func (t ToolID) Family() Family {
	switch t {
	case Sora, Veo:
		return FamilyVideo
	case Grok:
		return FamilyConversational
	case Midjourney:
		return FamilyImage
	case Comfy, A1111:
		return FamilyDiffusion
	}
	return FamilyUnknown
}
