package builder

import "github.com/leofalp/promptcraft/core/prompt"

const (
	soraInstruction = "You are an expert prompt engineer for OpenAI Sora. Take the user's concept and rewrite it into a highly detailed, physically accurate video description. Focus on lighting, camera movement, texture, and temporal consistency. Keep it under 100 words. Return ONLY the prompt."

	veoInstruction = "You are an expert prompt engineer for Google Veo. Rewrite the user's concept into a cinematic 1080p video description. Focus on composition, color grading, and smooth motion. Return ONLY the prompt."

	grokStandardInstruction  = "You are an expert prompt writer for Grok (Flux) image generation. Rewrite the user's prompt to be highly descriptive, using natural language. Focus on clarity and visual fidelity."
	grokFunInstruction       = "You are an expert prompt writer for Grok. Rewrite the user's prompt to be witty, rebellious, and humorous, while still describing an image. Make it fun."
	grokTechnicalInstruction = "You are an expert prompt writer. Rewrite the prompt to be precise, technical, and code-oriented if applicable."
	grokSuffix               = " Return ONLY the prompt text."

	midjourneyInstruction = "You are an expert prompt engineer for Midjourney. Rewrite the user's concept into a vivid image prompt: subject first, then style, lighting, and composition, as short comma-separated phrases. Keep any --parameters the user supplied at the end. Return ONLY the prompt."

	comfyInstruction = "You are an expert prompt engineer for Stable Diffusion workflows in ComfyUI. Rewrite the user's concept into a detailed positive prompt of comma-separated descriptive tags, most important first. Return ONLY the prompt."

	a1111Instruction = "You are an expert prompt engineer for Automatic1111 Stable Diffusion. Rewrite the user's concept into a tag-based positive prompt: comma-separated keywords covering subject, quality, style, and lighting, with (emphasis:1.2) weights where useful. Return ONLY the prompt."

	negativeInstruction = "You are an expert Stable Diffusion prompt engineer. Given the user's positive prompt, write a negative prompt: comma-separated artifacts, defects, and unwanted traits to avoid for this image. Return ONLY the negative prompt."
)

// Instruction returns the rewrite instruction for tool. tone only matters for
// grok; an empty tone reads as Standard.
func Instruction(tool prompt.ToolID, tone prompt.Tone) string {
	switch tool {
	case prompt.Sora:
		return soraInstruction
	case prompt.Veo:
		return veoInstruction
	case prompt.Grok:
		switch tone {
		case prompt.ToneFun:
			return grokFunInstruction + grokSuffix
		case prompt.ToneTechnical:
			return grokTechnicalInstruction + grokSuffix
		}
		return grokStandardInstruction + grokSuffix
	case prompt.Midjourney:
		return midjourneyInstruction
	case prompt.Comfy:
		return comfyInstruction
	case prompt.A1111:
		return a1111Instruction
	}
	return ""
}
