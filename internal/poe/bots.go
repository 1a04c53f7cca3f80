package poe

// AvailableBots returns the curated list of bots known to work with the
// query API. Poe exposes no listing endpoint, so the catalog is maintained
// by hand; bots outside this list can still be addressed directly.
func AvailableBots() []string {
	return []string{
		// OpenAI
		"GPT-4-Turbo",
		"GPT-4",
		"GPT-4o",
		"GPT-4o-mini",
		"o4-mini",

		// Anthropic
		"Claude-Opus-4-Search",
		"Claude-Sonnet-4-Search",
		"Claude-Opus-4-Reasoning",
		"Claude-Sonnet-4-Reasoning",

		// Google
		"Gemini-2.5-Pro",
		"Gemini-2.5-Flash",

		// Meta
		"Llama-4-Maverick-B10",
		"Llama-4-Scout-B10",
		"Llama-3.3-70B",

		// DeepSeek
		"DeepSeek-R1",
		"DeepSeek-V3",

		// Image generation
		"DALL-E-3",
		"FLUX-pro-1.1",
		"StableDiffusionXL",
		"Imagen-4",

		// Poe's default assistant
		"Assistant",
	}
}
