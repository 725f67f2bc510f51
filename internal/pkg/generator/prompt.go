package generator

import "strings"

// instruction is sent verbatim with every photo.
var instruction = strings.Join([]string{
	`You are a visual effects artist creating a "climate time machine" image.`,
	`Take the provided photograph and show the exact same place, from the same camera angle and framing, fifty years from now after unchecked climate change.`,
	``,
	`Requirements for the image:`,
	`- Keep the recognizable landmarks, buildings, terrain and composition of the original so the before/after comparison is obvious.`,
	`- Apply the climate impacts that fit the scene: rising sea levels and flooding near water, drought, cracked earth and dead vegetation in dry or green areas, wildfire smoke and burnt trees near forests, melted snow and exposed rock in mountains, extreme heat haze and abandoned streets in cities.`,
	`- Photorealistic result, consistent lighting, no text, logos, borders or watermarks inside the image.`,
	`- If there are people, keep them unrecognizable or remove them.`,
	``,
	`Requirements for the text:`,
	`- After the image, reply with exactly one line in the form TITLE: <caption>.`,
	`- The caption is a short, punchy, slightly ironic question or statement of at most six words, for example "TITLE: Still Going Here?".`,
	`- Do not add any other text.`,
}, "\n")

// Instruction returns the fixed prompt sent alongside the photo.
func Instruction() string {
	return instruction
}
