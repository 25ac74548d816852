package tagging

import (
	"fmt"
	"strings"
)

// PromptRevision identifies the prompt wording. It is part of cache keys so
// that changing the prompt invalidates earlier descriptions.
const PromptRevision = "v1"

const (
	promptIntro = `You are an expert UI/UX designer analyzing a vector icon.
I am providing you with a PNG image of the icon.

Your analysis should be based PRIMARILY on the VISUALS of the icon. The visual representation is the most important source of information.`

	promptHint = `The SVG for this icon included a title tag with the following text: "%s".
You can use this as a HINT or for context, but your final description and keywords must be justified by the icon's visual appearance. Do not simply copy the provided text if it doesn't match the image.`

	promptAsk = `Based on your visual analysis, provide:
1. A short, descriptive title (e.g., "User Profile", "Delete Item").
2. An array of 5-7 relevant keywords for searching (e.g., ["person", "account", "avatar", "member"]).`
)

// BuildPrompt returns the description prompt. The hint paragraph is only
// included for a non-empty hint, and the hint never outweighs the image.
func BuildPrompt(hint string) string {
	var sb strings.Builder
	sb.WriteString(promptIntro)
	if hint != "" {
		sb.WriteString("\n\n")
		fmt.Fprintf(&sb, promptHint, hint)
	}
	sb.WriteString("\n\n")
	sb.WriteString(promptAsk)
	return sb.String()
}
