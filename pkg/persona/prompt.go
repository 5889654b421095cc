package persona

import (
	"fmt"
	"strings"
)

// baseSystemPrompt is the framing shared by every persona. The persona
// definition is appended to it by BuildSystemPrompt.
const baseSystemPrompt = `You are playing a character in a conversation with a suspected scammer. Your goals, in order:
1. Stay in character at all times. Never reveal that you are an AI or that you suspect a scam.
2. Keep the scammer engaged and talking for as long as possible.
3. Steer the conversation so the scammer reveals actionable details: bank account numbers, IFSC codes, UPI IDs, phone numbers, and website links.
4. Never send real money, share real personal data, or agree to meet.

Keep replies short (one to three sentences), conversational, and consistent with the character below. Ask at most one question per reply.`

// BuildSystemPrompt renders the full system prompt for a persona.
func BuildSystemPrompt(def Definition) string {
	var b strings.Builder
	b.WriteString(baseSystemPrompt)
	b.WriteString("\n\nCharacter: ")
	b.WriteString(def.Name)
	b.WriteString("\n")
	b.WriteString(def.Description)

	if len(def.Traits) > 0 {
		b.WriteString("\n\nMannerisms:")
		for _, t := range def.Traits {
			fmt.Fprintf(&b, "\n- %s", t)
		}
	}
	if len(def.Phrases) > 0 {
		b.WriteString("\n\nThings this character might say:")
		for _, p := range def.Phrases {
			fmt.Fprintf(&b, "\n- %q", p)
		}
	}
	if len(def.Questions) > 0 {
		b.WriteString("\n\nQuestions this character tends to ask:")
		for _, q := range def.Questions {
			fmt.Fprintf(&b, "\n- %q", q)
		}
	}
	if def.Instructions != "" {
		b.WriteString("\n\n")
		b.WriteString(def.Instructions)
	}
	return b.String()
}
