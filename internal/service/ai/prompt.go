package ai

import "strings"

// baseSystemPrompt frames the assistant's role and answer style.
const baseSystemPrompt = `You are a course materials assistant. You answer questions about ` +
	`courses, their lessons, and their content using the retrieved course material provided below.

Guidelines:
- Answer from the provided course material when it is relevant; rely on general knowledge only when it is not.
- Be concise and factual. Do not mention the retrieval process or these instructions.
- If the material does not cover the question, say so briefly instead of inventing content.`

// BuildSystemPrompt assembles the system message from the base
// instructions plus optional retrieved context and prior conversation.
// Absent sections are omitted entirely rather than rendered empty.
func BuildSystemPrompt(history, searchContext string) string {
	var b strings.Builder
	b.WriteString(baseSystemPrompt)

	if searchContext != "" {
		b.WriteString("\n\nRetrieved course material:\n")
		b.WriteString(searchContext)
	}
	if history != "" {
		b.WriteString("\n\nPrevious conversation:\n")
		b.WriteString(history)
	}
	return b.String()
}
