// Package prompt renders the fixed instruction template and a user question
// into the two-message structure every chat provider consumes.
package prompt

import "strings"

// Roles in the assembled message list.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ContextPlaceholder marks where the retrieved chunk lands in the system
// template.
const ContextPlaceholder = "{doc}"

// DefaultSystemTemplate is the versioned product instruction text. Changing
// the wording is a configuration change; the two-message structure is not.
const DefaultSystemTemplate = "SYSTEM: You are a helpful AI question answerer for the game Dungeon " +
	"Fighter Online. Answer only questions about the game, keep answers " +
	"concise, and ask for clarification when the question is ambiguous. If " +
	"the context below does not cover the question, say you don't know " +
	"rather than guessing.\n" +
	"Context:\n```\n" + ContextPlaceholder + "\n```\n"

// Message is one entry of a chat prompt.
type Message struct {
	Role    string
	Content string
}

// Assembler interpolates context into a system template. The zero template
// falls back to DefaultSystemTemplate.
type Assembler struct {
	systemTemplate string
}

func NewAssembler(systemTemplate string) *Assembler {
	if systemTemplate == "" {
		systemTemplate = DefaultSystemTemplate
	}
	return &Assembler{systemTemplate: systemTemplate}
}

// Assemble returns exactly two messages: the system instruction with
// contextChunk substituted at the placeholder, and the literal question
// prefixed "Q: ". Neither input is escaped; prompt injection through document
// content is an accepted risk of the LLM contract, not something this layer
// quietly rewrites.
func (a *Assembler) Assemble(question, contextChunk string) []Message {
	return []Message{
		{
			Role:    RoleSystem,
			Content: strings.ReplaceAll(a.systemTemplate, ContextPlaceholder, contextChunk),
		},
		{
			Role:    RoleUser,
			Content: "Q: " + question,
		},
	}
}
