// Package prompt assembles the message list sent to the completion API:
// one system message holding the assistant instructions and the portfolio
// knowledge text, the most recent conversation turns, then the new message.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"portfoliochat/internal/core"
)

// MaxHistory is the number of prior turns forwarded upstream.
const MaxHistory = 10

//go:embed knowledge.md
var defaultKnowledge string

// LoadKnowledge reads knowledge text from path, or returns the embedded
// text when path is empty.
func LoadKnowledge(path string) (string, error) {
	if path == "" {
		return defaultKnowledge, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read knowledge file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("knowledge file %s is empty", path)
	}
	return text, nil
}

const instructions = `You are Sreeshanth's AI Portfolio Assistant, a relaxed and helpful assistant that answers questions about Sreeshanth Peddi.

IMPORTANT INSTRUCTIONS:
1. Keep responses SHORT and CASUAL. Do not over-explain.
2. State achievements plainly. Do not exaggerate or use marketing language.
3. If the conversation opens with only a greeting ("hi", "hello", "hey"), ask who the visitor is (recruiter, student, developer, etc.) before giving any information.
4. Answer only what is asked. Do not dump all information at once.
5. You ONLY know about Sreeshanth from the context below. If something is not in it, say you don't have that info. Never make anything up.
6. Use markdown sparingly. When linking GitHub repos, use the form [repo](url).

PORTFOLIO CONTEXT:
`

const closing = `
Remember: be helpful, genuine and direct.`

// Builder produces upstream prompts around a fixed system message.
type Builder struct {
	system     string
	maxHistory int
}

// NewBuilder creates a Builder embedding knowledge verbatim in the system message.
func NewBuilder(knowledge string) *Builder {
	return &Builder{
		system:     instructions + knowledge + "\n" + closing,
		maxHistory: MaxHistory,
	}
}

// Build returns system + trimmed history + the new user message, in
// chronological order. Only the last MaxHistory entries are considered;
// among those, entries with a role other than user or assistant are dropped.
func (b *Builder) Build(history []core.Message, message string) []core.Message {
	recent := Trim(history, b.maxHistory)

	msgs := make([]core.Message, 0, len(recent)+2)
	msgs = append(msgs, core.Message{Role: core.RoleSystem, Content: b.system})
	for _, m := range recent {
		if !AllowedRole(m.Role) {
			continue
		}
		msgs = append(msgs, core.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, core.Message{Role: core.RoleUser, Content: message})
	return msgs
}

// Trim returns the last n entries of history, oldest first.
func Trim(history []core.Message, n int) []core.Message {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// AllowedRole reports whether a caller-supplied turn may be forwarded.
func AllowedRole(role string) bool {
	return role == core.RoleUser || role == core.RoleAssistant
}
