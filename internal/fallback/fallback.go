// Package fallback answers visitor questions without the upstream model by
// matching keywords against a fixed list of canned replies.
package fallback

import "strings"

// Rule pairs a predicate with the reply returned when it matches.
type Rule struct {
	Name     string
	Match    func(query string) bool
	Response string
}

// Bot evaluates rules top to bottom; the first match wins.
type Bot struct {
	rules           []Rule
	defaultResponse string
}

// New creates a Bot with the given rules and default reply.
func New(rules []Rule, defaultResponse string) *Bot {
	return &Bot{rules: rules, defaultResponse: defaultResponse}
}

// NewDefault creates a Bot with the built-in portfolio replies.
func NewDefault() *Bot {
	return New(DefaultRules(), defaultReply)
}

// DefaultRule names the reply given when no rule matches.
const DefaultRule = "default"

// Reply returns the name of the matching rule and its reply.
// Matching is case-insensitive.
func (b *Bot) Reply(query string) (rule, response string) {
	q := strings.ToLower(query)
	for _, r := range b.rules {
		if r.Match(q) {
			return r.Name, r.Response
		}
	}
	return DefaultRule, b.defaultResponse
}

// ContainsAny builds a predicate matching when the query contains any keyword.
func ContainsAny(keywords ...string) func(string) bool {
	return func(q string) bool {
		for _, k := range keywords {
			if strings.Contains(q, k) {
				return true
			}
		}
		return false
	}
}

// DefaultRules returns the built-in rule list in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "skills", Match: ContainsAny("skill", "technolog", "stack", "python", "know"), Response: skillsReply},
		{Name: "experience", Match: ContainsAny("experience", "work", "job", "career", "intern"), Response: experienceReply},
		{Name: "projects", Match: ContainsAny("project", "portfolio", "built", "created", "underwater", "nexus", "opstream"), Response: projectsReply},
		{Name: "contact", Match: ContainsAny("contact", "reach", "email", "phone", "hire"), Response: contactReply},
		{Name: "availability", Match: ContainsAny("available", "freelance", "open", "opportunity"), Response: availabilityReply},
		{Name: "frontend", Match: ContainsAny("react", "frontend", "next", "web"), Response: frontendReply},
		{Name: "ai", Match: ContainsAny("ai", "ml", "machine", "deep", "vision", "llm", "rag"), Response: aiReply},
		{Name: "achievements", Match: ContainsAny("achieve", "award", "certif", "winner", "fund"), Response: achievementsReply},
		{Name: "greeting", Match: ContainsAny("hello", "hi", "hey"), Response: greetingReply},
	}
}
