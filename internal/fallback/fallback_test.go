package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReply(t *testing.T) {
	bot := NewDefault()

	tests := []struct {
		query string
		rule  string
	}{
		{"What are his skills?", "skills"},
		{"Which TECHNOLOGIES does he use?", "skills"},
		{"Tell me about his internship", "experience"},
		{"Show me the underwater detection thing", "projects"},
		{"How can I contact him?", "contact"},
		{"Is he available for freelance?", "availability"},
		{"Does he do React?", "frontend"},
		{"Tell me about machine learning", "ai"},
		{"Any awards?", "achievements"},
		{"hey", "greeting"},
		{"zzz", DefaultRule},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rule, _ := bot.Reply(tt.query)
			assert.Equal(t, tt.rule, rule)
		})
	}
}

func TestReply_FirstMatchWins(t *testing.T) {
	bot := NewDefault()

	// matches both skills and projects; skills is listed first
	rule, reply := bot.Reply("python projects")
	assert.Equal(t, "skills", rule)
	assert.Equal(t, skillsReply, reply)
}

func TestReply_Default(t *testing.T) {
	bot := NewDefault()

	for _, q := range []string{"zzz", ""} {
		rule, reply := bot.Reply(q)
		assert.Equal(t, DefaultRule, rule)
		assert.Equal(t, defaultReply, reply)
	}
}

func TestCustomRules(t *testing.T) {
	bot := New([]Rule{
		{Name: "ping", Match: ContainsAny("ping"), Response: "pong"},
	}, "?")

	rule, reply := bot.Reply("PING please")
	assert.Equal(t, "ping", rule)
	assert.Equal(t, "pong", reply)

	rule, reply = bot.Reply("hello")
	assert.Equal(t, DefaultRule, rule)
	assert.Equal(t, "?", reply)
}
