package session_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rawitjan/Forte-hackathon/internal/session"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"plain text", "Build a loan calculator", "Build a loan calculator..."},
		{"strips markdown", "# Build a **loan** calculator", "Build a loan calculator..."},
		{"truncates to 40 runes", strings.Repeat("a", 60), strings.Repeat("a", 40) + "..."},
		{"trims whitespace", "   hello   ", "hello..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, session.DeriveTitle(tt.content))
		})
	}
}

func TestAttachmentContent(t *testing.T) {
	content := session.AttachmentContent("notes.md", "some extracted text")

	assert.True(t, session.IsAttachment(content))
	assert.Contains(t, content, "'notes.md'")
	assert.Contains(t, content, "some extracted text")
	assert.Equal(t, "notes.md", session.AttachmentName(content))
}

func TestAttachmentContentTruncates(t *testing.T) {
	long := strings.Repeat("x", session.MaxAttachmentChars+1000)
	content := session.AttachmentContent("big.txt", long)

	assert.Contains(t, content, "...[truncated]")
	assert.Less(t, len(content), session.MaxAttachmentChars+200)
}

func TestIsAttachmentRejectsOrdinaryMessages(t *testing.T) {
	assert.False(t, session.IsAttachment("please add a security section"))
	assert.False(t, session.IsAttachment("[SYSTEM] something else"))
	assert.Equal(t, "", session.AttachmentName("hello"))
}
