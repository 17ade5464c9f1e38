package session

import "strings"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AttachmentMarker prefixes a user turn that carries the text of an
// uploaded file rather than a genuine utterance. Renderers use it to
// show a compact "file attached" row instead of the full content.
const AttachmentMarker = "[SYSTEM: USER ATTACHED FILE"

// MaxAttachmentChars caps how much extracted file text is injected
// into a single attachment turn.
const MaxAttachmentChars = 50000

const titleLimit = 40

// Message represents a single conversational turn. Timestamp is an
// opaque unique marker assigned by the store at save time; ordering
// is the position in the message list, not the marker value.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Session represents one persisted conversation thread.
type Session struct {
	ID       string    `json:"id"`
	Title    string    `json:"title,omitempty"`
	Messages []Message `json:"messages"`
}

// IsAttachment reports whether a message content is a file-context
// injection rather than a genuine user utterance.
func IsAttachment(content string) bool {
	return strings.HasPrefix(content, AttachmentMarker)
}

// AttachmentContent builds the content of a file-context turn. The
// extracted text is truncated to MaxAttachmentChars with an indicator.
func AttachmentContent(name, text string) string {
	runes := []rune(text)
	truncated := ""
	if len(runes) > MaxAttachmentChars {
		text = string(runes[:MaxAttachmentChars])
		truncated = "\n...[truncated]"
	}
	return AttachmentMarker + " '" + name + "']\n\nCONTENT:\n" + text + truncated
}

// AttachmentName extracts the file name from an attachment turn,
// returning "" for ordinary messages.
func AttachmentName(content string) string {
	if !IsAttachment(content) {
		return ""
	}
	rest := strings.TrimPrefix(content, AttachmentMarker)
	start := strings.Index(rest, "'")
	if start < 0 {
		return ""
	}
	end := strings.Index(rest[start+1:], "'")
	if end < 0 {
		return ""
	}
	return rest[start+1 : start+1+end]
}

// DeriveTitle produces a session title from the first user message:
// markdown markers stripped, whitespace trimmed, truncated to 40 runes.
func DeriveTitle(content string) string {
	clean := strings.NewReplacer("#", "", "*", "").Replace(content)
	clean = strings.TrimSpace(clean)
	runes := []rune(clean)
	if len(runes) > titleLimit {
		clean = string(runes[:titleLimit])
	}
	return clean + "..."
}
