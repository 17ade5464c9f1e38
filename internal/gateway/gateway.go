package gateway

import (
	"context"

	"github.com/rawitjan/Forte-hackathon/internal/session"
)

// Gateway is the opaque inference capability the pipeline consumes.
// It is stateless across calls: the caller supplies the full ordered
// context every time.
type Gateway interface {
	// Converse sends a system directive plus the ordered conversation
	// and returns the generated text. Single shot, no streaming.
	Converse(ctx context.Context, system string, messages []session.Message) (string, error)

	// Transcribe converts raw audio into best-effort text.
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// geminiRequest represents the request body for the Gemini API
type geminiRequest struct {
	SystemInstruction *geminiContent    `json:"system_instruction,omitempty"`
	Contents          []geminiContent   `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

// geminiContent represents one turn in Gemini wire format
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// geminiPart represents a text or inline-media part
type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

// inlineData carries base64-encoded media (audio for transcription)
type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

// geminiResponse represents the response from the Gemini API
type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata map[string]interface{} `json:"usageMetadata"`
}
