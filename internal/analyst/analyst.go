// Package analyst orchestrates the requirements-gathering
// conversation: ordinary turns against the inference gateway, session
// persistence, and the two-pass draft/critique generation pipeline.
package analyst

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/rawitjan/Forte-hackathon/internal/cache"
	"github.com/rawitjan/Forte-hackathon/internal/config"
	"github.com/rawitjan/Forte-hackathon/internal/confluence"
	"github.com/rawitjan/Forte-hackathon/internal/extract"
	"github.com/rawitjan/Forte-hackathon/internal/gateway"
	"github.com/rawitjan/Forte-hackathon/internal/prompt"
	"github.com/rawitjan/Forte-hackathon/internal/session"
	"github.com/rawitjan/Forte-hackathon/internal/store"
)

// Pipeline status notifications, emitted in order to the optional
// progress observer during document generation.
const (
	StatusAnalyzing  = "Analyzing conversation input..."
	StatusBuilding   = "Building user stories and requirements..."
	StatusValidating = "Validating security and compliance standards..."
	StatusFinalizing = "Finalizing document..."
)

// TurnResult is the outcome of one conversational turn. Exactly one
// of Reply and Failure is meaningful: call sites decide whether a
// failure becomes conversational text or propagates.
type TurnResult struct {
	Reply   string
	Failure error
}

// FallbackReply renders a gateway failure as a displayable assistant
// turn so the conversation can continue.
func FallbackReply(err error) string {
	return fmt.Sprintf("Sorry, I could not process that right now (%v). Please try again.", err)
}

// Analyst drives one conversation in one operating mode. Mode and
// session are coupled: switching mode starts a fresh session.
type Analyst struct {
	cfg     config.Config
	store   store.Store
	gateway gateway.Gateway
	wiki    *confluence.Client
	logger  *slog.Logger
	tracer  trace.Tracer

	mu        sync.Mutex
	sessionID string
	system    string
	today     time.Time
	messages  []session.Message
	lastAudio string
}

// New creates an Analyst, resuming the configured session when one is
// set and starting a fresh one otherwise.
func New(cfg config.Config, st store.Store, gw gateway.Gateway, wiki *confluence.Client, logger *slog.Logger, tracer trace.Tracer) *Analyst {
	a := &Analyst{
		cfg:     cfg,
		store:   st,
		gateway: gw,
		wiki:    wiki,
		logger:  logger,
		tracer:  tracer,
		system:  prompt.Compose(cfg.Mode),
		today:   time.Now(),
	}

	if cfg.SessionID != "" {
		a.sessionID = cfg.SessionID
		a.messages = st.Load(context.Background(), cfg.SessionID)
		logger.Info("resumed session", "session_id", a.sessionID, "message_count", len(a.messages))
	} else {
		a.sessionID = uuid.NewString()
		logger.Info("created new session", "session_id", a.sessionID, "mode", cfg.Mode)
	}

	return a
}

// SessionID returns the current session identifier.
func (a *Analyst) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// Mode returns the current operating mode.
func (a *Analyst) Mode() string {
	return a.cfg.Mode
}

// Messages returns a copy of the in-memory conversation.
func (a *Analyst) Messages() []session.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]session.Message, len(a.messages))
	copy(out, a.messages)
	return out
}

func (a *Analyst) systemPrompt() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.system
}

// record appends a turn to the in-memory conversation and persists it
// best-effort through the store.
func (a *Analyst) record(ctx context.Context, role, content string) {
	a.mu.Lock()
	a.messages = append(a.messages, session.Message{Role: role, Content: content})
	sessionID := a.sessionID
	a.mu.Unlock()

	a.store.Append(ctx, sessionID, role, content)
}

// RecordAssistant injects a canned assistant turn (greetings, file
// acknowledgements, failure apologies) into the conversation.
func (a *Analyst) RecordAssistant(ctx context.Context, content string) {
	a.record(ctx, session.RoleAssistant, content)
}

// Respond handles one ordinary conversational turn. The user turn is
// recorded immediately; the assistant turn only on success. A gateway
// failure comes back as a structured TurnResult, not a panic and not
// silently stringified.
func (a *Analyst) Respond(ctx context.Context, userText string) TurnResult {
	a.record(ctx, session.RoleUser, userText)

	reply, err := a.gateway.Converse(ctx, a.systemPrompt(), a.Messages())
	if err != nil {
		a.logger.Error("conversational turn failed", "session_id", a.SessionID(), "error", err)
		return TurnResult{Failure: err}
	}

	a.record(ctx, session.RoleAssistant, reply)
	return TurnResult{Reply: reply}
}

// GenerateDocument runs the two-pass pipeline over the accumulated
// conversation: draft against the BRD template, then a self-critique
// pass that repairs the draft, then extraction of the delimited
// document. Any gateway error is terminal for this invocation; the
// conversation log is never touched and the returned document is the
// caller's to keep.
func (a *Analyst) GenerateDocument(ctx context.Context, onStatus func(string)) (string, error) {
	ctx, span := a.tracer.Start(ctx, "generate_requirements_document")
	defer span.End()

	notify := func(msg string) {
		if onStatus != nil {
			onStatus(msg)
		}
	}

	notify(StatusAnalyzing)
	working := a.Messages()

	notify(StatusBuilding)
	working = append(working, session.Message{
		Role:    session.RoleUser,
		Content: prompt.GenerationTrigger(a.today),
	})
	draft, err := a.gateway.Converse(ctx, a.systemPrompt(), working)
	if err != nil {
		return "", fmt.Errorf("draft pass failed: %w", err)
	}

	notify(StatusValidating)
	working = append(working,
		session.Message{Role: session.RoleAssistant, Content: draft},
		session.Message{Role: session.RoleUser, Content: prompt.CritiqueTrigger},
	)
	reviewed, err := a.gateway.Converse(ctx, a.systemPrompt(), working)
	if err != nil {
		return "", fmt.Errorf("critique pass failed: %w", err)
	}

	notify(StatusFinalizing)
	doc := extract.Extract(reviewed)

	a.logger.Info("document generated", "session_id", a.SessionID(), "length", len(doc))
	return doc, nil
}

// Transcribe converts a recording into text. Failures come back as a
// displayable error string, by contract with callers; the second
// return is false when the same recording was already ingested.
func (a *Analyst) Transcribe(ctx context.Context, audio []byte) (string, bool) {
	key := cache.AudioKey(audio)

	a.mu.Lock()
	duplicate := key == a.lastAudio
	a.lastAudio = key
	a.mu.Unlock()

	if duplicate {
		return "", false
	}

	text, err := a.gateway.Transcribe(ctx, audio)
	if err != nil {
		a.logger.Error("transcription failed", "error", err)
		return fmt.Sprintf("Error: transcription failed: %v", err), true
	}
	return text, true
}

// AttachFile reads a plain-text document and injects it into the
// conversation as a file-context user turn followed by an assistant
// acknowledgement. Binary formats need an external extractor and are
// rejected here.
func (a *Analyst) AttachFile(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
	default:
		return "", fmt.Errorf("unsupported file type %q (only .txt and .md can be attached)", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	name := filepath.Base(path)
	a.record(ctx, session.RoleUser, session.AttachmentContent(name, string(data)))

	ack := fmt.Sprintf("I have read the document %s and will take it into account while gathering requirements.", name)
	a.RecordAssistant(ctx, ack)

	a.logger.Info("file attached", "session_id", a.SessionID(), "file", name, "bytes", len(data))
	return ack, nil
}

// StartNewSession discards the in-memory conversation and begins a
// fresh session in the same mode. Already-persisted turns stay in the
// store.
func (a *Analyst) StartNewSession() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessionID = uuid.NewString()
	a.messages = nil
	a.lastAudio = ""
	a.logger.Info("created new session", "session_id", a.sessionID, "mode", a.cfg.Mode)
}

// SwitchMode changes the operating mode, which also starts a fresh
// session: mode and session are coupled one-to-one.
func (a *Analyst) SwitchMode(mode string) {
	a.mu.Lock()
	a.cfg.Mode = mode
	a.system = prompt.Compose(mode)
	a.mu.Unlock()
	a.StartNewSession()
}

// LoadSession resumes a stored session by id.
func (a *Analyst) LoadSession(ctx context.Context, id string) int {
	messages := a.store.Load(ctx, id)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessionID = id
	a.messages = messages
	a.lastAudio = ""
	a.logger.Info("loaded session", "session_id", id, "message_count", len(messages))
	return len(messages)
}

// ListSessions returns recent stored sessions, newest first.
func (a *Analyst) ListSessions(ctx context.Context) []store.Summary {
	return a.store.ListRecent(ctx)
}
