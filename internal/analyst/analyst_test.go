package analyst_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/rawitjan/Forte-hackathon/internal/analyst"
	"github.com/rawitjan/Forte-hackathon/internal/config"
	"github.com/rawitjan/Forte-hackathon/internal/confluence"
	"github.com/rawitjan/Forte-hackathon/internal/prompt"
	"github.com/rawitjan/Forte-hackathon/internal/session"
	"github.com/rawitjan/Forte-hackathon/internal/store"
)

// scriptedGateway replays canned responses and records every call it
// receives, so tests can assert on the exact message sequences.
type scriptedGateway struct {
	replies       []string
	failAt        int // 1-based index of the call that fails, 0 for never
	err           error
	transcript    string
	transcribeErr error

	calls   [][]session.Message
	systems []string
}

func (g *scriptedGateway) Converse(ctx context.Context, system string, messages []session.Message) (string, error) {
	snapshot := make([]session.Message, len(messages))
	copy(snapshot, messages)
	g.calls = append(g.calls, snapshot)
	g.systems = append(g.systems, system)

	if g.failAt == len(g.calls) {
		return "", g.err
	}
	if len(g.calls) > len(g.replies) {
		return "", errors.New("scripted gateway exhausted")
	}
	return g.replies[len(g.calls)-1], nil
}

func (g *scriptedGateway) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if g.transcribeErr != nil {
		return "", g.transcribeErr
	}
	return g.transcript, nil
}

func newTestAnalyst(t *testing.T, gw *scriptedGateway) *analyst.Analyst {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")
	wiki := confluence.New("", "", "", "", logger)
	cfg := config.Config{Mode: config.ModeNewProduct}
	return analyst.New(cfg, store.NewNoop(logger), gw, wiki, logger, tracer)
}

func TestRespondRecordsBothTurns(t *testing.T) {
	gw := &scriptedGateway{replies: []string{"Tell me about the users."}}
	a := newTestAnalyst(t, gw)

	result := a.Respond(context.Background(), "I need a payment feature")
	require.NoError(t, result.Failure)
	assert.Equal(t, "Tell me about the users.", result.Reply)

	messages := a.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, session.RoleUser, messages[0].Role)
	assert.Equal(t, session.RoleAssistant, messages[1].Role)
	require.Len(t, gw.systems, 1)
	assert.Equal(t, prompt.Compose(config.ModeNewProduct), gw.systems[0])
}

func TestRespondFailureLeavesNoAssistantTurn(t *testing.T) {
	gw := &scriptedGateway{failAt: 1, err: errors.New("quota exceeded")}
	a := newTestAnalyst(t, gw)

	result := a.Respond(context.Background(), "hello")
	require.Error(t, result.Failure)
	assert.Empty(t, result.Reply)

	messages := a.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, session.RoleUser, messages[0].Role)

	apology := analyst.FallbackReply(result.Failure)
	assert.Contains(t, apology, "quota exceeded")
}

func TestGenerateDocumentTwoPassSequencing(t *testing.T) {
	gw := &scriptedGateway{replies: []string{
		"Got it. What currencies?",
		"DRAFT DOCUMENT",
		"preamble\n" + prompt.StartSentinel + "\n# BRD: Transfers\nBody\n" + prompt.EndSentinel + "\ntrailer",
	}}
	a := newTestAnalyst(t, gw)
	ctx := context.Background()

	require.NoError(t, a.Respond(ctx, "I want cross-border transfers").Failure)

	var statuses []string
	doc, err := a.GenerateDocument(ctx, func(s string) { statuses = append(statuses, s) })
	require.NoError(t, err)
	assert.Equal(t, "# BRD: Transfers\nBody", doc)

	require.Len(t, gw.calls, 3, "one conversational call plus exactly two pipeline calls")

	draftCall := gw.calls[1]
	require.Len(t, draftCall, 3)
	assert.Equal(t, session.RoleUser, draftCall[2].Role)
	assert.Contains(t, draftCall[2].Content, "COMMAND: SYSTEM_GENERATE")

	critiqueCall := gw.calls[2]
	require.Len(t, critiqueCall, 5)
	assert.Equal(t, session.RoleAssistant, critiqueCall[3].Role)
	assert.Equal(t, "DRAFT DOCUMENT", critiqueCall[3].Content)
	assert.Equal(t, session.RoleUser, critiqueCall[4].Role)
	assert.Equal(t, prompt.CritiqueTrigger, critiqueCall[4].Content)

	assert.Equal(t, []string{
		analyst.StatusAnalyzing,
		analyst.StatusBuilding,
		analyst.StatusValidating,
		analyst.StatusFinalizing,
	}, statuses)

	// The pipeline never writes to the conversation log.
	assert.Len(t, a.Messages(), 2)
}

func TestGenerateDocumentNilStatusObserver(t *testing.T) {
	gw := &scriptedGateway{replies: []string{
		"draft",
		prompt.StartSentinel + "\n# Doc\n" + prompt.EndSentinel,
	}}
	a := newTestAnalyst(t, gw)

	doc, err := a.GenerateDocument(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "# Doc", doc)
}

func TestGenerateDocumentDraftFailureIsTerminal(t *testing.T) {
	gw := &scriptedGateway{failAt: 1, err: errors.New("model overloaded")}
	a := newTestAnalyst(t, gw)

	_, err := a.GenerateDocument(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "draft pass")
	assert.Len(t, gw.calls, 1, "no critique pass after a failed draft")
	assert.Empty(t, a.Messages(), "failed generation must not touch history")
}

func TestGenerateDocumentCritiqueFailureIsTerminal(t *testing.T) {
	gw := &scriptedGateway{replies: []string{"draft"}, failAt: 2, err: errors.New("timeout")}
	a := newTestAnalyst(t, gw)

	_, err := a.GenerateDocument(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "critique pass")
	assert.Len(t, gw.calls, 2)
	assert.Empty(t, a.Messages())
}

func TestTranscribeErrorBecomesText(t *testing.T) {
	gw := &scriptedGateway{transcribeErr: errors.New("bad audio")}
	a := newTestAnalyst(t, gw)

	text, fresh := a.Transcribe(context.Background(), []byte{1, 2, 3})
	assert.True(t, fresh)
	assert.Contains(t, text, "transcription failed")
	assert.Contains(t, text, "bad audio")
}

func TestTranscribeSkipsDuplicateRecording(t *testing.T) {
	gw := &scriptedGateway{transcript: "add two factor auth"}
	a := newTestAnalyst(t, gw)
	ctx := context.Background()

	text, fresh := a.Transcribe(ctx, []byte("same recording"))
	assert.True(t, fresh)
	assert.Equal(t, "add two factor auth", text)

	_, fresh = a.Transcribe(ctx, []byte("same recording"))
	assert.False(t, fresh)

	_, fresh = a.Transcribe(ctx, []byte("different recording"))
	assert.True(t, fresh)
}

func TestAttachFile(t *testing.T) {
	gw := &scriptedGateway{}
	a := newTestAnalyst(t, gw)

	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("existing system overview"), 0644))

	ack, err := a.AttachFile(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, ack, "notes.md")

	messages := a.Messages()
	require.Len(t, messages, 2)
	assert.True(t, session.IsAttachment(messages[0].Content))
	assert.Contains(t, messages[0].Content, "existing system overview")
	assert.Equal(t, session.RoleAssistant, messages[1].Role)
}

func TestAttachFileRejectsBinaryFormats(t *testing.T) {
	a := newTestAnalyst(t, &scriptedGateway{})

	_, err := a.AttachFile(context.Background(), "report.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
	assert.Empty(t, a.Messages())
}

func TestSwitchModeStartsFreshSession(t *testing.T) {
	gw := &scriptedGateway{replies: []string{"ok", "ok"}}
	a := newTestAnalyst(t, gw)
	ctx := context.Background()

	require.NoError(t, a.Respond(ctx, "hello").Failure)
	oldID := a.SessionID()

	a.SwitchMode(config.ModeReporting)
	assert.NotEqual(t, oldID, a.SessionID())
	assert.Empty(t, a.Messages())
	assert.Equal(t, config.ModeReporting, a.Mode())

	require.NoError(t, a.Respond(ctx, "hi again").Failure)
	assert.Equal(t, prompt.Compose(config.ModeReporting), gw.systems[len(gw.systems)-1])
}
