package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/rawitjan/Forte-hackathon/internal/session"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const transcribeInstruction = "Transcribe the audio. Return only the transcript text."

// Gemini calls the Google Generative Language API over HTTP.
type Gemini struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
}

// NewGemini creates a Gemini gateway. A missing API key is a hard
// construction failure: there is no degraded inference mode.
func NewGemini(apiKey, model string, logger *slog.Logger, tracer trace.Tracer, meter metric.Meter) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	return &Gemini{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
		tracer:     tracer,
		meter:      meter,
	}, nil
}

// Converse sends the system directive and the full ordered history and
// returns the model's text response.
func (g *Gemini) Converse(ctx context.Context, system string, messages []session.Message) (string, error) {
	ctx, span := g.tracer.Start(ctx, "gemini_api_call")
	defer span.End()

	contents := make([]geminiContent, len(messages))
	for i, msg := range messages {
		role := "user"
		if msg.Role == session.RoleAssistant {
			role = "model"
		}
		contents[i] = geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		}
	}

	reqBody := geminiRequest{
		Contents:         contents,
		GenerationConfig: &generationConfig{Temperature: 0.3},
	}
	if system != "" {
		reqBody.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: system}},
		}
	}

	return g.generate(ctx, reqBody)
}

// Transcribe sends raw audio inline and returns the transcript text.
func (g *Gemini) Transcribe(ctx context.Context, audio []byte) (string, error) {
	ctx, span := g.tracer.Start(ctx, "gemini_transcribe_call")
	defer span.End()

	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: transcribeInstruction},
				{InlineData: &inlineData{
					MimeType: "audio/wav",
					Data:     base64.StdEncoding.EncodeToString(audio),
				}},
			},
		}},
	}

	return g.generate(ctx, reqBody)
}

// generate performs the HTTP round trip shared by both capabilities.
func (g *Gemini) generate(ctx context.Context, reqBody geminiRequest) (string, error) {
	start := time.Now()

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-goog-api-key", g.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	duration := time.Since(start)
	histogram, err := g.meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err == nil {
		histogram.Record(ctx, float64(duration.Milliseconds()))
	}

	g.recordUsage(ctx, apiResp.UsageMetadata)

	if len(apiResp.Candidates) > 0 {
		var parts []string
		for _, part := range apiResp.Candidates[0].Content.Parts {
			if part.Text != "" {
				parts = append(parts, part.Text)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ""), nil
		}
	}

	return "", fmt.Errorf("empty response from Gemini")
}

// recordUsage records OpenTelemetry counters from usage metadata
func (g *Gemini) recordUsage(ctx context.Context, usage map[string]interface{}) {
	if usage == nil {
		return
	}

	for key, value := range usage {
		if intVal, ok := value.(float64); ok {
			counter, err := g.meter.Int64Counter(
				fmt.Sprintf("llm.usage.%s", key),
				metric.WithDescription(fmt.Sprintf("LLM usage metric: %s", key)),
			)
			if err != nil {
				g.logger.Warn("failed to create counter", "key", key, "error", err)
				continue
			}
			counter.Add(ctx, int64(intVal))
		}
	}
}
