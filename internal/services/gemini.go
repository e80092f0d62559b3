package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"google.golang.org/genai"

	"alfredoptarigan/resume-matcher/internal/apperrors"
	"alfredoptarigan/resume-matcher/internal/config"
)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

// newIPv4Client builds the HTTP client used for every Gemini call. The
// dialer is pinned to IPv4 because some hosts resolve the API to an IPv6
// address they cannot route.
func newIPv4Client(connectTimeout, requestTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: connectTimeout}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = func(ctx context.Context, _, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, "tcp4", addr)
	}
	transport.TLSHandshakeTimeout = connectTimeout

	return &http.Client{
		Transport: transport,
		Timeout:   requestTimeout,
	}
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig) (GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newIPv4Client(cfg.ConnectTimeout, cfg.RequestTimeout),
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.BaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	embedModel := cfg.EmbedModel
	if embedModel == "" {
		embedModel = "text-embedding-004"
	}

	return &geminiService{
		client:     client,
		modelName:  cfg.Model,
		embedModel: embedModel,
	}, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements GeminiService. It makes exactly one attempt.
func (g *geminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		log.Printf("❌ Gemini API error: %v", err)
		return "", classifyGeminiError(err)
	}

	if resp == nil {
		return "", &apperrors.MalformedOutputError{Err: errors.New("nil response")}
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" &&
		resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		log.Printf("⚠️  Gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
		return "", &apperrors.ContentBlockedError{Reason: string(resp.PromptFeedback.BlockReason)}
	}

	text := resp.Text()
	if text == "" {
		if reason, blocked := blockedFinish(resp); blocked {
			log.Printf("⚠️  Gemini stopped for %s", reason)
			return "", &apperrors.ContentBlockedError{Reason: reason}
		}
		return "", &apperrors.MalformedOutputError{Err: errors.New("no text content in response")}
	}

	log.Printf("🤖 Gemini response received (%d bytes)", len(text))
	return text, nil
}

func blockedFinish(resp *genai.GenerateContentResponse) (string, bool) {
	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		switch candidate.FinishReason {
		case genai.FinishReasonSafety,
			genai.FinishReasonBlocklist,
			genai.FinishReasonProhibitedContent,
			genai.FinishReasonSPII,
			genai.FinishReasonRecitation:
			return string(candidate.FinishReason), true
		}
	}
	return "", false
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		body := apiErr.Message
		if apiErr.Status != "" {
			body = fmt.Sprintf("%s: %s", apiErr.Status, apiErr.Message)
		}
		return &apperrors.HTTPError{Status: apiErr.Code, Body: body}
	}
	return &apperrors.TransportError{Err: err}
}
