package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/template"

	"google.golang.org/genai"

	"github.com/calyptra/autopress/internal/config"
	"github.com/calyptra/autopress/internal/generation"
)

// providerName is the provider identifier recorded on generated
// artifacts and performance records.
const providerName = "gemini"

// ArticleGenerator implements generation.Generator using Google's
// Gemini API. Retry policy lives in the task runner, so each Generate
// call makes exactly one API request.
type ArticleGenerator struct {
	logger         *slog.Logger
	config         config.LLMConfig
	promptTemplate *template.Template
	client         *genai.Client
	model          string
}

// Ensure ArticleGenerator implements generation.Generator.
var _ generation.Generator = (*ArticleGenerator)(nil)

// NewArticleGenerator creates a generator from LLM configuration.
func NewArticleGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*ArticleGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.PromptTemplatePath == "" {
		return nil, fmt.Errorf("%w: prompt template path cannot be empty", generation.ErrInvalidConfig)
	}

	templateContent, err := os.ReadFile(cfg.PromptTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
			generation.ErrInvalidConfig, cfg.PromptTemplatePath, err)
	}
	promptTemplate, err := template.New("article").Parse(string(templateContent))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &ArticleGenerator{
		logger:         logger.With("component", "gemini_generator"),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// Generate produces one content item from the request.
func (g *ArticleGenerator) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	prompt, err := g.buildPrompt(req)
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "requesting article generation",
		"model", g.model,
		"topic", req.Topic,
		"content_type", req.ContentType,
		"prompt_length", len(prompt))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
	if err != nil {
		classified := classifyAPIError(err)
		g.logger.ErrorContext(ctx, "gemini API call failed",
			"error", err,
			"transient", generation.IsTransient(classified))
		return nil, classified
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}
	return parseArticle([]byte(text))
}

// buildPrompt renders the prompt template for one request.
func (g *ArticleGenerator) buildPrompt(req generation.Request) (string, error) {
	if req.Topic == "" {
		return "", fmt.Errorf("%w: request topic cannot be empty", generation.ErrInvalidConfig)
	}

	var buf bytes.Buffer
	err := g.promptTemplate.Execute(&buf, promptData{
		Topic:          req.Topic,
		Keywords:       req.Keywords,
		KeyInsights:    req.KeyInsights,
		BestPractices:  req.BestPractices,
		BrandVoice:     req.BrandVoice,
		TargetAudience: req.TargetAudience,
		ContentType:    req.ContentType,
		MinWordCount:   req.MinWordCount,
		MaxWordCount:   req.MaxWordCount,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// extractText pulls the generated text out of the API response,
// rejecting empty and safety-blocked results.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", generation.ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	text := ""
	for _, part := range candidate.Content.Parts {
		text += part.Text
	}
	if text == "" {
		return "", fmt.Errorf("%w: no text parts in response", generation.ErrInvalidResponse)
	}
	return text, nil
}

// parseArticle decodes and validates the model's JSON article.
func parseArticle(data []byte) (*generation.Result, error) {
	var article articleSchema
	if err := json.Unmarshal(data, &article); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}
	if article.Title == "" {
		return nil, fmt.Errorf("%w: article missing title", generation.ErrInvalidResponse)
	}
	if article.Body == "" {
		return nil, fmt.Errorf("%w: article missing body", generation.ErrInvalidResponse)
	}

	return &generation.Result{
		Title:          article.Title,
		Body:           article.Body,
		Excerpt:        article.Excerpt,
		SEOTitle:       article.SEOTitle,
		SEODescription: article.SEODescription,
		FocusKeyword:   article.FocusKeyword,
		Provider:       providerName,
	}, nil
}
