package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/iolph/wpr/internal/config"
	"github.com/iolph/wpr/pkg/logger"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

const summaryFailurePlaceholder = "Summary generation failed. Your report was saved and will be reviewed; please contact support if this persists."

// AIService generates the weekly coaching summary for a submitted report.
// Every provider call runs under the retry policy; after exhaustion the
// caller gets a labeled placeholder, never an error, because the report is
// already persisted by then.
type AIService struct {
	config *config.AIConfig
	retry  RetryPolicy
}

func NewAIService(cfg *config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		retry:  DefaultRetryPolicy(),
	}
}

// SummaryResult carries the generated text plus the provenance the analysis
// row records.
type SummaryResult struct {
	Text      string
	ModelUsed string
	Failed    bool
	Err       string
}

// GenerateSummary produces the coaching summary for a saved report. Soft
// validation only warns; a thin summary still goes out.
func (s *AIService) GenerateSummary(ctx context.Context, record *ReportRecord) SummaryResult {
	if !s.config.Enabled() {
		return SummaryResult{
			Text:   summaryFailurePlaceholder,
			Failed: true,
			Err:    "summary provider not configured",
		}
	}

	system := BuildSystemPrompt(record.WeekNumber)
	submission := BuildSubmissionText(record)
	userMessage := "Please analyze this Weekly Productivity Report and provide comprehensive feedback following the specified format:\n\n" + submission

	var text string
	err := s.retry.Do(ctx, "summary", func(ctx context.Context) error {
		var callErr error
		text, callErr = s.callProvider(ctx, system, userMessage)
		return callErr
	})
	if err != nil {
		logger.Error().Err(err).
			Str("employee", record.Name).
			Str("provider", s.config.Provider).
			Msg("summary generation failed after retries")
		LogError("ai", "generate_summary", err.Error(), map[string]interface{}{
			"employee": record.Name, "week": record.WeekNumber, "year": record.Year,
		})
		return SummaryResult{
			Text:   summaryFailurePlaceholder,
			Failed: true,
			Err:    err.Error(),
		}
	}

	if !ValidateSummary(text) {
		logger.Warn().
			Str("employee", record.Name).
			Int("length", len(text)).
			Msg("summary missing expected sections, delivering as-is")
	}

	return SummaryResult{Text: text, ModelUsed: s.modelName()}
}

func (s *AIService) modelName() string {
	if s.config.Model != "" {
		return s.config.Model
	}
	switch s.config.Provider {
	case "ollama":
		return "llama3"
	case "gemini":
		return "gemini-2.0-flash"
	case "anthropic":
		return "claude-3-5-sonnet-20241022"
	default:
		return "gpt-4o"
	}
}

func (s *AIService) maxTokens() int {
	if s.config.MaxTokens > 0 {
		return s.config.MaxTokens
	}
	return 4000
}

func (s *AIService) callProvider(ctx context.Context, system, prompt string) (string, error) {
	switch s.config.Provider {
	case "ollama":
		return s.callOllama(ctx, system, prompt)
	case "gemini":
		return s.callGemini(ctx, system, prompt)
	case "azure":
		return s.callAzure(ctx, system, prompt)
	case "openai":
		return s.callOpenAI(ctx, system, prompt)
	default:
		return s.callAnthropic(ctx, system, prompt)
	}
}

func (s *AIService) callAnthropic(ctx context.Context, system, prompt string) (string, error) {
	opts := []option.RequestOption{option.WithAPIKey(s.config.APIKey)}
	if s.config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.config.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.modelName()),
		MaxTokens: int64(s.maxTokens()),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	return content.String(), nil
}

// callOpenAI also serves OpenAI-compatible endpoints via BaseURL.
func (s *AIService) callOpenAI(ctx context.Context, system, prompt string) (string, error) {
	clientConfig := openai.DefaultConfig(s.config.APIKey)
	if s.config.BaseURL != "" {
		clientConfig.BaseURL = s.config.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.modelName(),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: s.maxTokens(),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}

// callAzure uses the model name as the deployment name.
func (s *AIService) callAzure(ctx context.Context, system, prompt string) (string, error) {
	clientConfig := openai.DefaultAzureConfig(s.config.APIKey, s.config.BaseURL)
	client := openai.NewClientWithConfig(clientConfig)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.modelName(),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: s.maxTokens(),
	})
	if err != nil {
		return "", fmt.Errorf("azure openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from azure openai")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *AIService) callOllama(ctx context.Context, system, prompt string) (string, error) {
	baseURL := s.config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	var content strings.Builder
	err = client.Chat(ctx, &api.ChatRequest{
		Model: s.modelName(),
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama API error: %w", err)
	}
	return content.String(), nil
}

func (s *AIService) callGemini(ctx context.Context, system, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: s.config.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("gemini client error: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, s.modelName(),
		genai.Text(system+"\n\n"+prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	return resp.Text(), nil
}
