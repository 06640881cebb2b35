package script

import (
	"context"
	"log"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/config"
)

// Service - OpenAI 기반 광고 스크립트 생성 서비스
type Service struct {
	client openai.Client
	model  openai.ChatModel
}

// NewService - 스크립트 서비스 생성
func NewService() *Service {
	cfg := config.GetConfig()
	return &Service{
		client: openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey)),
		model:  openai.ChatModelGPT4o,
	}
}

// NewServiceWithBaseURL - 엔드포인트 지정 생성 (테스트용)
func NewServiceWithBaseURL(apiKey, baseURL string) *Service {
	return &Service{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
		model: openai.ChatModelGPT4o,
	}
}

// GenerateScript - 조립된 프롬프트로 광고 스크립트 생성
func (s *Service) GenerateScript(ctx context.Context, prompt string) (string, error) {
	log.Printf("📝 [Script] Generating script (%d chars prompt)", len(prompt))

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an expert ad copywriter."),
			openai.UserMessage(prompt),
		},
		Model:       s.model,
		MaxTokens:   openai.Int(300),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", apierr.WrapProviderError("openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", apierr.NewProviderError("openai", 0, "no choices in completion response")
	}

	script := strings.TrimSpace(resp.Choices[0].Message.Content)
	log.Printf("✅ [Script] Generated %d chars", len(script))
	return script, nil
}

// RewriteForSpeech - 스크립트를 음성용 대사로 재작성
func (s *Service) RewriteForSpeech(ctx context.Context, script string) (string, error) {
	return s.GenerateScript(ctx, BuildSpokenRewritePrompt(script))
}
