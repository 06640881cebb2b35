package image

import (
	"context"
	"log"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/config"
)

// Service - DALL-E 이미지 생성 서비스
type Service struct {
	client openai.Client
}

// GenerateResult - 이미지 생성 결과
type GenerateResult struct {
	ImageURL        string `json:"image_url"`
	Prompt          string `json:"prompt"`
	OptimizedPrompt string `json:"optimized_prompt,omitempty"`
}

// NewService - 이미지 서비스 생성
func NewService() *Service {
	cfg := config.GetConfig()
	return &Service{
		client: openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey)),
	}
}

// NewServiceWithBaseURL - 엔드포인트 지정 생성 (테스트용)
func NewServiceWithBaseURL(apiKey, baseURL string) *Service {
	return &Service{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
	}
}

// Generate - 프롬프트 그대로 이미지 생성
func (s *Service) Generate(ctx context.Context, prompt, size string) (*GenerateResult, error) {
	if prompt == "" {
		return nil, apierr.NewInputError("prompt is required")
	}

	imageSize := openai.ImageGenerateParamsSize1024x1024
	switch size {
	case "1792x1024":
		imageSize = openai.ImageGenerateParamsSize1792x1024
	case "1024x1792":
		imageSize = openai.ImageGenerateParamsSize1024x1792
	}

	log.Printf("🎨 [Image] Generating image (%s)", imageSize)

	resp, err := s.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModelDallE3,
		Size:   imageSize,
		N:      openai.Int(1),
	})
	if err != nil {
		return nil, apierr.WrapProviderError("openai", err)
	}
	if len(resp.Data) == 0 {
		return nil, apierr.NewProviderError("openai", 0, "no image in response")
	}

	return &GenerateResult{ImageURL: resp.Data[0].URL, Prompt: prompt}, nil
}

// GenerateOptimized - GPT로 프롬프트 보강 후 이미지 생성
func (s *Service) GenerateOptimized(ctx context.Context, prompt, size string) (*GenerateResult, error) {
	if prompt == "" {
		return nil, apierr.NewInputError("prompt is required")
	}

	optimized, err := s.optimizePrompt(ctx, prompt)
	if err != nil {
		log.Printf("⚠️ [Image] Prompt optimization failed, using raw prompt: %v", err)
		optimized = prompt
	}

	result, err := s.Generate(ctx, optimized, size)
	if err != nil {
		return nil, err
	}
	result.Prompt = prompt
	result.OptimizedPrompt = optimized
	return result, nil
}

// optimizePrompt - 이미지 생성용 프롬프트 재작성
func (s *Service) optimizePrompt(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You rewrite short product descriptions into detailed, vivid image generation prompts. Return only the rewritten prompt."),
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModelGPT4o,
		MaxTokens:   openai.Int(200),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", apierr.WrapProviderError("openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", apierr.NewProviderError("openai", 0, "no choices in completion response")
	}

	optimized := strings.TrimSpace(resp.Choices[0].Message.Content)
	if optimized == "" {
		return "", apierr.NewProviderError("openai", 0, "empty optimized prompt")
	}
	return optimized, nil
}
