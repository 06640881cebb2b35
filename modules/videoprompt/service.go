package videoprompt

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/config"
)

// Service - 스크립트 → veo 비디오 프롬프트 변환 서비스
type Service struct {
	client openai.Client
	model  openai.ChatModel
}

// NewService - 비디오 프롬프트 서비스 생성
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

// GenerateVeoPrompt - 구조화 출력으로 시각 프롬프트 생성
func (s *Service) GenerateVeoPrompt(ctx context.Context, in PromptInput) (string, error) {
	log.Printf("🎬 [VideoPrompt] Generating veo prompt (style=%s, mood=%s)", in.CreativeStyle, in.Mood)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "veo_prompt",
		Description: openai.String("A visual text-to-video generation prompt"),
		Schema:      veoPromptSchema,
		Strict:      openai.Bool(true),
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a video director writing prompts for a text-to-video model."),
			openai.UserMessage(BuildVeoPrompt(in)),
		},
		Model: s.model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", apierr.WrapProviderError("openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", apierr.NewProviderError("openai", 0, "no choices in completion response")
	}

	var result VeoPromptResult
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		return "", apierr.NewProviderError("openai", 0, "malformed structured output: %v", err)
	}

	veoPrompt := strings.TrimSpace(result.VeoPrompt)
	if veoPrompt == "" {
		return "", apierr.NewProviderError("openai", 0, "empty veo prompt in structured output")
	}

	log.Printf("✅ [VideoPrompt] Generated %d chars", len(veoPrompt))
	return veoPrompt, nil
}
