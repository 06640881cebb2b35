package caption

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"adforge-server/modules/common/config"
)

// 429 재시도 설정
const (
	maxRetries     = 3
	initialBackoff = 2 * time.Second
)

// Service - Gemini 기반 이미지/프레임 캡셔닝 서비스
type Service struct {
	apiKey string
	model  string
}

// NewService - 캡셔닝 서비스 생성
func NewService() *Service {
	cfg := config.GetConfig()
	return &Service{
		apiKey: cfg.GeminiAPIKey,
		model:  "gemini-2.0-flash",
	}
}

// DescribeImage - 제품 이미지 설명 생성
func (s *Service) DescribeImage(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	prompt := "Describe this product image for an advertisement script writer. " +
		"Focus on the product, its visual qualities, and the overall mood. Keep it under 3 sentences."
	return s.describe(ctx, imageData, mimeType, prompt)
}

// DescribeVideoFrame - 비디오 첫 프레임 설명 생성
func (s *Service) DescribeVideoFrame(ctx context.Context, frameData []byte) (string, error) {
	prompt := "This is the first frame of a product video. Describe what is shown " +
		"so an ad copywriter can reference the video content. Keep it under 3 sentences."
	return s.describe(ctx, frameData, "image/jpeg", prompt)
}

func (s *Service) describe(ctx context.Context, imageData []byte, mimeType, prompt string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("gemini api key not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(s.model)

	format := strings.TrimPrefix(mimeType, "image/")
	if format == "" || format == mimeType {
		format = "jpeg"
	}

	var resp *genai.GenerateContentResponse
	backoff := initialBackoff
	for attempt := 1; attempt <= maxRetries; attempt++ {
		resp, err = model.GenerateContent(ctx,
			genai.ImageData(format, imageData),
			genai.Text(prompt),
		)
		if err == nil {
			break
		}
		if !isRetryable(err) || attempt == maxRetries {
			return "", fmt.Errorf("gemini captioning failed: %w", err)
		}
		log.Printf("⚠️ [Caption] Gemini rate limited, retrying in %v (attempt %d/%d)", backoff, attempt, maxRetries)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		backoff *= 2
	}

	caption := extractText(resp)
	if caption == "" {
		return "", fmt.Errorf("gemini returned empty caption")
	}

	log.Printf("🔍 [Caption] Generated: %.80s...", caption)
	return caption, nil
}

// isRetryable - 429/503 응답만 재시도
func isRetryable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "UNAVAILABLE")
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String())
}
