package background

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/config"
)

// 기본 생성 파라미터
const (
	DefaultDuration    = 5
	DefaultAspectRatio = "16:9"
	DefaultQuality     = "standard"
)

// Config - Veo 클라이언트 설정
type Config struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// DefaultServiceConfig - 운영 기본 설정
func DefaultServiceConfig() Config {
	cfg := config.GetConfig()
	return Config{
		APIKey:   cfg.GoogleAPIKey,
		Endpoint: "https://generativelanguage.googleapis.com/v1beta/models/veo-2.0-generate-001:generateContent",
		Timeout:  60 * time.Second,
	}
}

// GenerateRequest - 배경 비디오 생성 입력
type GenerateRequest struct {
	Prompt      string
	Duration    int
	AspectRatio string
	Quality     string
}

// GenerateResult - 생성 결과 (응답에 인라인으로 포함된 비디오)
type GenerateResult struct {
	VideoData []byte
	MimeType  string
}

// Service - Veo 텍스트→비디오 클라이언트
// 단일 동기 호출, 응답 바디에 비디오가 base64로 포함됨
type Service struct {
	cfg    Config
	client *http.Client
}

// NewService - 배경 비디오 서비스 생성
func NewService(cfg Config) *Service {
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type veoRequest struct {
	Contents         []veoContent        `json:"contents"`
	GenerationConfig veoGenerationConfig `json:"generationConfig"`
}

type veoContent struct {
	Parts []veoPart `json:"parts"`
}

type veoPart struct {
	Text string `json:"text"`
}

type veoGenerationConfig struct {
	VideoDuration string `json:"videoDuration"`
	AspectRatio   string `json:"aspectRatio"`
	Quality       string `json:"quality,omitempty"`
}

type veoResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateVideo - 프롬프트로 배경 비디오 생성
func (s *Service) GenerateVideo(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if req.Prompt == "" {
		return nil, apierr.NewInputError("prompt is required")
	}
	if req.Duration <= 0 {
		req.Duration = DefaultDuration
	}
	if req.AspectRatio == "" {
		req.AspectRatio = DefaultAspectRatio
	}
	if req.Quality == "" {
		req.Quality = DefaultQuality
	}

	log.Printf("🎥 [Background] Generating %ds %s video", req.Duration, req.AspectRatio)

	payload := veoRequest{
		Contents: []veoContent{{Parts: []veoPart{{Text: req.Prompt}}}},
		GenerationConfig: veoGenerationConfig{
			VideoDuration: fmt.Sprintf("%ds", req.Duration),
			AspectRatio:   req.AspectRatio,
			Quality:       req.Quality,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal veo request: %w", err)
	}

	endpoint := fmt.Sprintf("%s?key=%s", s.cfg.Endpoint, url.QueryEscape(s.cfg.APIKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create veo request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, apierr.WrapProviderError("veo", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.WrapProviderError("veo", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apierr.NewProviderError("veo", resp.StatusCode, "video generation failed: %s", truncate(string(data), 200))
	}

	var parsed veoResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, apierr.NewProviderError("veo", 0, "malformed response: %v", err)
	}
	if parsed.Error != nil {
		return nil, apierr.NewProviderError("veo", 0, "%s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 {
		return nil, apierr.NewProviderError("veo", 0, "no candidates in response")
	}

	for _, part := range parsed.Candidates[0].Content.Parts {
		if part.InlineData == nil || part.InlineData.Data == "" {
			continue
		}
		videoData, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return nil, apierr.NewProviderError("veo", 0, "invalid inline video payload: %v", err)
		}
		log.Printf("✅ [Background] Received %d bytes (%s)", len(videoData), part.InlineData.MimeType)
		return &GenerateResult{VideoData: videoData, MimeType: part.InlineData.MimeType}, nil
	}

	return nil, apierr.NewProviderError("veo", 0, "no inline video data in response")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
