package avatar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"adforge-server/modules/common/apierr"
)

// Service - HeyGen 아바타 비디오 클라이언트
// submit → poll-until-terminal 2단계 프로토콜, 폴링은 컨텍스트 취소 가능
type Service struct {
	cfg    Config
	client *http.Client
}

// NewService - 아바타 서비스 생성
func NewService(cfg Config) *Service {
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// GenerateVideo - 생성 작업 제출 후 완료까지 폴링
func (s *Service) GenerateVideo(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if req.Script == "" {
		return nil, apierr.NewInputError("script is required")
	}
	if req.AvatarID == "" || req.VoiceID == "" {
		return nil, apierr.NewInputError("avatar_id and voice_id are required")
	}

	videoID, err := s.submit(ctx, req)
	if err != nil {
		return nil, err
	}
	log.Printf("🎭 [Avatar] Submitted video job %s", videoID)

	return s.WaitForCompletion(ctx, videoID)
}

// submit - HeyGen v2 생성 요청
func (s *Service) submit(ctx context.Context, req GenerateRequest) (string, error) {
	char := character{
		Type:        "avatar",
		AvatarID:    req.AvatarID,
		AvatarStyle: "normal",
		InputText:   req.Script,
	}
	if req.BackgroundImageURL != "" {
		char.Background = &background{Type: "image", URL: req.BackgroundImageURL}
	}

	payload := submitPayload{
		VideoInputs: []videoInput{{
			Character: char,
			Voice: voicePart{
				Type:      "text",
				InputText: req.Script,
				VoiceID:   req.VoiceID,
				Speed:     1.0,
			},
		}},
		Dimension: dimension{Width: VideoWidth, Height: VideoHeight},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/video/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", s.cfg.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", apierr.WrapProviderError("heygen", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apierr.WrapProviderError("heygen", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apierr.NewProviderError("heygen", resp.StatusCode, "video submit failed: %s", truncate(string(data), 200))
	}

	var parsed submitResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", apierr.NewProviderError("heygen", 0, "malformed submit response: %v", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", apierr.NewProviderError("heygen", 0, "video submit rejected: %s", parsed.Error.Message)
	}
	if parsed.Data.VideoID == "" {
		return "", apierr.NewProviderError("heygen", 0, "submit response missing video_id")
	}

	return parsed.Data.VideoID, nil
}

// WaitForCompletion - 고정 간격 폴링 (취소 시 즉시 반환)
// 개별 폴링 오류는 다음 시도로 넘어가고 마지막 시도의 오류만 표면화
func (s *Service) WaitForCompletion(ctx context.Context, videoID string) (*GenerateResult, error) {
	var lastErr error

	for attempt := 1; attempt <= s.cfg.MaxPollAttempts; attempt++ {
		status, err := s.CheckStatus(ctx, videoID)
		if err != nil {
			lastErr = err
			log.Printf("⚠️ [Avatar] Poll %d/%d failed: %v", attempt, s.cfg.MaxPollAttempts, err)
		} else {
			switch status.Status {
			case StatusCompleted:
				log.Printf("✅ [Avatar] Video %s completed (%.1fs)", videoID, status.Duration)
				return &GenerateResult{
					VideoID:      videoID,
					VideoURL:     status.VideoURL,
					Duration:     status.Duration,
					ThumbnailURL: status.ThumbnailURL,
				}, nil
			case StatusFailed:
				msg := status.ErrorMessage
				if msg == "" {
					msg = "video generation failed"
				}
				return nil, apierr.NewProviderError("heygen", 0, "%s", msg)
			case StatusPending, StatusProcessing, StatusWaiting:
				lastErr = nil
			default:
				return nil, apierr.NewProviderError("heygen", 0, "unknown video status %q", status.Status)
			}
		}

		if attempt == s.cfg.MaxPollAttempts {
			break
		}
		select {
		case <-time.After(s.cfg.PollInterval):
		case <-ctx.Done():
			log.Printf("🛑 [Avatar] Polling for %s cancelled", videoID)
			return nil, ctx.Err()
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, apierr.NewProviderError("heygen", 0, "video %s not completed after %d attempts", videoID, s.cfg.MaxPollAttempts)
}

// CheckStatus - 단일 상태 조회
func (s *Service) CheckStatus(ctx context.Context, videoID string) (*StatusResult, error) {
	statusURL := fmt.Sprintf("%s?video_id=%s", s.cfg.StatusURL, url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}
	req.Header.Set("X-Api-Key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apierr.WrapProviderError("heygen", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.WrapProviderError("heygen", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apierr.NewProviderError("heygen", resp.StatusCode, "status check failed: %s", truncate(string(data), 200))
	}

	var parsed statusResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, apierr.NewProviderError("heygen", 0, "malformed status response: %v", err)
	}
	if parsed.Code != 100 {
		return nil, apierr.NewProviderError("heygen", 0, "status check returned code %d: %s", parsed.Code, parsed.Message)
	}

	result := &StatusResult{
		VideoID:      videoID,
		Status:       parsed.Data.Status,
		VideoURL:     parsed.Data.VideoURL,
		Duration:     parsed.Data.Duration,
		ThumbnailURL: parsed.Data.ThumbnailURL,
	}
	if parsed.Data.Error != nil {
		result.ErrorMessage = parsed.Data.Error.Message
	}
	return result, nil
}

// ListAvatars - 사용 가능한 아바타 목록 조회 (패스스루)
func (s *Service) ListAvatars(ctx context.Context) (json.RawMessage, error) {
	return s.get(ctx, s.cfg.BaseURL+"/avatars")
}

// ListVoices - 사용 가능한 음성 목록 조회 (패스스루)
func (s *Service) ListVoices(ctx context.Context) (json.RawMessage, error) {
	return s.get(ctx, s.cfg.BaseURL+"/voices")
}

func (s *Service) get(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apierr.WrapProviderError("heygen", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.WrapProviderError("heygen", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apierr.NewProviderError("heygen", resp.StatusCode, "request failed: %s", truncate(string(data), 200))
	}

	return json.RawMessage(data), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
