package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/config"
)

// 기본 음성/모델 설정
const (
	DefaultVoiceID = "EXAVITQu4vr4xnSDxMaL"
	ttsModelID     = "eleven_monolingual_v1"
)

// Rewriter - 스크립트를 음성용 대사로 재작성
type Rewriter interface {
	RewriteForSpeech(ctx context.Context, script string) (string, error)
}

// Config - 음성 합성 설정
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// DefaultServiceConfig - 운영 기본 설정
func DefaultServiceConfig() Config {
	cfg := config.GetConfig()
	return Config{
		APIKey:  cfg.ElevenLabsAPIKey,
		BaseURL: "https://api.elevenlabs.io",
		Timeout: 60 * time.Second,
	}
}

// Service - ElevenLabs 음성 합성 서비스
type Service struct {
	cfg      Config
	client   *http.Client
	rewriter Rewriter
}

// SynthesizeResult - 합성 결과
type SynthesizeResult struct {
	VoiceText string
	Audio     []byte
}

// NewService - 음성 서비스 생성
func NewService(cfg Config, rewriter Rewriter) *Service {
	return &Service{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		rewriter: rewriter,
	}
}

// Synthesize - 스크립트 재작성 후 음성 합성
func (s *Service) Synthesize(ctx context.Context, script, voiceID string) (*SynthesizeResult, error) {
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}

	spoken, err := s.rewriter.RewriteForSpeech(ctx, script)
	if err != nil {
		return nil, err
	}
	spoken = strings.TrimSpace(spoken)
	if spoken == "" {
		return nil, apierr.NewProviderError("openai", 0, "spoken-text rewrite produced empty output")
	}

	log.Printf("🔊 [Voice] Synthesizing %d chars with voice %s", len(spoken), voiceID)

	audio, err := s.textToSpeech(ctx, spoken, voiceID)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ [Voice] Synthesized %d bytes", len(audio))
	return &SynthesizeResult{VoiceText: spoken, Audio: audio}, nil
}

// textToSpeech - ElevenLabs TTS 호출
func (s *Service) textToSpeech(ctx context.Context, text, voiceID string) ([]byte, error) {
	payload := map[string]interface{}{
		"text":     text,
		"model_id": ttsModelID,
		"voice_settings": map[string]float64{
			"stability":        0.5,
			"similarity_boost": 0.5,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tts request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", s.cfg.BaseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apierr.WrapProviderError("elevenlabs", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.WrapProviderError("elevenlabs", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apierr.NewProviderError("elevenlabs", resp.StatusCode, "tts request failed: %s", truncate(string(data), 200))
	}

	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
