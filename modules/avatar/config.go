package avatar

import (
	"time"

	"adforge-server/modules/common/config"
)

// Config - HeyGen 클라이언트 설정
// 폴링 간격/횟수는 테스트에서 재정의 가능
type Config struct {
	APIKey          string
	BaseURL         string
	StatusURL       string
	Timeout         time.Duration
	PollInterval    time.Duration
	MaxPollAttempts int
}

// DefaultServiceConfig - 운영 기본 설정 (5초 × 60회, 약 5분 상한)
func DefaultServiceConfig() Config {
	cfg := config.GetConfig()
	return Config{
		APIKey:          cfg.HeyGenAPIKey,
		BaseURL:         "https://api.heygen.com/v2",
		StatusURL:       "https://api.heygen.com/v1/video_status.get",
		Timeout:         30 * time.Second,
		PollInterval:    5 * time.Second,
		MaxPollAttempts: 60,
	}
}
