package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Provider API Keys
	OpenAIAPIKey     string
	HeyGenAPIKey     string
	GoogleAPIKey     string
	ElevenLabsAPIKey string
	GeminiAPIKey     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Supabase
	SupabaseURL        string
	SupabaseServiceKey string

	// Storage
	UploadDir string

	// Server
	Port        string
	FrontendURL string
}

var globalConfig *Config

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	// Redis UseTLS 파싱
	useTLS := false // 기본값 (로컬 Redis)
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	// Gemini 키는 GOOGLE_API_KEY로 폴백
	geminiKey := getEnv("GEMINI_API_KEY", "")
	if geminiKey == "" {
		geminiKey = getEnv("GOOGLE_API_KEY", "")
	}

	globalConfig = &Config{
		// Provider API Keys
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		HeyGenAPIKey:     getEnv("HEYGEN_API_KEY", ""),
		GoogleAPIKey:     getEnv("GOOGLE_API_KEY", ""),
		ElevenLabsAPIKey: getEnv("ELEVENLABS_API_KEY", ""),
		GeminiAPIKey:     geminiKey,

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,

		// Supabase
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),

		// Storage
		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		// Server
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "*"),
	}

	// 필수 환경변수 검증
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Upload dir: %s", globalConfig.UploadDir)
	log.Printf("   Redis: %s:%s (TLS: %v)", globalConfig.RedisHost, globalConfig.RedisPort, globalConfig.RedisUseTLS)
	if globalConfig.SupabaseURL != "" {
		log.Printf("   Supabase: %s", globalConfig.SupabaseURL)
	}

	return globalConfig, nil
}

// GetConfig - 로드된 설정 가져오기
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// validate - 필수 환경변수 검증
func (c *Config) validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.HeyGenAPIKey == "" {
		return fmt.Errorf("HEYGEN_API_KEY is required")
	}
	if c.GoogleAPIKey == "" {
		return fmt.Errorf("GOOGLE_API_KEY is required")
	}
	if c.ElevenLabsAPIKey == "" {
		return fmt.Errorf("ELEVENLABS_API_KEY is required")
	}
	return nil
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
