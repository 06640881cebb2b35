package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"adforge-server/modules/common/config"
)

// Connect - Redis 연결 생성
func Connect(cfg *config.Config) *redis.Client {
	log.Printf("🔌 Connecting to Redis: %s", cfg.GetRedisAddr())

	// TLS 설정
	var tlsConfig *tls.Config
	if cfg.RedisUseTLS {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true, // 관리형 Redis용
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		TLSConfig:    tlsConfig,
		DB:           0,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// 연결 테스트
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("❌ Redis ping failed: %v", err)
		return nil
	}

	return rdb
}

// cancelKey - Job 취소 플래그 키
func cancelKey(jobID string) string {
	return fmt.Sprintf("cancel:%s", jobID)
}

// SetJobCancelled - Job 취소 플래그 설정 (1시간 TTL)
func SetJobCancelled(rdb *redis.Client, jobID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return rdb.Set(ctx, cancelKey(jobID), "1", time.Hour).Err()
}

// IsJobCancelled - Job 취소 여부 확인
func IsJobCancelled(rdb *redis.Client, jobID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	val, err := rdb.Get(ctx, cancelKey(jobID)).Result()
	if err != nil {
		return false
	}
	return val == "1"
}
