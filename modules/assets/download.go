package assets

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"
)

var downloadClient = &http.Client{
	Timeout: 120 * time.Second,
}

// DownloadToStore - 원격 URL의 바이너리를 세션 Asset으로 저장
// Provider가 결과를 서명된 URL로 주는 경우(아바타 비디오 등)에 사용
func (s *Store) DownloadToStore(ctx context.Context, url, sessionID, kind, name string) (string, error) {
	const maxAttempts = 3
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		data, err := downloadOnce(ctx, url)
		if err == nil {
			log.Printf("📥 Downloaded %d bytes for session %s (%s)", len(data), sessionID, name)
			return s.SaveAs(sessionID, kind, name, data)
		}

		lastErr = err
		log.Printf("⚠️  Download attempt %d/%d failed: %v", attempt, maxAttempts, err)

		if attempt < maxAttempts {
			// 약간의 지터를 두고 재시도
			time.Sleep(time.Second + time.Duration(rand.Intn(1000))*time.Millisecond)
		}
	}

	return "", fmt.Errorf("download failed after %d attempts: %w", maxAttempts, lastErr)
}

func downloadOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := downloadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
