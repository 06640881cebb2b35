package avatar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"adforge-server/modules/common/apierr"
)

// newPollingService - submit과 상태 시퀀스를 제어하는 가짜 HeyGen 서버
func newPollingService(t *testing.T, statuses []string, maxAttempts int) (*Service, *int32) {
	t.Helper()

	var statusCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/video/generate", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"video_id": "vid-1"},
		})
	})
	mux.HandleFunc("/video_status.get", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&statusCalls, 1)
		idx := int(n) - 1
		if idx >= len(statuses) {
			idx = len(statuses) - 1
		}
		resp := map[string]interface{}{
			"code": 100,
			"data": map[string]interface{}{"status": statuses[idx]},
		}
		if statuses[idx] == StatusCompleted {
			resp["data"] = map[string]interface{}{
				"status":        StatusCompleted,
				"video_url":     "https://cdn.example.com/vid-1.mp4",
				"duration":      12.5,
				"thumbnail_url": "https://cdn.example.com/vid-1.jpg",
			}
		}
		if statuses[idx] == StatusFailed {
			resp["data"] = map[string]interface{}{
				"status": StatusFailed,
				"error":  map[string]string{"message": "render crashed"},
			}
		}
		json.NewEncoder(w).Encode(resp)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc := NewService(Config{
		APIKey:          "test-key",
		BaseURL:         srv.URL,
		StatusURL:       srv.URL + "/video_status.get",
		Timeout:         5 * time.Second,
		PollInterval:    time.Millisecond,
		MaxPollAttempts: maxAttempts,
	})
	return svc, &statusCalls
}

func TestGenerateVideoPollsUntilCompleted(t *testing.T) {
	svc, statusCalls := newPollingService(t, []string{StatusProcessing, StatusProcessing, StatusCompleted}, 60)

	result, err := svc.GenerateVideo(context.Background(), GenerateRequest{
		Script: "hello", AvatarID: "av1", VoiceID: "v1",
	})
	if err != nil {
		t.Fatalf("GenerateVideo: %v", err)
	}
	if result.VideoURL != "https://cdn.example.com/vid-1.mp4" {
		t.Errorf("VideoURL = %q", result.VideoURL)
	}
	if result.Duration != 12.5 {
		t.Errorf("Duration = %v", result.Duration)
	}
	if got := atomic.LoadInt32(statusCalls); got != 3 {
		t.Errorf("status polled %d times, want 3", got)
	}
}

func TestGenerateVideoFailedStopsImmediately(t *testing.T) {
	svc, statusCalls := newPollingService(t, []string{StatusFailed}, 60)

	_, err := svc.GenerateVideo(context.Background(), GenerateRequest{
		Script: "hello", AvatarID: "av1", VoiceID: "v1",
	})
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "render crashed") {
		t.Errorf("error should carry upstream message, got %v", err)
	}
	if got := atomic.LoadInt32(statusCalls); got != 1 {
		t.Errorf("status polled %d times, want 1", got)
	}
}

func TestWaitForCompletionTimesOut(t *testing.T) {
	svc, statusCalls := newPollingService(t, []string{StatusProcessing}, 4)

	_, err := svc.WaitForCompletion(context.Background(), "vid-1")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "not completed after 4 attempts") {
		t.Errorf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(statusCalls); got != 4 {
		t.Errorf("status polled %d times, want 4", got)
	}
}

func TestWaitForCompletionUnknownStatusFatal(t *testing.T) {
	svc, statusCalls := newPollingService(t, []string{"exploded"}, 60)

	_, err := svc.WaitForCompletion(context.Background(), "vid-1")
	var provErr *apierr.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown video status") {
		t.Errorf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(statusCalls); got != 1 {
		t.Errorf("status polled %d times, want 1", got)
	}
}

func TestWaitForCompletionCancellable(t *testing.T) {
	svc, _ := newPollingService(t, []string{StatusProcessing}, 60)
	svc.cfg.PollInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.WaitForCompletion(ctx, "vid-1")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("polling did not stop after cancellation")
	}
}

func TestGenerateVideoValidatesInput(t *testing.T) {
	svc := NewService(Config{MaxPollAttempts: 1, Timeout: time.Second})

	_, err := svc.GenerateVideo(context.Background(), GenerateRequest{Script: "", AvatarID: "a", VoiceID: "v"})
	var inputErr *apierr.InputError
	if !errors.As(err, &inputErr) {
		t.Errorf("expected InputError for empty script, got %v", err)
	}

	_, err = svc.GenerateVideo(context.Background(), GenerateRequest{Script: "s"})
	if !errors.As(err, &inputErr) {
		t.Errorf("expected InputError for missing ids, got %v", err)
	}
}
