package voice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adforge-server/modules/common/apierr"
)

type fakeRewriter struct {
	spoken string
	err    error
}

func (f *fakeRewriter) RewriteForSpeech(_ context.Context, _ string) (string, error) {
	return f.spoken, f.err
}

func newTestService(t *testing.T, rewriter Rewriter, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 5 * time.Second}, rewriter)
}

func TestSynthesizeSuccess(t *testing.T) {
	var gotPath, gotKey string
	svc := newTestService(t, &fakeRewriter{spoken: "Hello there."}, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		w.Write([]byte("mp3-bytes"))
	})

	result, err := svc.Synthesize(context.Background(), "SCENE: narrator says hello", "voice123")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if result.VoiceText != "Hello there." {
		t.Errorf("VoiceText = %q", result.VoiceText)
	}
	if string(result.Audio) != "mp3-bytes" {
		t.Errorf("Audio = %q", result.Audio)
	}
	if gotPath != "/v1/text-to-speech/voice123" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("xi-api-key = %q", gotKey)
	}
}

func TestSynthesizeDefaultVoice(t *testing.T) {
	var gotPath string
	svc := newTestService(t, &fakeRewriter{spoken: "Hi."}, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("ok"))
	})

	if _, err := svc.Synthesize(context.Background(), "script", ""); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gotPath != "/v1/text-to-speech/"+DefaultVoiceID {
		t.Errorf("default voice not used, path = %q", gotPath)
	}
}

func TestSynthesizeEmptyRewriteFails(t *testing.T) {
	called := false
	svc := newTestService(t, &fakeRewriter{spoken: "   "}, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := svc.Synthesize(context.Background(), "script", "v")
	if err == nil {
		t.Fatal("expected error for empty rewrite")
	}
	var provErr *apierr.ProviderError
	if !errors.As(err, &provErr) {
		t.Errorf("expected ProviderError, got %T", err)
	}
	if called {
		t.Error("tts endpoint should not be called when rewrite is empty")
	}
}

func TestSynthesizeRewriteErrorPropagates(t *testing.T) {
	wantErr := errors.New("llm down")
	svc := newTestService(t, &fakeRewriter{err: wantErr}, func(w http.ResponseWriter, r *http.Request) {})

	_, err := svc.Synthesize(context.Background(), "script", "v")
	if !errors.Is(err, wantErr) {
		t.Errorf("expected rewrite error, got %v", err)
	}
}

func TestSynthesizeUpstreamFailure(t *testing.T) {
	svc := newTestService(t, &fakeRewriter{spoken: "Hi."}, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := svc.Synthesize(context.Background(), "script", "v")
	var provErr *apierr.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d", provErr.StatusCode)
	}
}
