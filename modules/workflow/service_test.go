package workflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"adforge-server/modules/assets"
	"adforge-server/modules/avatar"
	"adforge-server/modules/background"
	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/model"
	"adforge-server/modules/media"
	"adforge-server/modules/videoprompt"
)

type fakeScripts struct {
	script string
	err    error
	calls  atomic.Int32
}

func (f *fakeScripts) GenerateScript(_ context.Context, _ string) (string, error) {
	f.calls.Add(1)
	return f.script, f.err
}

type fakeVeoPrompts struct {
	prompt string
	err    error
	calls  atomic.Int32
}

func (f *fakeVeoPrompts) GenerateVeoPrompt(_ context.Context, _ videoprompt.PromptInput) (string, error) {
	f.calls.Add(1)
	return f.prompt, f.err
}

type fakeBackgrounds struct {
	data []byte
	err  error
}

func (f *fakeBackgrounds) GenerateVideo(_ context.Context, _ background.GenerateRequest) (*background.GenerateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &background.GenerateResult{VideoData: f.data, MimeType: "video/mp4"}, nil
}

type fakeAvatars struct {
	url string
	err error
}

func (f *fakeAvatars) GenerateVideo(_ context.Context, _ avatar.GenerateRequest) (*avatar.GenerateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &avatar.GenerateResult{VideoID: "vid-1", VideoURL: f.url, Duration: 10}, nil
}

type fakeCompositor struct {
	err   error
	calls atomic.Int32
}

func (f *fakeCompositor) Overlay(_ context.Context, bgPath, ovPath, outputPath string, _ media.OverlayOptions) (*media.OverlayResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if err := os.WriteFile(outputPath, []byte("combined"), 0o644); err != nil {
		return nil, err
	}
	return &media.OverlayResult{OutputPath: outputPath, Log: "frame=1"}, nil
}

type testEnv struct {
	store       *assets.Store
	scripts     *fakeScripts
	veoPrompts  *fakeVeoPrompts
	backgrounds *fakeBackgrounds
	avatars     *fakeAvatars
	compositor  *fakeCompositor
	service     *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := assets.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("avatar-video-bytes"))
	}))
	t.Cleanup(cdn.Close)

	env := &testEnv{
		store:       store,
		scripts:     &fakeScripts{script: "Buy SwiftRun today."},
		veoPrompts:  &fakeVeoPrompts{prompt: "a shoe spinning in light"},
		backgrounds: &fakeBackgrounds{data: []byte("bg-video-bytes")},
		avatars:     &fakeAvatars{url: cdn.URL + "/vid-1.mp4"},
		compositor:  &fakeCompositor{},
	}
	env.service = NewService(store, env.scripts, env.veoPrompts, env.backgrounds, env.avatars, env.compositor, nil, nil, nil)
	return env
}

func baseRequest(sessionID string) Request {
	return Request{
		SessionID:       sessionID,
		Prompt:          "sell sneakers",
		AvatarID:        "av1",
		VoiceID:         "v1",
		OverlayPosition: "center",
		BackgroundAudio: true,
	}
}

func TestRunFullWorkflow(t *testing.T) {
	env := newTestEnv(t)

	var stages []string
	result, err := env.service.Run(context.Background(), baseRequest("sess1"), func(stage string) {
		stages = append(stages, stage)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Script != "Buy SwiftRun today." {
		t.Errorf("Script = %q", result.Script)
	}
	if result.VeoPrompt != "a shoe spinning in light" {
		t.Errorf("VeoPrompt = %q", result.VeoPrompt)
	}
	if result.WorkflowStatus != "completed" {
		t.Errorf("WorkflowStatus = %q", result.WorkflowStatus)
	}

	data, err := os.ReadFile(result.CombinedVideo)
	if err != nil || string(data) != "combined" {
		t.Errorf("combined output not written: %v", err)
	}

	want := []string{
		model.StageStart,
		model.StageScriptGenerated,
		model.StageVideoPromptReady,
		model.StageBackgroundVideoDone,
		model.StageAvatarVideoDone,
		model.StageComposed,
	}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	// 배경/아바타 단계는 병렬이라 순서가 뒤바뀔 수 있음
	seen := map[string]bool{}
	for _, s := range stages {
		seen[s] = true
	}
	for _, w := range want {
		if !seen[w] {
			t.Errorf("missing stage %s in %v", w, stages)
		}
	}
	if stages[len(stages)-1] != model.StageComposed {
		t.Errorf("last stage = %s, want %s", stages[len(stages)-1], model.StageComposed)
	}

	if env.store.SessionStatus("sess1") != "completed" {
		t.Errorf("session status = %q, want completed", env.store.SessionStatus("sess1"))
	}
}

func TestRunSkipsScriptWhenProvided(t *testing.T) {
	env := newTestEnv(t)

	req := baseRequest("sess2")
	req.Script = "preset script"
	result, err := env.service.Run(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.scripts.calls.Load() != 0 {
		t.Error("script generator should not be called when script is provided")
	}
	if env.veoPrompts.calls.Load() != 1 {
		t.Error("veo prompt should still be generated")
	}
	if result.Script != "preset script" {
		t.Errorf("Script = %q", result.Script)
	}
}

func TestRunSkipsBothWhenProvided(t *testing.T) {
	env := newTestEnv(t)

	req := baseRequest("sess3")
	req.Script = "preset script"
	req.VeoPrompt = "preset veo prompt"
	if _, err := env.service.Run(context.Background(), req, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.scripts.calls.Load() != 0 || env.veoPrompts.calls.Load() != 0 {
		t.Error("generation steps should be skipped when outputs are provided")
	}
}

func TestRunBackgroundFailureAborts(t *testing.T) {
	env := newTestEnv(t)
	env.backgrounds.err = apierr.NewProviderError("veo", 500, "quota")

	_, err := env.service.Run(context.Background(), baseRequest("sess4"), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var provErr *apierr.ProviderError
	if !errors.As(err, &provErr) || provErr.Provider != "veo" {
		t.Errorf("expected veo provider error, got %v", err)
	}
	if env.compositor.calls.Load() != 0 {
		t.Error("compositor should not run after a generation failure")
	}
}

func TestRunCompositionFailureSurfacesOutput(t *testing.T) {
	env := newTestEnv(t)
	env.compositor.err = apierr.NewCompositionError(errors.New("exit 1"), "ffmpeg: filter mismatch", "video overlay failed")

	_, err := env.service.Run(context.Background(), baseRequest("sess5"), nil)
	var compErr *apierr.CompositionError
	if !errors.As(err, &compErr) {
		t.Fatalf("expected CompositionError, got %v", err)
	}
	if compErr.Output != "ffmpeg: filter mismatch" {
		t.Errorf("diagnostic output lost: %q", compErr.Output)
	}
}

func TestRunValidatesInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  Request
	}{
		{"missing session", Request{Prompt: "p", AvatarID: "a", VoiceID: "v"}},
		{"missing avatar", Request{SessionID: "s", Prompt: "p", VoiceID: "v"}},
		{"no input at all", Request{SessionID: "empty-sess", AvatarID: "a", VoiceID: "v"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.Run(context.Background(), tt.req, nil)
			var inputErr *apierr.InputError
			if !errors.As(err, &inputErr) {
				t.Errorf("expected InputError, got %v", err)
			}
		})
	}
}

func TestRunAcceptsSessionAssetsAsInput(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.store.Save("sess6", assets.KindImage, "shoe.jpg", []byte("img")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	req := baseRequest("sess6")
	req.Prompt = ""
	if _, err := env.service.Run(context.Background(), req, nil); err != nil {
		t.Fatalf("session with assets should be a valid input: %v", err)
	}
}

func TestStatusCompletedOnlyWithCombinedMarker(t *testing.T) {
	env := newTestEnv(t)

	resp := env.service.Status("nothing")
	if resp.Status != "processing" {
		t.Errorf("empty session status = %q, want processing", resp.Status)
	}

	env.store.Save("sess7", assets.KindVideo, "a.mp4", []byte("v"))
	if got := env.service.Status("sess7").Status; got != "processing" {
		t.Errorf("status = %q, want processing", got)
	}

	env.store.SaveAs("sess7", assets.KindCombinedOutput, "sess7_combined_final.mp4", []byte("c"))
	if got := env.service.Status("sess7").Status; got != "completed" {
		t.Errorf("status = %q, want completed", got)
	}
}
