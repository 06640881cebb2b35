package workflow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateCombinedAcceptsHeygenScriptAlias(t *testing.T) {
	env := newTestEnv(t)
	handler := NewHandler(env.store, env.service)

	body := `{
		"veo_prompt": "a shoe spinning in light",
		"heygen_script": "Buy SwiftRun today.",
		"avatar_id": "av1",
		"voice_id": "v1",
		"overlay_size": [640, 360]
	}`

	req := httptest.NewRequest(http.MethodPost, "/combined-video/generate", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.GenerateCombined(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var result Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if result.Script != "Buy SwiftRun today." {
		t.Errorf("script = %q, want the aliased heygen_script", result.Script)
	}
	if env.compositor.calls.Load() != 1 {
		t.Errorf("compositor calls = %d, want 1", env.compositor.calls.Load())
	}
	// 별칭만 준 스크립트가 들어왔으니 1단계는 건너뛰어야 함
	if env.scripts.calls.Load() != 0 {
		t.Errorf("script generator called %d times, want 0", env.scripts.calls.Load())
	}
}

func TestCombinedRequestBodyNormalize(t *testing.T) {
	tests := []struct {
		name       string
		body       combinedRequestBody
		wantScript string
		wantWidth  int
		wantHeight int
	}{
		{
			name:       "aliases fill empty fields",
			body:       combinedRequestBody{HeygenScript: "hello", OverlaySize: []int{640, 360}},
			wantScript: "hello",
			wantWidth:  640,
			wantHeight: 360,
		},
		{
			name:       "explicit fields win over aliases",
			body:       combinedRequestBody{Script: "primary", HeygenScript: "alias", OverlayWidth: 100, OverlayHeight: 50, OverlaySize: []int{640, 360}},
			wantScript: "primary",
			wantWidth:  100,
			wantHeight: 50,
		},
		{
			name: "malformed overlay_size is ignored",
			body: combinedRequestBody{OverlaySize: []int{640}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.body.normalize()
			if tt.body.Script != tt.wantScript {
				t.Errorf("Script = %q, want %q", tt.body.Script, tt.wantScript)
			}
			if tt.body.OverlayWidth != tt.wantWidth || tt.body.OverlayHeight != tt.wantHeight {
				t.Errorf("overlay = %dx%d, want %dx%d",
					tt.body.OverlayWidth, tt.body.OverlayHeight, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}
