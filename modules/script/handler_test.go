package script

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"adforge-server/modules/assets"
)

type fakeGenerator struct {
	lastPrompt string
	script     string
	err        error
}

func (f *fakeGenerator) GenerateScript(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.script, nil
}

func newTestHandler(t *testing.T) (*Handler, *assets.Store, *fakeGenerator) {
	t.Helper()
	store, err := assets.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	gen := &fakeGenerator{script: "Buy it now."}
	return NewHandler(store, gen, nil, nil), store, gen
}

func multipartRequest(t *testing.T, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".bin")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/script", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestGenerateRejectsEmptyInput(t *testing.T) {
	handler, store, gen := newTestHandler(t)

	req := multipartRequest(t, map[string]string{}, nil)
	rec := httptest.NewRecorder()
	handler.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if gen.lastPrompt != "" {
		t.Error("generator should not be called on empty input")
	}

	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("no files should be written on rejected request, found %d", len(entries))
	}
}

func TestGeneratePromptOnly(t *testing.T) {
	handler, _, gen := newTestHandler(t)

	req := multipartRequest(t, map[string]string{"prompt": "sell sneakers"}, nil)
	rec := httptest.NewRecorder()
	handler.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("Buy it now.")) {
		t.Errorf("response missing generated script: %s", rec.Body.String())
	}
	if !bytes.Contains([]byte(gen.lastPrompt), []byte("sell sneakers")) {
		t.Errorf("generator prompt missing request text: %q", gen.lastPrompt)
	}
}

func TestGenerateSavesUploadedImage(t *testing.T) {
	handler, store, _ := newTestHandler(t)

	req := multipartRequest(t,
		map[string]string{"session_id": "sess1"},
		map[string][]byte{"image": []byte("fake-jpeg")},
	)
	rec := httptest.NewRecorder()
	handler.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}
	if _, ok := store.Find("sess1", assets.KindImage); !ok {
		t.Error("uploaded image should be stored under the session")
	}
}

func TestGenerateUsesSessionMetadata(t *testing.T) {
	handler, store, gen := newTestHandler(t)

	if err := store.SaveMetadata("sess2", &assets.ProductMetadata{Name: "SwiftRun", Description: "running shoe"}); err != nil {
		t.Fatalf("SaveMetadata: %v", err)
	}

	req := multipartRequest(t, map[string]string{"session_id": "sess2", "prompt": "go"}, nil)
	rec := httptest.NewRecorder()
	handler.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains([]byte(gen.lastPrompt), []byte("SwiftRun")) {
		t.Errorf("prompt should include product metadata, got %q", gen.lastPrompt)
	}
}
