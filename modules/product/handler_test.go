package product

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"adforge-server/modules/assets"
)

func newTestHandler(t *testing.T) (*Handler, *assets.Store) {
	t.Helper()
	store, err := assets.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return NewHandler(store), store
}

func uploadRequest(t *testing.T, fields map[string]string, imageCount int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	for i := 0; i < imageCount; i++ {
		fw, err := mw.CreateFormFile("images", fmt.Sprintf("photo%d.jpg", i))
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write([]byte(fmt.Sprintf("image-%d", i)))
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-product", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadSavesAllImagesAndMetadata(t *testing.T) {
	handler, store := newTestHandler(t)

	req := uploadRequest(t, map[string]string{
		"session_id":  "sess1",
		"name":        "SwiftRun Pro",
		"description": "running shoe",
	}, 3)
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}

	var resp UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.SessionID != "sess1" {
		t.Errorf("SessionID = %q", resp.SessionID)
	}
	if len(resp.Assets) != 3 {
		t.Errorf("saved %d assets, want 3", len(resp.Assets))
	}

	imageCount := 0
	metaCount := 0
	for _, fs := range store.ListStatus("sess1") {
		if bytes.Contains([]byte(fs.Filename), []byte("_image_")) {
			imageCount++
		}
		if fs.Filename == "sess1_product.json" {
			metaCount++
		}
	}
	if imageCount != 3 {
		t.Errorf("stored %d image files, want 3", imageCount)
	}
	if metaCount != 1 {
		t.Errorf("stored %d metadata files, want 1", metaCount)
	}

	if _, ok := store.Find("sess1", assets.KindImage); !ok {
		t.Error("Find should return one of the uploaded images")
	}

	meta, err := store.LoadMetadata("sess1")
	if err != nil || meta == nil {
		t.Fatalf("LoadMetadata: %v, %v", meta, err)
	}
	if meta.Name != "SwiftRun Pro" || meta.Description != "running shoe" {
		t.Errorf("metadata = %+v", meta)
	}
}

func TestUploadDefaultsProductName(t *testing.T) {
	handler, store := newTestHandler(t)

	req := uploadRequest(t, map[string]string{"session_id": "sess2"}, 0)
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}

	meta, err := store.LoadMetadata("sess2")
	if err != nil || meta == nil {
		t.Fatalf("LoadMetadata: %v, %v", meta, err)
	}
	if meta.Name != defaultProductName {
		t.Errorf("Name = %q, want %q", meta.Name, defaultProductName)
	}
}

func TestUploadGeneratesSessionID(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := uploadRequest(t, map[string]string{"name": "X"}, 1)
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	var resp UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("a session id should be generated when absent")
	}
}
