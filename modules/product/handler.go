package product

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"adforge-server/modules/assets"
	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/utils"
)

const (
	maxUploadSize      = 100 << 20
	defaultProductName = "Untitled Product"
	webpQuality        = 80
)

// UploadResponse - POST /upload-product 응답
type UploadResponse struct {
	SessionID string                  `json:"session_id"`
	Product   *assets.ProductMetadata `json:"product"`
	Assets    []string                `json:"assets"`
}

// Handler - 제품 업로드 HTTP 핸들러
type Handler struct {
	store *assets.Store
}

// NewHandler - 핸들러 생성
func NewHandler(store *assets.Store) *Handler {
	return &Handler{store: store}
}

// Upload - POST /upload-product
// 이미지 N개는 인덱스 접두사로 저장, webp 변환은 실패해도 무시
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.WriteError(w, apierr.NewInputError("invalid multipart form: %v", err))
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	name := r.FormValue("name")
	if name == "" {
		name = defaultProductName
	}
	meta := &assets.ProductMetadata{
		Name:        name,
		Description: r.FormValue("description"),
	}

	log.Printf("📥 [Product] Upload for session %s (%s)", sessionID, name)

	var saved []string

	if r.MultipartForm != nil {
		for i, header := range r.MultipartForm.File["images"] {
			data, err := readMultipartFile(header)
			if err != nil {
				utils.WriteError(w, apierr.NewInputError("failed to read image %d: %v", i, err))
				return
			}
			path, err := h.store.Save(sessionID, assets.KindImage, fmt.Sprintf("%d_%s", i, header.Filename), data)
			if err != nil {
				utils.WriteError(w, err)
				return
			}
			saved = append(saved, path)
			h.saveWebPVariant(sessionID, i, header.Filename, data)
		}
	}

	if data, filename, err := readFormFile(r, "video"); err == nil {
		path, err := h.store.Save(sessionID, assets.KindVideo, filename, data)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		saved = append(saved, path)
	}

	if data, filename, err := readFormFile(r, "voice"); err == nil {
		path, err := h.store.Save(sessionID, assets.KindVoice, filename, data)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		saved = append(saved, path)
	}

	if err := h.store.SaveMetadata(sessionID, meta); err != nil {
		utils.WriteError(w, err)
		return
	}

	log.Printf("✅ [Product] Saved %d assets for session %s", len(saved), sessionID)

	utils.WriteJSON(w, http.StatusOK, UploadResponse{
		SessionID: sessionID,
		Product:   meta,
		Assets:    saved,
	})
}

// saveWebPVariant - 썸네일용 webp 사본 저장 (실패 무시)
func (h *Handler) saveWebPVariant(sessionID string, index int, filename string, data []byte) {
	webpData, err := utils.ConvertToWebP(data, webpQuality)
	if err != nil {
		log.Printf("⚠️ [Product] WebP conversion skipped for %s: %v", filename, err)
		return
	}
	base := strings.TrimSuffix(filename, fileExt(filename))
	if _, err := h.store.Save(sessionID, assets.KindImage, fmt.Sprintf("%d_%s.webp", index, base), webpData); err != nil {
		log.Printf("⚠️ [Product] Failed to save webp variant: %v", err)
	}
}

func fileExt(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx:]
	}
	return ""
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func readFormFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}
