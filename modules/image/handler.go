package image

import (
	"encoding/json"
	"net/http"

	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/utils"
)

// GenerateRequest - POST /image 요청
type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
}

// Handler - 이미지 생성 HTTP 핸들러
type Handler struct {
	service *Service
}

// NewHandler - 핸들러 생성
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Generate - POST /image
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.Generate(r.Context(), req.Prompt, req.Size)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// GenerateOptimized - POST /image/optimized
func (h *Handler) GenerateOptimized(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.GenerateOptimized(r.Context(), req.Prompt, req.Size)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (GenerateRequest, bool) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apierr.NewInputError("invalid request body: %v", err))
		return req, false
	}
	return req, true
}
