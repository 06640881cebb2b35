package avatar

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/utils"
)

// Handler - 아바타 비디오 HTTP 핸들러
type Handler struct {
	service *Service
}

// NewHandler - 핸들러 생성
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// generateRequestBody - POST /video/generate 요청
type generateRequestBody struct {
	Script             string `json:"script"`
	AvatarID           string `json:"avatar_id"`
	VoiceID            string `json:"voice_id"`
	BackgroundImageURL string `json:"background_image_url"`
}

// Generate - POST /video/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var body generateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, apierr.NewInputError("invalid request body: %v", err))
		return
	}

	result, err := h.service.GenerateVideo(r.Context(), GenerateRequest{
		Script:             body.Script,
		AvatarID:           body.AvatarID,
		VoiceID:            body.VoiceID,
		BackgroundImageURL: body.BackgroundImageURL,
	})
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}

// ListAvatars - GET /video/avatars
func (h *Handler) ListAvatars(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ListAvatars(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// ListVoices - GET /video/voices
func (h *Handler) ListVoices(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ListVoices(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// CheckStatus - GET /video/status/{videoId}
func (h *Handler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	videoID := mux.Vars(r)["videoId"]
	if videoID == "" {
		utils.WriteError(w, apierr.NewInputError("videoId is required"))
		return
	}

	status, err := h.service.CheckStatus(r.Context(), videoID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, status)
}
