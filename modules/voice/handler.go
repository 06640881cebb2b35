package voice

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/utils"
)

// SynthesizeRequest - POST /voice 요청
type SynthesizeRequest struct {
	Script  string `json:"script"`
	VoiceID string `json:"voice_id"`
}

// SynthesizeResponse - POST /voice 응답
type SynthesizeResponse struct {
	VoiceText   string `json:"voice_text"`
	AudioBase64 string `json:"audio_base64"`
}

// Handler - 음성 합성 HTTP 핸들러
type Handler struct {
	service *Service
}

// NewHandler - 핸들러 생성
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Synthesize - POST /voice
func (h *Handler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req SynthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apierr.NewInputError("invalid request body: %v", err))
		return
	}
	if req.Script == "" {
		utils.WriteError(w, apierr.NewInputError("script is required"))
		return
	}

	result, err := h.service.Synthesize(r.Context(), req.Script, req.VoiceID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, SynthesizeResponse{
		VoiceText:   result.VoiceText,
		AudioBase64: base64.StdEncoding.EncodeToString(result.Audio),
	})
}
