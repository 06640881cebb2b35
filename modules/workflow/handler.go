package workflow

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"adforge-server/modules/assets"
	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/fallback"
	"adforge-server/modules/common/utils"
)

const maxUploadSize = 100 << 20

// Handler - 워크플로우 HTTP 핸들러
type Handler struct {
	store   *assets.Store
	service *Service
}

// NewHandler - 핸들러 생성
func NewHandler(store *assets.Store, service *Service) *Handler {
	return &Handler{store: store, service: service}
}

// CompleteWorkflow - POST /complete-workflow
// 업로드 파일 저장 후 1~5단계 전체 실행
func (h *Handler) CompleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.WriteError(w, apierr.NewInputError("invalid multipart form: %v", err))
		return
	}

	req := requestFromForm(r)

	imageData, imageName, _ := readFormFile(r, "image")
	videoData, videoName, _ := readFormFile(r, "video")

	if req.Prompt == "" && imageData == nil && videoData == nil && r.FormValue("session_id") == "" {
		utils.WriteError(w, apierr.NewInputError("at least one of prompt, image, video, or session_id is required"))
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	if imageData != nil {
		if _, err := h.store.Save(req.SessionID, assets.KindImage, imageName, imageData); err != nil {
			utils.WriteError(w, err)
			return
		}
	}
	if videoData != nil {
		if _, err := h.store.Save(req.SessionID, assets.KindVideo, videoName, videoData); err != nil {
			utils.WriteError(w, err)
			return
		}
	}

	log.Printf("🚀 [Workflow] Complete workflow requested for session %s", req.SessionID)

	result, err := h.service.Run(r.Context(), req, nil)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// combinedRequestBody - combined-video 엔드포인트 JSON 요청
// heygen_script / overlay_size는 기존 클라이언트 호환용 별칭
type combinedRequestBody struct {
	SessionID          string `json:"session_id"`
	Script             string `json:"script"`
	HeygenScript       string `json:"heygen_script"`
	VeoPrompt          string `json:"veo_prompt"`
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description"`
	CreativeStyle      string `json:"creative_style"`
	Mood               string `json:"mood"`
	TargetAudience     string `json:"target_audience"`
	AvatarID           string `json:"avatar_id"`
	VoiceID            string `json:"voice_id"`
	VeoDuration        int    `json:"veo_duration"`
	VeoAspectRatio     string `json:"veo_aspect_ratio"`
	VeoQuality         string `json:"veo_quality"`
	OverlayPosition    string `json:"overlay_position"`
	OverlayWidth       int    `json:"overlay_width"`
	OverlayHeight      int    `json:"overlay_height"`
	OverlaySize        []int  `json:"overlay_size"`
	BackgroundAudio    *bool  `json:"background_audio"`
}

// normalize - 별칭 필드를 기본 필드로 병합
func (b *combinedRequestBody) normalize() {
	if b.Script == "" {
		b.Script = b.HeygenScript
	}
	if b.OverlayWidth == 0 && b.OverlayHeight == 0 && len(b.OverlaySize) == 2 {
		b.OverlayWidth = b.OverlaySize[0]
		b.OverlayHeight = b.OverlaySize[1]
	}
}

// GenerateCombined - POST /combined-video/generate
// 스크립트와 veo 프롬프트가 모두 주어진 상태에서 3~5단계만 실행
func (h *Handler) GenerateCombined(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeCombined(w, r)
	if !ok {
		return
	}
	if body.Script == "" || body.VeoPrompt == "" {
		utils.WriteError(w, apierr.NewInputError("script and veo_prompt are required"))
		return
	}
	h.runCombined(w, r, body)
}

// GenerateCombinedWithScript - POST /combined-video/generate-with-script
// 스크립트만 주어지고 veo 프롬프트는 2단계에서 생성
func (h *Handler) GenerateCombinedWithScript(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeCombined(w, r)
	if !ok {
		return
	}
	if body.Script == "" {
		utils.WriteError(w, apierr.NewInputError("script is required"))
		return
	}
	body.VeoPrompt = ""
	h.runCombined(w, r, body)
}

// Status - GET /combined-video/status/{sessionId}
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	if sessionID == "" {
		utils.WriteError(w, apierr.NewInputError("sessionId is required"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.service.Status(sessionID))
}

func (h *Handler) runCombined(w http.ResponseWriter, r *http.Request, body combinedRequestBody) {
	sessionID := body.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	backgroundAudio := true
	if body.BackgroundAudio != nil {
		backgroundAudio = *body.BackgroundAudio
	}

	req := Request{
		SessionID:          sessionID,
		Script:             body.Script,
		VeoPrompt:          body.VeoPrompt,
		ProductName:        body.ProductName,
		ProductDescription: body.ProductDescription,
		CreativeStyle:      body.CreativeStyle,
		Mood:               body.Mood,
		TargetAudience:     body.TargetAudience,
		AvatarID:           body.AvatarID,
		VoiceID:            body.VoiceID,
		VeoDuration:        body.VeoDuration,
		VeoAspectRatio:     body.VeoAspectRatio,
		VeoQuality:         body.VeoQuality,
		OverlayPosition:    body.OverlayPosition,
		OverlayWidth:       body.OverlayWidth,
		OverlayHeight:      body.OverlayHeight,
		BackgroundAudio:    backgroundAudio,
	}

	result, err := h.service.Run(r.Context(), req, nil)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func decodeCombined(w http.ResponseWriter, r *http.Request) (combinedRequestBody, bool) {
	var body combinedRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, apierr.NewInputError("invalid request body: %v", err))
		return body, false
	}
	body.normalize()
	return body, true
}

// requestFromForm - multipart 폼 필드를 Request로 변환 (기본값 적용)
func requestFromForm(r *http.Request) Request {
	return Request{
		SessionID:          r.FormValue("session_id"),
		Prompt:             r.FormValue("prompt"),
		ProductName:        r.FormValue("product_name"),
		ProductDescription: r.FormValue("product_description"),
		ScriptFormat:       r.FormValue("script_format"),
		CreativeStrategy:   r.FormValue("creative_strategy"),
		ExecutionStyle:     r.FormValue("execution_style"),
		CreativeStyle:      r.FormValue("creative_style"),
		Mood:               r.FormValue("mood"),
		TargetAudience:     r.FormValue("target_audience"),
		AvatarID:           r.FormValue("avatar_id"),
		VoiceID:            r.FormValue("voice_id"),
		VeoDuration:        fallback.SafeInt(r.FormValue("veo_duration"), 5),
		VeoAspectRatio:     fallback.SafeString(r.FormValue("veo_aspect_ratio"), "16:9"),
		VeoQuality:         fallback.SafeString(r.FormValue("veo_quality"), "standard"),
		OverlayPosition:    fallback.SafeString(r.FormValue("overlay_position"), "center"),
		OverlayWidth:       fallback.SafeInt(r.FormValue("overlay_width"), 0),
		OverlayHeight:      fallback.SafeInt(r.FormValue("overlay_height"), 0),
		BackgroundAudio:    fallback.SafeBool(r.FormValue("background_audio"), true),
	}
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
