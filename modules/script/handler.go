package script

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"

	"adforge-server/modules/assets"
	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/utils"
)

const maxUploadSize = 50 << 20

// Generator - 스크립트 생성기
type Generator interface {
	GenerateScript(ctx context.Context, prompt string) (string, error)
}

// Captioner - 이미지/프레임 설명 생성기 (실패는 무시됨)
type Captioner interface {
	DescribeImage(ctx context.Context, imageData []byte, mimeType string) (string, error)
	DescribeVideoFrame(ctx context.Context, frameData []byte) (string, error)
}

// FrameExtractor - 비디오 첫 프레임 추출기
type FrameExtractor interface {
	ExtractFirstFrame(ctx context.Context, videoPath, outputPath string) (string, error)
}

// Handler - 스크립트 생성 HTTP 핸들러
type Handler struct {
	store     *assets.Store
	generator Generator
	captioner Captioner
	extractor FrameExtractor
}

// NewHandler - 핸들러 생성
func NewHandler(store *assets.Store, generator Generator, captioner Captioner, extractor FrameExtractor) *Handler {
	return &Handler{
		store:     store,
		generator: generator,
		captioner: captioner,
		extractor: extractor,
	}
}

// Generate - POST /script
// prompt/image/video/session_id 중 최소 하나 필요
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.WriteError(w, apierr.NewInputError("invalid multipart form: %v", err))
		return
	}

	req := GenerateRequest{
		Prompt:           r.FormValue("prompt"),
		SessionID:        r.FormValue("session_id"),
		ScriptFormat:     r.FormValue("script_format"),
		CreativeStrategy: r.FormValue("creative_strategy"),
		ExecutionStyle:   r.FormValue("execution_style"),
	}

	imageData, imageName, _ := readFormFile(r, "image")
	videoData, videoName, _ := readFormFile(r, "video")

	if req.Prompt == "" && imageData == nil && videoData == nil && req.SessionID == "" {
		utils.WriteError(w, apierr.NewInputError("at least one of prompt, image, video, or session_id is required"))
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	log.Printf("📝 [Script] Request for session %s", sessionID)

	ctx := r.Context()
	var inputs []string
	if req.Prompt != "" {
		inputs = append(inputs, "prompt")
	}

	imagePath := ""
	if imageData != nil {
		path, err := h.store.Save(sessionID, assets.KindImage, imageName, imageData)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		imagePath = path
		inputs = append(inputs, "image")
	} else if path, ok := h.store.Find(sessionID, assets.KindImage); ok {
		imagePath = path
		inputs = append(inputs, "session_image")
	}

	videoPath := ""
	if videoData != nil {
		path, err := h.store.Save(sessionID, assets.KindVideo, videoName, videoData)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		videoPath = path
		inputs = append(inputs, "video")
	} else if path, ok := h.store.Find(sessionID, assets.KindVideo); ok {
		videoPath = path
		inputs = append(inputs, "session_video")
	}

	imageCaption := h.captionImage(ctx, imagePath)
	videoCaption := h.captionVideo(ctx, sessionID, videoPath)

	in := PromptInput{
		Prompt:           req.Prompt,
		ImageCaption:     imageCaption,
		VideoCaption:     videoCaption,
		ScriptFormat:     req.ScriptFormat,
		CreativeStrategy: req.CreativeStrategy,
		ExecutionStyle:   req.ExecutionStyle,
	}
	if meta, err := h.store.LoadMetadata(sessionID); err == nil && meta != nil {
		in.ProductName = meta.Name
		in.ProductDescription = meta.Description
	}

	generated, err := h.generator.GenerateScript(ctx, BuildScriptPrompt(in))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, GenerateResponse{
		SessionID:    sessionID,
		Script:       generated,
		Inputs:       inputs,
		ImageCaption: imageCaption,
		VideoCaption: videoCaption,
	})
}

// captionImage - 이미지 캡션 생성 (실패 시 빈 문자열)
func (h *Handler) captionImage(ctx context.Context, imagePath string) string {
	if imagePath == "" || h.captioner == nil {
		return ""
	}
	data, err := os.ReadFile(imagePath)
	if err != nil {
		log.Printf("⚠️ [Script] Failed to read image for captioning: %v", err)
		return ""
	}
	caption, err := h.captioner.DescribeImage(ctx, data, "image/jpeg")
	if err != nil {
		log.Printf("⚠️ [Script] Image captioning skipped: %v", err)
		return ""
	}
	return caption
}

// captionVideo - 첫 프레임 추출 후 캡션 생성 (실패 시 빈 문자열)
func (h *Handler) captionVideo(ctx context.Context, sessionID, videoPath string) string {
	if videoPath == "" || h.captioner == nil || h.extractor == nil {
		return ""
	}
	framePath, err := h.extractor.ExtractFirstFrame(ctx, videoPath, h.store.FramePath(sessionID))
	if err != nil {
		log.Printf("⚠️ [Script] Frame extraction skipped: %v", err)
		return ""
	}
	data, err := os.ReadFile(framePath)
	if err != nil {
		log.Printf("⚠️ [Script] Failed to read extracted frame: %v", err)
		return ""
	}
	caption, err := h.captioner.DescribeVideoFrame(ctx, data)
	if err != nil {
		log.Printf("⚠️ [Script] Video captioning skipped: %v", err)
		return ""
	}
	return caption
}

// readFormFile - multipart 파일 필드 읽기
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
