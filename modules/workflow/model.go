package workflow

import (
	"context"

	"adforge-server/modules/assets"
	"adforge-server/modules/avatar"
	"adforge-server/modules/background"
	"adforge-server/modules/media"
	"adforge-server/modules/videoprompt"
)

// 워크플로우 산출물 파일명 접미사
const (
	backgroundFileSuffix = "_veo_background.mp4"
	overlayFileSuffix    = "_heygen_overlay.mp4"
	combinedFileSuffix   = "_combined_final.mp4"
)

// 매니페스트용 파생 비디오 종류 라벨
const (
	kindBackgroundVideo = "veo_background"
	kindOverlayVideo    = "heygen_overlay"
)

// ScriptGenerator - 1단계: 광고 스크립트 생성
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, prompt string) (string, error)
}

// VeoPromptGenerator - 2단계: 시각 프롬프트 생성
type VeoPromptGenerator interface {
	GenerateVeoPrompt(ctx context.Context, in videoprompt.PromptInput) (string, error)
}

// BackgroundGenerator - 3단계: 배경 비디오 생성
type BackgroundGenerator interface {
	GenerateVideo(ctx context.Context, req background.GenerateRequest) (*background.GenerateResult, error)
}

// AvatarGenerator - 4단계: 아바타 비디오 생성
type AvatarGenerator interface {
	GenerateVideo(ctx context.Context, req avatar.GenerateRequest) (*avatar.GenerateResult, error)
}

// Compositor - 5단계: 오버레이 합성
type Compositor interface {
	Overlay(ctx context.Context, backgroundPath, overlayPath, outputPath string, opts media.OverlayOptions) (*media.OverlayResult, error)
}

// Captioner - 스크립트 생성 전 이미지/프레임 설명 (실패 무시)
type Captioner interface {
	DescribeImage(ctx context.Context, imageData []byte, mimeType string) (string, error)
	DescribeVideoFrame(ctx context.Context, frameData []byte) (string, error)
}

// FrameExtractor - 업로드 비디오 첫 프레임 추출
type FrameExtractor interface {
	ExtractFirstFrame(ctx context.Context, videoPath, outputPath string) (string, error)
}

// ProgressPublisher - 진행 상황 브로드캐스트 (nil 허용)
type ProgressPublisher interface {
	Publish(sessionID, stage, message string)
}

// StageFunc - 단계 전환 콜백 (비동기 잡 기록용, nil 허용)
type StageFunc func(stage string)

// Request - 전체/부분 워크플로우 입력
// Script가 비어 있으면 1단계부터, VeoPrompt가 비어 있으면 2단계부터 수행
type Request struct {
	SessionID          string
	Prompt             string
	Script             string
	VeoPrompt          string
	ProductName        string
	ProductDescription string

	ScriptFormat     string
	CreativeStrategy string
	ExecutionStyle   string

	CreativeStyle  string
	Mood           string
	TargetAudience string

	AvatarID string
	VoiceID  string

	VeoDuration    int
	VeoAspectRatio string
	VeoQuality     string

	OverlayPosition string
	OverlayWidth    int
	OverlayHeight   int
	BackgroundAudio bool
}

// Result - 워크플로우 완료 결과
type Result struct {
	SessionID      string `json:"session_id"`
	Script         string `json:"script"`
	VeoPrompt      string `json:"veo_prompt"`
	CombinedVideo  string `json:"combined_video"`
	WorkflowStatus string `json:"workflow_status"`
}

// StatusResponse - GET /combined-video/status/{sessionId} 응답
type StatusResponse struct {
	SessionID string              `json:"session_id"`
	Status    string              `json:"status"`
	Files     []assets.FileStatus `json:"files"`
}
