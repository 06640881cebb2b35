package model

import "time"

// WorkflowJob - ad_workflow_jobs 테이블 구조
// 비동기 워크플로우 실행의 상태 레코드
type WorkflowJob struct {
	JobID        string                 `json:"job_id"`
	SessionID    string                 `json:"session_id"`
	JobStage     *string                `json:"job_stage"` // 현재 파이프라인 단계
	JobStatus    string                 `json:"job_status"`
	JobInputData map[string]interface{} `json:"job_input_data"`
	Script       *string                `json:"script"`
	VeoPrompt    *string                `json:"veo_prompt"`
	CombinedPath *string                `json:"combined_path"`
	ErrorMessage *string                `json:"error_message"`
	CreatedAt    time.Time              `json:"created_at"`
	StartedAt    *time.Time             `json:"started_at"`
	CompletedAt  *time.Time             `json:"completed_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// WorkflowJobInput - job_input_data JSONB 구조
type WorkflowJobInput struct {
	Prompt           string `json:"prompt"`
	SessionID        string `json:"sessionId"`
	AvatarID         string `json:"avatarId"`
	VoiceID          string `json:"voiceId"`
	ScriptFormat     string `json:"scriptFormat"`
	CreativeStrategy string `json:"creativeStrategy"`
	ExecutionStyle   string `json:"executionStyle"`
	VeoDuration      int    `json:"veoDuration"`
	VeoAspectRatio   string `json:"veoAspectRatio"`
	VeoQuality       string `json:"veoQuality"`
	OverlayPosition  string `json:"overlayPosition"`
	BackgroundAudio  bool   `json:"backgroundAudio"`
}

const (
	StatusPending       = "pending"
	StatusProcessing    = "processing"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
	StatusUserCancelled = "user_cancelled"
)

// 파이프라인 단계 (워크플로우 상태 머신)
const (
	StageStart               = "start"
	StageScriptGenerated     = "script_generated"
	StageVideoPromptReady    = "video_prompt_generated"
	StageBackgroundVideoDone = "background_video_ready"
	StageAvatarVideoDone     = "avatar_video_ready"
	StageComposed            = "composed"
)
