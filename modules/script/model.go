package script

// PromptInput - 스크립트 생성 프롬프트 재료
// 빈 필드는 프롬프트에서 생략된다
type PromptInput struct {
	Prompt             string
	ImageCaption       string
	VideoCaption       string
	ProductName        string
	ProductDescription string
	ScriptFormat       string
	CreativeStrategy   string
	ExecutionStyle     string
}

// GenerateRequest - POST /script 요청 필드
type GenerateRequest struct {
	Prompt           string `json:"prompt"`
	SessionID        string `json:"session_id"`
	ScriptFormat     string `json:"script_format"`
	CreativeStrategy string `json:"creative_strategy"`
	ExecutionStyle   string `json:"execution_style"`
}

// GenerateResponse - POST /script 응답
type GenerateResponse struct {
	SessionID    string   `json:"session_id"`
	Script       string   `json:"script"`
	Inputs       []string `json:"inputs"`
	ImageCaption string   `json:"image_caption,omitempty"`
	VideoCaption string   `json:"video_caption,omitempty"`
}
