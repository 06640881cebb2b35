package avatar

// 아바타 비디오 해상도 (고정)
const (
	VideoWidth  = 1280
	VideoHeight = 720
)

// 폴링에서 관찰되는 상태 값
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusWaiting    = "waiting"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// GenerateRequest - 아바타 비디오 생성 입력
type GenerateRequest struct {
	Script             string
	AvatarID           string
	VoiceID            string
	BackgroundImageURL string
}

// GenerateResult - 생성 완료 결과
type GenerateResult struct {
	VideoID      string  `json:"video_id"`
	VideoURL     string  `json:"video_url"`
	Duration     float64 `json:"duration"`
	ThumbnailURL string  `json:"thumbnail_url"`
}

// StatusResult - 단일 폴링 결과
type StatusResult struct {
	VideoID      string  `json:"video_id"`
	Status       string  `json:"status"`
	VideoURL     string  `json:"video_url,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
	ErrorMessage string  `json:"error,omitempty"`
}

// submitPayload - HeyGen v2 generate 요청 바디
type submitPayload struct {
	VideoInputs []videoInput `json:"video_inputs"`
	Dimension   dimension    `json:"dimension"`
}

type videoInput struct {
	Character character `json:"character"`
	Voice     voicePart `json:"voice"`
}

type character struct {
	Type        string      `json:"type"`
	AvatarID    string      `json:"avatar_id"`
	AvatarStyle string      `json:"avatar_style"`
	InputText   string      `json:"input_text"`
	Background  *background `json:"background,omitempty"`
}

type background struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type voicePart struct {
	Type      string  `json:"type"`
	InputText string  `json:"input_text"`
	VoiceID   string  `json:"voice_id"`
	Speed     float64 `json:"speed"`
}

type dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// submitResponse - v2 generate 응답
type submitResponse struct {
	Data struct {
		VideoID string `json:"video_id"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// statusResponse - v1 video_status.get 응답
type statusResponse struct {
	Code int `json:"code"`
	Data struct {
		Status       string  `json:"status"`
		VideoURL     string  `json:"video_url"`
		Duration     float64 `json:"duration"`
		ThumbnailURL string  `json:"thumbnail_url"`
		Error        *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"data"`
	Message string `json:"message"`
}
