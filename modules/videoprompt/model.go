package videoprompt

import "github.com/invopop/jsonschema"

// 기본값
const (
	DefaultCreativeStyle = "cinematic"
	DefaultMood          = "professional"
)

// PromptInput - veo 프롬프트 생성 재료
type PromptInput struct {
	Script             string
	ProductName        string
	ProductDescription string
	CreativeStyle      string
	Mood               string
	TargetAudience     string
}

// VeoPromptResult - LLM structured output 스키마
type VeoPromptResult struct {
	VeoPrompt string `json:"veo_prompt" jsonschema_description:"A visual text-to-video generation prompt describing scenes, camera work, lighting, and motion. No dialogue or on-screen text."`
}

// GenerateResponse - POST /generate-veo-prompt 응답
type GenerateResponse struct {
	VeoPrompt      string            `json:"veo_prompt"`
	Script         string            `json:"script"`
	ProductInfo    map[string]string `json:"product_info"`
	CreativeStyle  string            `json:"creative_style"`
	Mood           string            `json:"mood"`
	TargetAudience string            `json:"target_audience"`
}

// GenerateSchema - 구조화 출력용 JSON 스키마 리플렉션
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var veoPromptSchema = GenerateSchema[VeoPromptResult]()
