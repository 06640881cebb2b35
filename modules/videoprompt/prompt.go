package videoprompt

import (
	"fmt"
	"strings"
)

// BuildVeoPrompt - 스크립트를 시각적 비디오 생성 프롬프트로 변환하는 지시문 조립
// 항목 순서 고정: 역할 → 스크립트 → 제품 정보 → 스타일/무드/타깃 힌트
func BuildVeoPrompt(in PromptInput) string {
	var sections []string

	sections = append(sections,
		"Convert the following advertisement script into a purely visual text-to-video generation prompt. "+
			"Describe scenes, camera movement, lighting, and motion. "+
			"Do not include dialogue, narration, or on-screen text. Keep it under 120 words.")

	sections = append(sections, fmt.Sprintf("Script:\n%s", in.Script))

	if in.ProductName != "" {
		sections = append(sections, fmt.Sprintf("Product name: %s", in.ProductName))
	}
	if in.ProductDescription != "" {
		sections = append(sections, fmt.Sprintf("Product description: %s", in.ProductDescription))
	}

	style := in.CreativeStyle
	if style == "" {
		style = DefaultCreativeStyle
	}
	mood := in.Mood
	if mood == "" {
		mood = DefaultMood
	}
	sections = append(sections, fmt.Sprintf("Creative style: %s", style))
	sections = append(sections, fmt.Sprintf("Mood: %s", mood))

	if in.TargetAudience != "" {
		sections = append(sections, fmt.Sprintf("Target audience: %s", in.TargetAudience))
	}

	return strings.Join(sections, "\n\n")
}
