package script

import (
	"fmt"
	"strings"
)

// BuildScriptPrompt - 스크립트 생성 프롬프트 조립
// 항목 순서 고정: 역할 → 요청 프롬프트 → 이미지 캡션 → 비디오 캡션 → 제품 정보 → 형식/전략/스타일 힌트
func BuildScriptPrompt(in PromptInput) string {
	var sections []string

	sections = append(sections, "Write a short, punchy advertisement script for the following product.")

	if in.Prompt != "" {
		sections = append(sections, fmt.Sprintf("Request: %s", in.Prompt))
	}
	if in.ImageCaption != "" {
		sections = append(sections, fmt.Sprintf("Product image description: %s", in.ImageCaption))
	}
	if in.VideoCaption != "" {
		sections = append(sections, fmt.Sprintf("Product video description: %s", in.VideoCaption))
	}
	if in.ProductName != "" {
		sections = append(sections, fmt.Sprintf("Product name: %s", in.ProductName))
	}
	if in.ProductDescription != "" {
		sections = append(sections, fmt.Sprintf("Product description: %s", in.ProductDescription))
	}
	if in.ScriptFormat != "" {
		sections = append(sections, fmt.Sprintf("Script format: %s", in.ScriptFormat))
	}
	if in.CreativeStrategy != "" {
		sections = append(sections, fmt.Sprintf("Creative strategy: %s", in.CreativeStrategy))
	}
	if in.ExecutionStyle != "" {
		sections = append(sections, fmt.Sprintf("Execution style: %s", in.ExecutionStyle))
	}

	return strings.Join(sections, "\n\n")
}

// BuildSpokenRewritePrompt - 음성 합성용 대사 추출 프롬프트
// 무대 지시문을 제거하고 실제로 말할 텍스트만 남긴다
func BuildSpokenRewritePrompt(script string) string {
	return fmt.Sprintf(
		"Rewrite the following ad script as spoken narration only. "+
			"Remove all stage directions, camera notes, scene labels, and formatting. "+
			"Return only the words a narrator would actually say.\n\n%s",
		script,
	)
}
