package videoprompt

import (
	"context"
	"net/http"

	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/utils"
)

// PromptGenerator - veo 프롬프트 생성기
type PromptGenerator interface {
	GenerateVeoPrompt(ctx context.Context, in PromptInput) (string, error)
}

// Handler - 비디오 프롬프트 HTTP 핸들러
type Handler struct {
	generator PromptGenerator
}

// NewHandler - 핸들러 생성
func NewHandler(generator PromptGenerator) *Handler {
	return &Handler{generator: generator}
}

// Generate - POST /generate-veo-prompt
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		// form-urlencoded도 허용
		if err := r.ParseForm(); err != nil {
			utils.WriteError(w, apierr.NewInputError("invalid form: %v", err))
			return
		}
	}

	in := PromptInput{
		Script:             r.FormValue("script"),
		ProductName:        r.FormValue("product_name"),
		ProductDescription: r.FormValue("product_description"),
		CreativeStyle:      r.FormValue("creative_style"),
		Mood:               r.FormValue("mood"),
		TargetAudience:     r.FormValue("target_audience"),
	}
	if in.Script == "" {
		utils.WriteError(w, apierr.NewInputError("script is required"))
		return
	}
	if in.CreativeStyle == "" {
		in.CreativeStyle = DefaultCreativeStyle
	}
	if in.Mood == "" {
		in.Mood = DefaultMood
	}

	veoPrompt, err := h.generator.GenerateVeoPrompt(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, GenerateResponse{
		VeoPrompt: veoPrompt,
		Script:    in.Script,
		ProductInfo: map[string]string{
			"name":        in.ProductName,
			"description": in.ProductDescription,
		},
		CreativeStyle:  in.CreativeStyle,
		Mood:           in.Mood,
		TargetAudience: in.TargetAudience,
	})
}
