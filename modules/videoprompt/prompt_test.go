package videoprompt

import (
	"strings"
	"testing"
)

func TestBuildVeoPromptDefaults(t *testing.T) {
	got := BuildVeoPrompt(PromptInput{Script: "a script"})

	if !strings.Contains(got, "Creative style: cinematic") {
		t.Errorf("missing default creative style:\n%s", got)
	}
	if !strings.Contains(got, "Mood: professional") {
		t.Errorf("missing default mood:\n%s", got)
	}
	if strings.Contains(got, "Target audience:") {
		t.Errorf("empty target audience should be omitted:\n%s", got)
	}
}

func TestBuildVeoPromptIncludesAllFields(t *testing.T) {
	in := PromptInput{
		Script:             "SCENE: product reveal",
		ProductName:        "SwiftRun Pro",
		ProductDescription: "lightweight running shoe",
		CreativeStyle:      "documentary",
		Mood:               "upbeat",
		TargetAudience:     "young athletes",
	}

	got := BuildVeoPrompt(in)

	for _, want := range []string{
		"SCENE: product reveal",
		"SwiftRun Pro",
		"lightweight running shoe",
		"Creative style: documentary",
		"Mood: upbeat",
		"Target audience: young athletes",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q:\n%s", want, got)
		}
	}
}

func TestBuildVeoPromptScriptBeforeHints(t *testing.T) {
	in := PromptInput{Script: "UNIQUE_SCRIPT_MARKER", CreativeStyle: "noir"}
	got := BuildVeoPrompt(in)

	scriptIdx := strings.Index(got, "UNIQUE_SCRIPT_MARKER")
	styleIdx := strings.Index(got, "Creative style: noir")
	if scriptIdx < 0 || styleIdx < 0 {
		t.Fatalf("components missing:\n%s", got)
	}
	if scriptIdx > styleIdx {
		t.Error("script should precede style hints")
	}
}
