package story

import (
	"strings"
	"testing"
)

func TestParseClassifyResult(t *testing.T) {
	raw := "Here is the classification:\n```json\n{\"genre\": \"Horror\", \"style\": \"Noir\", \"confidence\": 0.85}\n```"

	result, err := ParseClassifyResult(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Genre != "Horror" || result.Style != "Noir" {
		t.Errorf("got %s/%s", result.Genre, result.Style)
	}
	if result.Confidence != 0.85 {
		t.Errorf("confidence = %v", result.Confidence)
	}
}

func TestParseClassifyResultMissingFields(t *testing.T) {
	if _, err := ParseClassifyResult(`{"genre": "Horror"}`); err == nil {
		t.Errorf("missing style must be rejected")
	}
	if _, err := ParseClassifyResult("no json here"); err == nil {
		t.Errorf("non-json output must be rejected")
	}
}

func TestParseScenePlan(t *testing.T) {
	raw := `[
		{"scene_number": 1, "scene_text": "opening", "cinematic_prompt": "wide shot"},
		{"scene_number": 2, "scene_text": "middle", "cinematic_prompt": "close up"},
		{"scene_number": 3, "scene_text": "ending", "cinematic_prompt": "fade out"}
	]`

	scenes, err := ParseScenePlan(raw, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scenes) != 3 {
		t.Fatalf("expected 3 scenes, got %d", len(scenes))
	}
	if scenes[2].CinematicPrompt != "fade out" {
		t.Errorf("cinematic prompt lost: %q", scenes[2].CinematicPrompt)
	}
}

func TestParseScenePlanTruncatesToMax(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 1; i <= 5; i++ {
		if i > 1 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"scene_number": ` + string(rune('0'+i)) + `, "scene_text": "s"}`)
	}
	sb.WriteString("]")

	scenes, err := ParseScenePlan(sb.String(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scenes) != 3 {
		t.Errorf("expected truncation to 3 scenes, got %d", len(scenes))
	}
}

func TestParseScenePlanRejectsGaps(t *testing.T) {
	raw := `[
		{"scene_number": 1, "scene_text": "a"},
		{"scene_number": 3, "scene_text": "b"}
	]`
	if _, err := ParseScenePlan(raw, 8); err == nil {
		t.Errorf("non-consecutive scene numbers must be rejected")
	}

	raw = `[{"scene_number": 2, "scene_text": "a"}]`
	if _, err := ParseScenePlan(raw, 8); err == nil {
		t.Errorf("scene numbering must start at 1")
	}
}

func TestParseScenePlanRejectsEmptyText(t *testing.T) {
	raw := `[{"scene_number": 1, "scene_text": "   "}]`
	if _, err := ParseScenePlan(raw, 8); err == nil {
		t.Errorf("blank scene text must be rejected")
	}
}
