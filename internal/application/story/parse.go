package story

import (
	"encoding/json"
	"fmt"
	"strings"

	wfmodel "story-scene-api/internal/workflow/model"
	"story-scene-api/internal/workflow/node"
)

// ParseClassifyResult 解析分类输出
func ParseClassifyResult(rawText string) (*wfmodel.ClassifyResult, error) {
	jsonText := node.ExtractJSONObject(rawText)
	if strings.TrimSpace(jsonText) == "" {
		return nil, fmt.Errorf("empty classify output")
	}

	var result wfmodel.ClassifyResult
	if err := json.Unmarshal([]byte(jsonText), &result); err != nil {
		return nil, fmt.Errorf("failed to parse classify json: %w", err)
	}
	if strings.TrimSpace(result.Genre) == "" || strings.TrimSpace(result.Style) == "" {
		return nil, fmt.Errorf("classify output missing genre or style")
	}
	return &result, nil
}

// ParseScenePlan 解析场景拆分输出并校验场景号严格递增
func ParseScenePlan(rawText string, maxScenes int) ([]wfmodel.ScenePlanItem, error) {
	jsonText := node.ExtractJSONObject(rawText)
	if strings.TrimSpace(jsonText) == "" {
		return nil, fmt.Errorf("empty scene plan output")
	}

	var scenes []wfmodel.ScenePlanItem
	if err := json.Unmarshal([]byte(jsonText), &scenes); err != nil {
		return nil, fmt.Errorf("failed to parse scene plan json: %w", err)
	}
	if len(scenes) == 0 {
		return nil, fmt.Errorf("scene plan is empty")
	}
	if maxScenes > 0 && len(scenes) > maxScenes {
		scenes = scenes[:maxScenes]
	}

	for i := range scenes {
		if scenes[i].SceneNumber != i+1 {
			return nil, fmt.Errorf("scene numbers must be consecutive starting at 1, got %d at position %d", scenes[i].SceneNumber, i)
		}
		if strings.TrimSpace(scenes[i].SceneText) == "" {
			return nil, fmt.Errorf("scene %d has empty text", scenes[i].SceneNumber)
		}
	}
	return scenes, nil
}
