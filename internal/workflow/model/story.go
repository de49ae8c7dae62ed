package model

// StoryChainInput 故事链路的统一输入
type StoryChainInput struct {
	Provider    string
	Model       string
	Story       string
	Temperature *float32
	MaxTokens   *int
}

// ClassifyResult 分类结果
type ClassifyResult struct {
	Genre      string  `json:"genre"`
	Style      string  `json:"style"`
	Confidence float64 `json:"confidence"`
}

// ScenePlanItem 场景拆分结果中的单个场景
type ScenePlanItem struct {
	SceneNumber     int    `json:"scene_number"`
	SceneText       string `json:"scene_text"`
	CinematicPrompt string `json:"cinematic_prompt"`
}

// PatternResult 视觉模式分析结果
type PatternResult struct {
	RecurringCharacters    []string `json:"recurring_characters"`
	RecurringLocations     []string `json:"recurring_locations"`
	Motifs                 []string `json:"motifs"`
	VisualConsistencyScore float64  `json:"visual_consistency_score"`
}
