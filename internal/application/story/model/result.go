// Package model 定义文本流水线的输出模型
package model

import (
	wfmodel "story-scene-api/internal/workflow/model"
)

// GenerationStatus 流水线整体状态
type GenerationStatus string

const (
	GenerationStatusCompleted GenerationStatus = "completed"
	GenerationStatusFailed    GenerationStatus = "failed"
)

// SceneOutput 流水线产出的单个场景
type SceneOutput struct {
	SceneNumber       int
	SceneText         string
	CinematicPrompt   string
	ConfidenceScore   float64
	CompletenessScore float64
}

// StoryGenerationResult 文本流水线的完整输出。
// 各步骤独立降级，Status 只反映场景拆分是否成功。
type StoryGenerationResult struct {
	Title         string
	OriginalTitle string
	Genre         string
	Style         string
	Scenes        []SceneOutput
	Summary       string
	Patterns      *wfmodel.PatternResult
	Status        GenerationStatus
}
