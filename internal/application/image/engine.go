package image

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"story-scene-api/internal/workflow/port"
	"story-scene-api/pkg/errors"
	"story-scene-api/pkg/logger"
	"story-scene-api/pkg/metrics"
)

var tracer = otel.Tracer("application.image")

// ScenePlan 单个场景的图像生成输入
type ScenePlan struct {
	SceneNumber     int
	SceneText       string
	CinematicPrompt string
}

// GeneratedImage 单个场景的图像生成输出
type GeneratedImage struct {
	SceneNumber int
	FilePath    string
	FileURL     string
}

// Engine 单场景图像生成引擎。连续性状态由调用方以值传递，
// 引擎本身无状态。
type Engine struct {
	invoker     port.ImageInvoker
	outputDir   string
	baseURL     string
	aspectRatio string
}

// NewEngine 创建图像生成引擎
func NewEngine(invoker port.ImageInvoker, outputDir, baseURL, aspectRatio string) *Engine {
	return &Engine{
		invoker:     invoker,
		outputDir:   outputDir,
		baseURL:     baseURL,
		aspectRatio: aspectRatio,
	}
}

// Generate 为单个场景生成图像：校验提示词、构造内容片段、调用上游、
// 归一化响应、落盘 PNG，并返回供下一场景使用的连续性图像。
// 提示词为空时不发起任何上游调用。
func (e *Engine) Generate(ctx context.Context, storyID string, style string, scene ScenePlan, prev *PreviousImage) (*GeneratedImage, *PreviousImage, error) {
	ctx, span := tracer.Start(ctx, "image.Engine.Generate")
	span.SetAttributes(
		attribute.String("story_id", storyID),
		attribute.Int("scene_number", scene.SceneNumber),
	)
	defer span.End()

	start := time.Now()

	prompt := strings.TrimSpace(scene.CinematicPrompt)
	if prompt == "" {
		prompt = strings.TrimSpace(scene.SceneText)
	}
	if prompt == "" {
		metrics.ValidationTotal.WithLabelValues("scene_prompt", "failed").Inc()
		return nil, prev, errors.New(errors.CodeValidationFailed, "empty scene prompt")
	}
	metrics.ValidationTotal.WithLabelValues("scene_prompt", "ok").Inc()

	parts := BuildParts(ResolveStyle(style), prompt, e.aspectRatio, prev)

	resp, err := e.invoker.GenerateImage(ctx, parts)
	if err != nil {
		appErr := errors.ClassifyGeneration(err)
		span.RecordError(appErr)
		observeImage(outcomeLabel(appErr), start)
		return nil, prev, appErr
	}

	imgBytes, err := ExtractImage(resp)
	if err != nil {
		span.RecordError(err)
		observeImage(outcomeLabel(errors.AsAppError(err)), start)
		return nil, prev, err
	}

	decoded, _, err := stdimage.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		appErr := errors.Wrap(err, errors.CodeMalformedResponse, "could not decode image data")
		span.RecordError(appErr)
		observeImage("failed", start)
		return nil, prev, appErr
	}

	filename := fmt.Sprintf("scene_%s_%02d.png", storyID, scene.SceneNumber)
	filePath := filepath.Join(e.outputDir, filename)
	if err := e.writePNG(filePath, decoded); err != nil {
		span.RecordError(err)
		observeImage("failed", start)
		return nil, prev, errors.Wrap(err, errors.CodeGenerationFailed, "failed to write image file")
	}

	next, err := encodeContinuity(decoded)
	if err != nil {
		span.RecordError(err)
		observeImage("failed", start)
		return nil, prev, errors.Wrap(err, errors.CodeGenerationFailed, "failed to encode continuity image")
	}

	logger.Info(ctx, "scene image generated",
		"story_id", storyID,
		"scene_number", scene.SceneNumber,
		"file_path", filePath,
	)
	observeImage("success", start)

	return &GeneratedImage{
		SceneNumber: scene.SceneNumber,
		FilePath:    filePath,
		FileURL:     e.fileURL(filename),
	}, next, nil
}

func (e *Engine) writePNG(filePath string, img stdimage.Image) error {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func (e *Engine) fileURL(filename string) string {
	return strings.TrimRight(e.baseURL, "/") + "/images/" + filename
}

// encodeContinuity 将生成结果重编码为 JPEG，作为下一场景的参考图像
func encodeContinuity(img stdimage.Image) (*PreviousImage, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, err
	}
	return &PreviousImage{
		Data:     buf.Bytes(),
		MIMEType: "image/jpeg",
	}, nil
}

func outcomeLabel(appErr *errors.AppError) string {
	switch appErr.Code {
	case errors.CodeRateLimited:
		return "rate_limited"
	case errors.CodeTimeout:
		return "timeout"
	default:
		return "failed"
	}
}

func observeImage(outcome string, start time.Time) {
	metrics.ImageGenerationTotal.WithLabelValues(outcome).Inc()
	metrics.ImageGenerationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
