package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptClassifyV1      PromptID = "classify_v1"
	PromptTitleV1         PromptID = "title_v1"
	PromptSceneBreakV1    PromptID = "scene_break_v1"
	PromptPatternDetectV1 PromptID = "pattern_detect_v1"
	PromptSummaryV1       PromptID = "summary_v1"
)

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptClassifyV1:
		return "templates/classify_v1.system.txt", "templates/classify_v1.user.txt", nil
	case PromptTitleV1:
		return "templates/title_v1.system.txt", "templates/title_v1.user.txt", nil
	case PromptSceneBreakV1:
		return "templates/scene_break_v1.system.txt", "templates/scene_break_v1.user.txt", nil
	case PromptPatternDetectV1:
		return "templates/pattern_detect_v1.system.txt", "templates/pattern_detect_v1.user.txt", nil
	case PromptSummaryV1:
		return "templates/summary_v1.system.txt", "templates/summary_v1.user.txt", nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
