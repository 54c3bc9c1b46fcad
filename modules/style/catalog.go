package style

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Catalog - 스타일 목록 (시작 후 읽기 전용)
type Catalog struct {
	templates []StyleTemplate
	index     map[string]int
	defaultID string
	logger    zerolog.Logger

	mu         sync.RWMutex
	references map[string]*ReferenceImage
}

// NewCatalog - 템플릿 목록 검증 후 Catalog 생성
func NewCatalog(templates []StyleTemplate, defaultID string) (*Catalog, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("style catalog is empty")
	}

	c := &Catalog{
		templates:  make([]StyleTemplate, 0, len(templates)),
		index:      make(map[string]int, len(templates)),
		defaultID:  strings.TrimSpace(defaultID),
		logger:     zerolog.Nop(),
		references: make(map[string]*ReferenceImage),
	}

	for _, t := range templates {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return nil, fmt.Errorf("style template without id")
		}
		if _, dup := c.index[t.ID]; dup {
			return nil, fmt.Errorf("duplicate style id: %s", t.ID)
		}
		if strings.TrimSpace(t.PromptSuffix) == "" {
			return nil, fmt.Errorf("style %s has no prompt", t.ID)
		}
		if t.DisplayName == "" {
			t.DisplayName = displayNameFromID(t.ID)
		}
		c.index[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}

	if _, ok := c.index[c.defaultID]; !ok {
		return nil, fmt.Errorf("default style %q is not in the catalog", c.defaultID)
	}
	return c, nil
}

// WithLogger - 참고 이미지 로딩 로그용
func (c *Catalog) WithLogger(logger zerolog.Logger) *Catalog {
	c.logger = logger
	return c
}

// LoadTemplatesFile - JSON 배열 형식의 스타일 정의 파일 읽기
func LoadTemplatesFile(path string) ([]StyleTemplate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read style catalog: %w", err)
	}
	var templates []StyleTemplate
	if err := json.Unmarshal(raw, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse style catalog %s: %w", path, err)
	}
	return templates, nil
}

// DefaultID - 기본 스타일 ID
func (c *Catalog) DefaultID() string {
	return c.defaultID
}

// Lookup - ID로 스타일 조회, 없으면 기본 스타일과 false 반환
func (c *Catalog) Lookup(id string) (StyleTemplate, bool) {
	if i, ok := c.index[strings.TrimSpace(id)]; ok {
		return c.templates[i], true
	}
	return c.templates[c.index[c.defaultID]], false
}

// Reference - 미리 읽어 둔 참고 이미지
func (c *Catalog) Reference(id string) (*ReferenceImage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.references[id]
	return ref, ok
}

// List - 카탈로그 순서대로 요약 목록
func (c *Catalog) List() []StyleSummary {
	out := make([]StyleSummary, 0, len(c.templates))
	for _, t := range c.templates {
		_, hasRef := c.Reference(t.ID)
		out = append(out, StyleSummary{
			ID:           t.ID,
			DisplayName:  t.DisplayName,
			HasReference: hasRef,
			IsDefault:    t.ID == c.defaultID,
		})
	}
	return out
}

// displayNameFromID - "roman-gladiator" → "Roman Gladiator"
func displayNameFromID(id string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(id)
	return cases.Title(language.English).String(words)
}
