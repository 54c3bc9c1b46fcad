package style

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"pet-portrait-server/modules/common/utils"
)

const referenceLoadConcurrency = 4

// LoadReferences - 모든 스타일의 참고 이미지를 병렬로 읽음
// 기본 경로가 없으면 FallbackImagePath 시도, 둘 다 없으면 경고만 남김
func (c *Catalog) LoadReferences(ctx context.Context, baseDir string) error {
	loaded := make([]*ReferenceImage, len(c.templates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(referenceLoadConcurrency)

	for i, t := range c.templates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			loaded[i] = c.readReference(baseDir, t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for i, ref := range loaded {
		if ref == nil {
			continue
		}
		c.references[c.templates[i].ID] = ref
		count++
	}

	c.logger.Info().
		Int("loaded", count).
		Int("styles", len(c.templates)).
		Msg("🖼️  [Style] Reference images loaded")
	return nil
}

func (c *Catalog) readReference(baseDir string, t StyleTemplate) *ReferenceImage {
	for _, rel := range []string{t.ReferenceImagePath, t.FallbackImagePath} {
		if rel == "" {
			continue
		}
		path := filepath.Join(baseDir, filepath.FromSlash(rel))
		data, err := os.ReadFile(path)
		if err != nil {
			c.logger.Debug().Err(err).Str("style", t.ID).Str("path", path).Msg("[Style] Reference candidate not readable")
			continue
		}
		if rel == t.FallbackImagePath {
			c.logger.Warn().Str("style", t.ID).Str("path", path).Msg("⚠️  [Style] Using fallback reference image")
		}
		return &ReferenceImage{
			Path:     path,
			MIMEType: utils.MIMETypeFromPath(path),
			Data:     data,
		}
	}

	c.logger.Warn().
		Str("style", t.ID).
		Str("path", t.ReferenceImagePath).
		Msg("⚠️  [Style] Style reference not found")
	return nil
}
