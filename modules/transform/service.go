package transform

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"pet-portrait-server/modules/common/gemini"
	"pet-portrait-server/modules/common/utils"
	"pet-portrait-server/modules/style"
)

// Options - 모델 호출 및 출력 설정
type Options struct {
	Model             string
	AspectRatio       string
	Temperature       *float32
	MaxInputDimension int
	OutputFormat      string
	WebPQuality       float32
}

type Service struct {
	catalog   *style.Catalog
	generator gemini.Generator
	metrics   *Metrics
	opts      Options
	logger    zerolog.Logger
}

func NewService(catalog *style.Catalog, generator gemini.Generator, metrics *Metrics, opts Options, logger zerolog.Logger) *Service {
	if opts.OutputFormat == "" {
		opts.OutputFormat = "png"
	}
	if opts.WebPQuality <= 0 {
		opts.WebPQuality = 90
	}
	return &Service{
		catalog:   catalog,
		generator: generator,
		metrics:   metrics,
		opts:      opts,
		logger:    logger,
	}
}

// OutputFormat - 요청에 포맷이 없을 때 쓰는 기본값
func (s *Service) OutputFormat() string {
	return s.opts.OutputFormat
}

// Transform - 사진 한 장을 선택된 스타일의 초상화로 변환 (모델 호출은 정확히 1회)
func (s *Service) Transform(ctx context.Context, req TransformRequest) (*TransformResult, error) {
	tmpl, found := s.catalog.Lookup(req.StyleID)
	if !found {
		s.logger.Info().
			Str("requested_style", req.StyleID).
			Str("style", tmpl.ID).
			Msg("ℹ️  [Transform] Unknown style, using default")
	}

	format, err := NormalizeFormat(req.Format, s.opts.OutputFormat)
	if err != nil {
		return nil, err
	}

	photo, resized, err := utils.FitWithin(req.Photo, req.MIMEType, s.opts.MaxInputDimension)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode photo: %v", ErrContentMismatch, err)
	}
	if resized {
		s.logger.Debug().
			Int("before_bytes", len(req.Photo)).
			Int("after_bytes", len(photo)).
			Int("max_dimension", s.opts.MaxInputDimension).
			Msg("📐 [Transform] Photo downscaled")
	}

	ref, hasRef := s.catalog.Reference(tmpl.ID)
	if !hasRef {
		s.logger.Warn().Str("style", tmpl.ID).Msg("⚠️  [Transform] No style reference, sending photo only")
	}

	prompt := BuildPrompt(tmpl, req.Gender)
	genReq := &gemini.Request{
		Model:              s.opts.Model,
		Parts:              BuildParts(prompt, photo, req.MIMEType, ref),
		ResponseModalities: []string{"IMAGE"},
		AspectRatio:        s.opts.AspectRatio,
		Temperature:        s.opts.Temperature,
	}

	s.logger.Info().
		Str("style", tmpl.ID).
		Str("gender", NormalizeGender(req.Gender)).
		Bool("reference", hasRef).
		Int("parts", len(genReq.Parts)).
		Msg("🚀 [Transform] Calling Gemini API")

	start := time.Now()
	resp, err := s.generator.GenerateContent(ctx, genReq)
	if err != nil {
		failure := Classify(err)
		s.metrics.RecordFailure(tmpl.ID, failure.Kind)
		s.logger.Error().Err(err).Str("kind", failure.Kind).Dur("elapsed", time.Since(start)).Msg("❌ [Transform] Gemini call failed")
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	image, mimeType, ok := FirstImage(resp)
	if !ok {
		text := resp.Text()
		s.metrics.RecordFailure(tmpl.ID, "no_image")
		s.logger.Error().
			Str("text", truncate(text, 200)).
			Strs("finish_reasons", resp.FinishReasons()).
			Msg("❌ [Transform] No image in response")
		return nil, &NoImageError{Text: text}
	}

	if format == "webp" && mimeType != utils.MIMEWebP {
		converted, err := utils.ConvertToWebP(image, mimeType, s.opts.WebPQuality)
		if err != nil {
			s.logger.Warn().Err(err).Msg("⚠️  [Transform] WebP conversion failed, returning original image")
		} else {
			image, mimeType = converted, utils.MIMEWebP
		}
	}

	s.metrics.RecordSuccess(tmpl.ID)
	s.logger.Info().
		Str("style", tmpl.ID).
		Str("mime", mimeType).
		Int("bytes", len(image)).
		Dur("elapsed", time.Since(start)).
		Msg("✅ [Transform] Portrait generated successfully")

	return &TransformResult{
		ImageBase64:   utils.ConvertImageToBase64(image),
		MIMEType:      mimeType,
		StyleID:       tmpl.ID,
		StyleFallback: !found,
	}, nil
}

// FirstImage - 후보 → 파트 순서로 처음 나오는 인라인 이미지
// MIME 은 반환 바이트를 스니핑해서 결정, JPG/PNG/WEBP 로 식별되지 않는 파트는 건너뜀
func FirstImage(resp *gemini.Response) ([]byte, string, bool) {
	if resp == nil {
		return nil, "", false
	}
	for _, c := range resp.Candidates {
		for _, p := range c.Parts {
			if !p.HasData() {
				continue
			}
			if mimeType, ok := imageMIME(p.Data); ok {
				return p.Data, mimeType, true
			}
		}
	}
	return nil, "", false
}

func imageMIME(data []byte) (string, bool) {
	sniffed := normalizeMIME(http.DetectContentType(data))
	return sniffed, allowedTypes[sniffed]
}
