package gemini

import (
	"context"
	"fmt"

	legacy "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// legacyGenerator - generative-ai-go SDK 기반
// aspect ratio / response modality 설정은 지원하지 않음
type legacyGenerator struct {
	client *legacy.Client
	opts   Options
}

func newLegacyGenerator(ctx context.Context, opts Options) (*legacyGenerator, error) {
	client, err := legacy.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create generative-ai client: %w", err)
	}
	opts.Logger.Info().Str("backend", BackendLegacy).Msg("✅ [Gemini] Client initialized")
	return &legacyGenerator{client: client, opts: opts}, nil
}

func (g *legacyGenerator) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	model := g.client.GenerativeModel(req.Model)
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}
	if req.AspectRatio != "" {
		g.opts.Logger.Debug().Str("aspect_ratio", req.AspectRatio).Msg("ℹ️  [Gemini] aspect ratio ignored by legacy backend")
	}

	result, err := model.GenerateContent(ctx, toLegacyParts(req.Parts)...)
	if err != nil {
		return nil, err
	}
	return fromLegacyResponse(result), nil
}

func (g *legacyGenerator) Close() error {
	return g.client.Close()
}

func toLegacyParts(parts []Part) []legacy.Part {
	out := make([]legacy.Part, 0, len(parts))
	for _, p := range parts {
		if p.HasData() {
			out = append(out, legacy.Blob{MIMEType: p.MIMEType, Data: p.Data})
			continue
		}
		out = append(out, legacy.Text(p.Text))
	}
	return out
}

func fromLegacyResponse(result *legacy.GenerateContentResponse) *Response {
	resp := &Response{}
	if result == nil {
		return resp
	}
	for _, cand := range result.Candidates {
		if cand == nil {
			continue
		}
		c := Candidate{FinishReason: cand.FinishReason.String()}
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				switch v := part.(type) {
				case legacy.Text:
					c.Parts = append(c.Parts, Part{Text: string(v)})
				case legacy.Blob:
					c.Parts = append(c.Parts, Part{MIMEType: v.MIMEType, Data: v.Data})
				}
			}
		}
		resp.Candidates = append(resp.Candidates, c)
	}
	return resp
}
