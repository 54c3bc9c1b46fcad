package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"cloud.google.com/go/auth/credentials"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// 백엔드 이름 (config.GeminiBackend 값과 동일)
const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
	BackendLegacy = "legacy"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Options - Generator 생성 옵션
type Options struct {
	Backend         string
	APIKey          string
	Project         string
	Location        string
	CredentialsJSON string
	CredentialsPath string
	Logger          zerolog.Logger
}

// NewGenerator - 설정된 백엔드에 맞는 Generator 생성
func NewGenerator(ctx context.Context, opts Options) (Generator, error) {
	switch opts.Backend {
	case "", BackendGemini, BackendVertex:
		return newGenaiGenerator(ctx, opts)
	case BackendLegacy:
		return newLegacyGenerator(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported gemini backend: %s", opts.Backend)
	}
}

// genaiGenerator - google.golang.org/genai 기반 (Gemini API / Vertex AI)
type genaiGenerator struct {
	client *genai.Client
	logger zerolog.Logger
}

func newGenaiGenerator(ctx context.Context, opts Options) (*genaiGenerator, error) {
	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}

	if opts.Backend == BackendVertex {
		cc = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  opts.Project,
			Location: opts.Location,
		}
		credsJSON, err := loadCredentialsJSON(opts)
		if err != nil {
			return nil, err
		}
		if credsJSON != nil {
			creds, err := credentials.DetectDefault(&credentials.DetectOptions{
				Scopes:          []string{cloudPlatformScope},
				CredentialsJSON: credsJSON,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to load vertex credentials: %w", err)
			}
			cc.Credentials = creds
		} else {
			opts.Logger.Warn().Msg("⚠️  [Gemini] No explicit Vertex credentials found, using Application Default Credentials")
		}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	opts.Logger.Info().Str("backend", backendName(opts.Backend)).Msg("✅ [Gemini] Client initialized")
	return &genaiGenerator{client: client, logger: opts.Logger}, nil
}

// loadCredentialsJSON - VERTEXAI_CREDENTIALS_JSON 우선, 없으면 VERTEXAI_CREDENTIALS_PATH
func loadCredentialsJSON(opts Options) ([]byte, error) {
	var data []byte
	switch {
	case opts.CredentialsJSON != "":
		data = []byte(opts.CredentialsJSON)
	case opts.CredentialsPath != "":
		raw, err := os.ReadFile(opts.CredentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		data = raw
	default:
		return nil, nil
	}

	var probe map[string]any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON credentials: %w", err)
	}
	return data, nil
}

func (g *genaiGenerator) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	content := &genai.Content{
		Role:  "user",
		Parts: toGenaiParts(req.Parts),
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: req.ResponseModalities,
		Temperature:        req.Temperature,
	}
	if req.AspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: req.AspectRatio}
	}

	g.logger.Debug().
		Str("model", req.Model).
		Int("parts", len(content.Parts)).
		Str("aspect_ratio", req.AspectRatio).
		Msg("📤 [Gemini] Sending generateContent request")

	result, err := g.client.Models.GenerateContent(ctx, req.Model, []*genai.Content{content}, cfg)
	if err != nil {
		return nil, err
	}
	return fromGenaiResponse(result), nil
}

// Close - genai.Client 는 해제할 리소스가 없음
func (g *genaiGenerator) Close() error {
	return nil
}

func toGenaiParts(parts []Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.HasData() {
			out = append(out, genai.NewPartFromBytes(p.Data, p.MIMEType))
			continue
		}
		out = append(out, genai.NewPartFromText(p.Text))
	}
	return out
}

func fromGenaiResponse(result *genai.GenerateContentResponse) *Response {
	resp := &Response{}
	if result == nil {
		return resp
	}
	for _, candidate := range result.Candidates {
		if candidate == nil {
			continue
		}
		c := Candidate{FinishReason: string(candidate.FinishReason)}
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part == nil {
					continue
				}
				if part.InlineData != nil {
					c.Parts = append(c.Parts, Part{
						MIMEType: part.InlineData.MIMEType,
						Data:     part.InlineData.Data,
					})
					continue
				}
				c.Parts = append(c.Parts, Part{Text: part.Text})
			}
		}
		resp.Candidates = append(resp.Candidates, c)
	}
	return resp
}

func backendName(backend string) string {
	if backend == "" {
		return BackendGemini
	}
	return backend
}
