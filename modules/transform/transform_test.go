package transform

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"pet-portrait-server/modules/common/gemini"
	"pet-portrait-server/modules/common/utils"
	"pet-portrait-server/modules/style"
)

// fakeGenerator - 요청을 기록하고 준비된 응답을 돌려줌
type fakeGenerator struct {
	mu    sync.Mutex
	calls []*gemini.Request
	resp  *gemini.Response
	err   error
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, req *gemini.Request) (*gemini.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.resp, f.err
}

func (f *fakeGenerator) Close() error { return nil }

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 90, G: 60, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func webpBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	data, err := utils.ConvertToWebP(pngBytes(t, w, h), utils.MIMEPNG, 90)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func imageResponse(data []byte) *gemini.Response {
	return &gemini.Response{Candidates: []gemini.Candidate{{
		Parts: []gemini.Part{
			gemini.TextPart("Here is your portrait."),
			gemini.BlobPart(data, "image/png"),
		},
		FinishReason: "STOP",
	}}}
}

func newTestCatalog(t *testing.T) *style.Catalog {
	t.Helper()
	c, err := style.NewCatalog(style.DefaultTemplates(), style.DefaultStyleID)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func newTestService(t *testing.T, gen gemini.Generator) (*Service, *Metrics) {
	t.Helper()
	metrics := NewMetrics()
	svc := NewService(newTestCatalog(t), gen, metrics, Options{
		Model:             "gemini-2.5-flash-image",
		AspectRatio:       "4:5",
		MaxInputDimension: 2048,
		OutputFormat:      "png",
	}, zerolog.Nop())
	return svc, metrics
}

func TestValidateUpload(t *testing.T) {
	photo := pngBytes(t, 4, 4)
	jpegHeader := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 32)...)
	webpPhoto := webpBytes(t, 4, 4)

	tests := []struct {
		name     string
		data     []byte
		declared string
		max      int64
		wantMIME string
		wantErr  error
	}{
		{name: "png ok", data: photo, declared: "image/png", max: 1 << 20, wantMIME: "image/png"},
		{name: "declared with params", data: photo, declared: "image/png; charset=binary", max: 1 << 20, wantMIME: "image/png"},
		{name: "jpeg alias", data: jpegHeader, declared: "image/jpg", max: 1 << 20, wantMIME: "image/jpeg"},
		{name: "webp ok", data: webpPhoto, declared: "image/webp", max: 1 << 20, wantMIME: "image/webp"},
		{name: "declared png but webp", data: webpPhoto, declared: "image/png", max: 1 << 20, wantErr: ErrContentMismatch},
		{name: "empty", data: nil, declared: "image/png", max: 1 << 20, wantErr: ErrNoPhoto},
		{name: "too large", data: photo, declared: "image/png", max: 10, wantErr: ErrPhotoTooLarge},
		{name: "gif declared", data: photo, declared: "image/gif", max: 1 << 20, wantErr: ErrUnsupportedType},
		{name: "text content", data: []byte("hello world"), declared: "image/png", max: 1 << 20, wantErr: ErrContentMismatch},
		{name: "declared jpeg but png", data: photo, declared: "image/jpeg", max: 1 << 20, wantErr: ErrContentMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateUpload(tc.data, tc.declared, tc.max)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.wantMIME {
				t.Fatalf("mime = %q, want %q", got, tc.wantMIME)
			}
		})
	}
}

func TestNormalizeFormat(t *testing.T) {
	tests := []struct {
		in, fallback, want string
		wantErr            bool
	}{
		{in: "", fallback: "png", want: "png"},
		{in: " WEBP ", fallback: "png", want: "webp"},
		{in: "png", fallback: "webp", want: "png"},
		{in: "gif", fallback: "png", wantErr: true},
	}
	for _, tc := range tests {
		got, err := NormalizeFormat(tc.in, tc.fallback)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("NormalizeFormat(%q) = (%q, %v), want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestGenderHint(t *testing.T) {
	tests := map[string]string{
		"male":    "masculine",
		" Female": "feminine",
		"":        "",
		"other":   "",
	}
	for gender, want := range tests {
		got := GenderHint(gender)
		if want == "" {
			if got != "" {
				t.Errorf("GenderHint(%q) = %q, want empty", gender, got)
			}
			continue
		}
		if !strings.HasPrefix(got, "\nAttire note:") || !strings.Contains(got, want) {
			t.Errorf("GenderHint(%q) = %q", gender, got)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	tmpl, _ := newTestCatalog(t).Lookup("roman-gladiator")
	prompt := BuildPrompt(tmpl, "female")

	if !strings.HasPrefix(prompt, BasePrompt) {
		t.Fatalf("prompt does not start with base prompt")
	}
	if !strings.Contains(prompt, "Roman gladiator warrior portrait") {
		t.Fatalf("prompt misses style text")
	}
	if !strings.HasSuffix(prompt, "feminine styling in pose and garment details.") {
		t.Fatalf("prompt misses gender hint: %q", prompt[len(prompt)-80:])
	}
}

func TestBuildParts(t *testing.T) {
	photo := []byte("photo")

	parts := BuildParts("prompt", photo, "image/png", nil)
	if len(parts) != 2 || parts[0].Text != "prompt" || parts[1].MIMEType != "image/png" {
		t.Fatalf("parts without reference = %+v", parts)
	}

	ref := &style.ReferenceImage{MIMEType: "image/jpeg", Data: []byte("ref")}
	parts = BuildParts("prompt", photo, "image/png", ref)
	if len(parts) != 4 {
		t.Fatalf("len = %d, want 4", len(parts))
	}
	if parts[2].Text != ReferenceCaption {
		t.Fatalf("caption = %q", parts[2].Text)
	}
	if parts[3].MIMEType != "image/jpeg" || string(parts[3].Data) != "ref" {
		t.Fatalf("reference part = %+v", parts[3])
	}

	if got := BuildParts("p", photo, "image/png", &style.ReferenceImage{}); len(got) != 2 {
		t.Fatalf("empty reference should be skipped, got %d parts", len(got))
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		msg        string
		wantKind   string
		wantStatus int
	}{
		{msg: "Error 429, Message: Resource has been exhausted", wantKind: KindQuota, wantStatus: http.StatusTooManyRequests},
		{msg: "RESOURCE_EXHAUSTED: quota exceeded", wantKind: KindQuota, wantStatus: http.StatusTooManyRequests},
		{msg: "Error 403: PERMISSION_DENIED", wantKind: KindAuth, wantStatus: http.StatusBadGateway},
		{msg: "API key not valid. Please pass a valid API key.", wantKind: KindAuth, wantStatus: http.StatusBadGateway},
		{msg: "Error 413: request entity too large", wantKind: KindTooLarge, wantStatus: http.StatusRequestEntityTooLarge},
		{msg: "context deadline exceeded", wantKind: KindNetwork, wantStatus: http.StatusServiceUnavailable},
		{msg: "dial tcp: lookup generativelanguage.googleapis.com: no such host", wantKind: KindNetwork, wantStatus: http.StatusServiceUnavailable},
		{msg: "something odd happened", wantKind: KindGeneric, wantStatus: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.msg, func(t *testing.T) {
			got := Classify(errors.New(tc.msg))
			if got.Kind != tc.wantKind || got.Status != tc.wantStatus || got.Message == "" {
				t.Fatalf("Classify() = %+v, want %s/%d", got, tc.wantKind, tc.wantStatus)
			}
		})
	}
	if got := Classify(nil); got.Kind != KindGeneric {
		t.Fatalf("Classify(nil) = %+v", got)
	}
}

func TestErrorResponseFor(t *testing.T) {
	long := strings.Repeat("x", 500)
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantDetails string
	}{
		{name: "no photo", err: ErrNoPhoto, wantStatus: 400, wantError: MessageNoPhoto},
		{name: "too large", err: ErrPhotoTooLarge, wantStatus: 413, wantError: MessagePhotoTooLarge},
		{name: "unsupported", err: ErrUnsupportedType, wantStatus: 415, wantError: MessageUnsupportedType},
		{name: "format", err: ErrInvalidFormat, wantStatus: 400, wantError: MessageInvalidFormat},
		{name: "no image with text", err: &NoImageError{Text: "I cannot do that"}, wantStatus: 502, wantError: MessageNoImage, wantDetails: "I cannot do that"},
		{name: "no image without text", err: &NoImageError{}, wantStatus: 502, wantError: MessageNoImage, wantDetails: MessageNoImageDetails},
		{name: "quota", err: errors.New("429 Too Many Requests"), wantStatus: 429, wantError: MessageQuota, wantDetails: "429 Too Many Requests"},
		{name: "details truncated", err: errors.New(long), wantStatus: 500, wantError: MessageGeneric, wantDetails: long[:300] + "..."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := ErrorResponseFor(tc.err)
			if status != tc.wantStatus || body.Error != tc.wantError {
				t.Fatalf("ErrorResponseFor() = %d %+v", status, body)
			}
			if tc.wantDetails != "" && body.Details != tc.wantDetails {
				t.Fatalf("details = %q, want %q", body.Details, tc.wantDetails)
			}
		})
	}
}

func TestFirstImage(t *testing.T) {
	photo := pngBytes(t, 2, 2)
	resp := &gemini.Response{Candidates: []gemini.Candidate{
		{Parts: []gemini.Part{gemini.TextPart("thinking")}},
		{Parts: []gemini.Part{gemini.BlobPart(nil, "image/png"), gemini.BlobPart(photo, "application/octet-stream")}},
	}}
	data, mime, ok := FirstImage(resp)
	if !ok || !bytes.Equal(data, photo) || mime != "image/png" {
		t.Fatalf("FirstImage() = %d bytes, %q, %v", len(data), mime, ok)
	}

	mixed := &gemini.Response{Candidates: []gemini.Candidate{{Parts: []gemini.Part{
		gemini.BlobPart([]byte(`{"safety":"blocked"}`), "image/png"),
		gemini.BlobPart(photo, "image/png"),
	}}}}
	if data, _, ok := FirstImage(mixed); !ok || !bytes.Equal(data, photo) {
		t.Fatalf("FirstImage() did not skip the non-image part")
	}

	notImage := &gemini.Response{Candidates: []gemini.Candidate{{Parts: []gemini.Part{
		gemini.BlobPart([]byte("GIF89a......"), "image/png"),
	}}}}
	if _, _, ok := FirstImage(notImage); ok {
		t.Fatalf("FirstImage() accepted a non JPG/PNG/WEBP payload")
	}

	if _, _, ok := FirstImage(&gemini.Response{}); ok {
		t.Fatalf("FirstImage(empty) ok = true")
	}
	if _, _, ok := FirstImage(nil); ok {
		t.Fatalf("FirstImage(nil) ok = true")
	}
}

func TestServiceTransform(t *testing.T) {
	out := pngBytes(t, 8, 10)
	gen := &fakeGenerator{resp: imageResponse(out)}
	svc, metrics := newTestService(t, gen)

	photo := pngBytes(t, 4, 4)
	result, err := svc.Transform(context.Background(), TransformRequest{
		Photo:    photo,
		MIMEType: "image/png",
		Gender:   "male",
		StyleID:  "egyptian-pharaoh",
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil || !bytes.Equal(decoded, out) {
		t.Fatalf("imageBase64 does not decode to the model output")
	}
	if result.MIMEType != "image/png" || result.StyleID != "egyptian-pharaoh" || result.StyleFallback {
		t.Fatalf("result = %+v", result)
	}

	if gen.callCount() != 1 {
		t.Fatalf("generator calls = %d, want exactly 1", gen.callCount())
	}
	req := gen.calls[0]
	if req.Model != "gemini-2.5-flash-image" || req.AspectRatio != "4:5" {
		t.Fatalf("request model/aspect = %q/%q", req.Model, req.AspectRatio)
	}
	if len(req.ResponseModalities) != 1 || req.ResponseModalities[0] != "IMAGE" {
		t.Fatalf("modalities = %v", req.ResponseModalities)
	}
	if len(req.Parts) != 2 {
		t.Fatalf("parts = %d, want 2 without reference", len(req.Parts))
	}
	if !strings.Contains(req.Parts[0].Text, "Ancient Egyptian Pharaoh") || !strings.Contains(req.Parts[0].Text, "masculine") {
		t.Fatalf("prompt = %q", req.Parts[0].Text)
	}
	if !bytes.Equal(req.Parts[1].Data, photo) {
		t.Fatalf("small photo should be sent unchanged")
	}

	snap := metrics.Snapshot()
	if snap.Total != 1 || snap.Succeeded != 1 || snap.ByStyle["egyptian-pharaoh"] != 1 {
		t.Fatalf("metrics = %+v", snap)
	}
}

func TestServiceTransformUnknownStyleFallsBack(t *testing.T) {
	gen := &fakeGenerator{resp: imageResponse(pngBytes(t, 2, 2))}
	svc, _ := newTestService(t, gen)

	result, err := svc.Transform(context.Background(), TransformRequest{
		Photo:    pngBytes(t, 4, 4),
		MIMEType: "image/png",
		StyleID:  "space-pirate",
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if result.StyleID != "duke-style" || !result.StyleFallback {
		t.Fatalf("result = %+v", result)
	}
	if !strings.Contains(gen.calls[0].Parts[0].Text, "Baroque royal portrait") {
		t.Fatalf("default style prompt not used")
	}
}

func TestServiceTransformDownscalesLargePhoto(t *testing.T) {
	gen := &fakeGenerator{resp: imageResponse(pngBytes(t, 2, 2))}
	metrics := NewMetrics()
	svc := NewService(newTestCatalog(t), gen, metrics, Options{Model: "m", MaxInputDimension: 16}, zerolog.Nop())

	if _, err := svc.Transform(context.Background(), TransformRequest{
		Photo:    pngBytes(t, 64, 32),
		MIMEType: "image/png",
	}); err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	sent := gen.calls[0].Parts[1].Data
	cfg, err := png.DecodeConfig(bytes.NewReader(sent))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 16 || cfg.Height != 8 {
		t.Fatalf("sent photo = %dx%d, want 16x8", cfg.Width, cfg.Height)
	}
}

func TestServiceTransformFailures(t *testing.T) {
	tests := []struct {
		name       string
		gen        *fakeGenerator
		wantStatus int
		wantKind   string
	}{
		{
			name:       "text only response",
			gen:        &fakeGenerator{resp: &gemini.Response{Candidates: []gemini.Candidate{{Parts: []gemini.Part{gemini.TextPart("I can't help with that.")}}}}},
			wantStatus: http.StatusBadGateway,
			wantKind:   "no_image",
		},
		{
			name:       "inline data is not an image",
			gen:        &fakeGenerator{resp: imageResponse([]byte("plain text pretending to be a png"))},
			wantStatus: http.StatusBadGateway,
			wantKind:   "no_image",
		},
		{
			name:       "quota error",
			gen:        &fakeGenerator{err: errors.New("Error 429, Status: RESOURCE_EXHAUSTED")},
			wantStatus: http.StatusTooManyRequests,
			wantKind:   KindQuota,
		},
		{
			name:       "network error",
			gen:        &fakeGenerator{err: errors.New("connection reset by peer")},
			wantStatus: http.StatusServiceUnavailable,
			wantKind:   KindNetwork,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, metrics := newTestService(t, tc.gen)
			_, err := svc.Transform(context.Background(), TransformRequest{
				Photo:    pngBytes(t, 4, 4),
				MIMEType: "image/png",
				StyleID:  "duke-style",
			})
			if err == nil {
				t.Fatalf("Transform() error = nil")
			}
			if status, _ := ErrorResponseFor(err); status != tc.wantStatus {
				t.Fatalf("status = %d, want %d (err %v)", status, tc.wantStatus, err)
			}
			if tc.gen.callCount() != 1 {
				t.Fatalf("generator calls = %d, want 1 (no retry)", tc.gen.callCount())
			}
			snap := metrics.Snapshot()
			if snap.Failed != 1 || snap.ByFailure[tc.wantKind] != 1 {
				t.Fatalf("metrics = %+v", snap)
			}
		})
	}
}

func TestServiceTransformRejectsBadFormat(t *testing.T) {
	gen := &fakeGenerator{resp: imageResponse(pngBytes(t, 2, 2))}
	svc, _ := newTestService(t, gen)
	_, err := svc.Transform(context.Background(), TransformRequest{
		Photo:    pngBytes(t, 4, 4),
		MIMEType: "image/png",
		Format:   "bmp",
	})
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("err = %v, want ErrInvalidFormat", err)
	}
	if gen.callCount() != 0 {
		t.Fatalf("generator called for invalid request")
	}
}

func TestServiceTransformWebPOutput(t *testing.T) {
	modelPNG := pngBytes(t, 8, 10)
	brokenPNG := []byte("\x89PNG\r\n\x1a\nnot really a png")

	tests := []struct {
		name          string
		defaultFormat string
		format        string
		modelOutput   []byte
		wantMIME      string
		wantOriginal  bool
	}{
		{name: "request asks for webp", defaultFormat: "png", format: "webp", modelOutput: modelPNG, wantMIME: "image/webp"},
		{name: "server default webp", defaultFormat: "webp", modelOutput: modelPNG, wantMIME: "image/webp"},
		{name: "request overrides webp default", defaultFormat: "webp", format: "png", modelOutput: modelPNG, wantMIME: "image/png", wantOriginal: true},
		{name: "conversion failure returns original", defaultFormat: "png", format: "webp", modelOutput: brokenPNG, wantMIME: "image/png", wantOriginal: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{resp: imageResponse(tc.modelOutput)}
			svc := NewService(newTestCatalog(t), gen, NewMetrics(), Options{
				Model:        "m",
				OutputFormat: tc.defaultFormat,
			}, zerolog.Nop())

			result, err := svc.Transform(context.Background(), TransformRequest{
				Photo:    pngBytes(t, 4, 4),
				MIMEType: "image/png",
				Format:   tc.format,
			})
			if err != nil {
				t.Fatalf("Transform() error = %v", err)
			}
			if result.MIMEType != tc.wantMIME {
				t.Fatalf("mime = %q, want %q", result.MIMEType, tc.wantMIME)
			}

			decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
			if err != nil {
				t.Fatal(err)
			}
			if tc.wantOriginal {
				if !bytes.Equal(decoded, tc.modelOutput) {
					t.Fatalf("expected the model output unchanged")
				}
				return
			}
			img, err := utils.DecodeImage(decoded, utils.MIMEWebP)
			if err != nil {
				t.Fatalf("result is not WebP: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 10 {
				t.Fatalf("webp size = %dx%d", b.Dx(), b.Dy())
			}
		})
	}
}

func TestServiceTransformDownscalesWebPUpload(t *testing.T) {
	gen := &fakeGenerator{resp: imageResponse(pngBytes(t, 2, 2))}
	svc := NewService(newTestCatalog(t), gen, NewMetrics(), Options{Model: "m", MaxInputDimension: 16}, zerolog.Nop())

	if _, err := svc.Transform(context.Background(), TransformRequest{
		Photo:    webpBytes(t, 64, 32),
		MIMEType: "image/webp",
	}); err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	sent := gen.calls[0].Parts[1]
	if sent.MIMEType != "image/webp" {
		t.Fatalf("sent mime = %q", sent.MIMEType)
	}
	w, h, err := utils.ImageDimensions(sent.Data, utils.MIMEWebP)
	if err != nil {
		t.Fatal(err)
	}
	if w != 16 || h != 8 {
		t.Fatalf("sent photo = %dx%d, want 16x8", w, h)
	}
}
