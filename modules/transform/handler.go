package transform

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"pet-portrait-server/modules/common/middleware"
)

// multipart 필드/경계 등 폼 오버헤드 여유분
const formEnvelopeBytes = 1 << 20

type Handler struct {
	service        *Service
	maxUploadBytes int64
	logger         zerolog.Logger
}

func NewHandler(service *Service, maxUploadBytes int64, logger zerolog.Logger) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes - 변환 라우트 등록 (mw 는 레이트 리밋 등 변환 전용 미들웨어)
func (h *Handler) RegisterRoutes(r *mux.Router, mw ...func(http.Handler) http.Handler) {
	r.Handle("/api/transform", chain(http.HandlerFunc(h.HandleTransform), mw)).Methods("POST", "OPTIONS")
	r.Handle("/api/transform/ws", chain(http.HandlerFunc(h.HandleWebSocket), mw)).Methods("GET")
}

func chain(h http.Handler, mw []func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// HandleTransform - POST /api/transform (multipart: photo, gender, styleId, format)
func (h *Handler) HandleTransform(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	log := h.logger.With().Str("request_id", middleware.RequestIDFromContext(r.Context())).Logger()

	req, err := h.parseMultipart(w, r)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  [Transform] Invalid upload")
		h.writeError(w, err)
		return
	}

	log.Info().
		Str("gender", req.Gender).
		Str("style", req.StyleID).
		Str("mime", req.MIMEType).
		Int("bytes", len(req.Photo)).
		Msg("📝 [Transform] Transform request")

	result, err := h.service.Transform(r.Context(), *req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TransformResponse{
		OK:          true,
		ImageBase64: result.ImageBase64,
		MIMEType:    result.MIMEType,
		StyleID:     result.StyleID,
	})
}

func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) (*TransformRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+formEnvelopeBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes + formEnvelopeBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request body over %d bytes", ErrPhotoTooLarge, tooLarge.Limit)
		}
		if errors.Is(err, multipart.ErrMessageTooLarge) {
			return nil, fmt.Errorf("%w: %v", ErrPhotoTooLarge, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrNoPhoto, err)
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		return nil, ErrNoPhoto
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrPhotoTooLarge, header.Size)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read photo: %v", ErrInvalidRequest, err)
	}

	mimeType, err := ValidateUpload(data, header.Header.Get("Content-Type"), h.maxUploadBytes)
	if err != nil {
		return nil, err
	}

	format, err := NormalizeFormat(r.FormValue("format"), h.service.OutputFormat())
	if err != nil {
		return nil, err
	}

	return &TransformRequest{
		Photo:    data,
		MIMEType: mimeType,
		Gender:   r.FormValue("gender"),
		StyleID:  r.FormValue("styleId"),
		Format:   format,
	}, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status, body := ErrorResponseFor(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
