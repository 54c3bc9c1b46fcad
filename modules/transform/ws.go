package transform

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pet-portrait-server/modules/common/middleware"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 접근 제어는 CORS 미들웨어와 레이트 리밋이 담당
		return true
	},
}

// HandleWebSocket - GET /api/transform/ws
// 요청 메시지 1개 수신 → progress(received, generating) → result 또는 error 전송 후 종료
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("⚠️  [TransformWS] WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.logger.With().Str("request_id", middleware.RequestIDFromContext(r.Context())).Logger()

	// base64 팽창분 + JSON 필드 여유
	conn.SetReadLimit(h.maxUploadBytes/3*4 + 8 + formEnvelopeBytes)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

	var msg WSRequest
	if err := conn.ReadJSON(&msg); err != nil {
		log.Warn().Err(err).Msg("⚠️  [TransformWS] Failed to read request")
		if errors.Is(err, websocket.ErrReadLimit) {
			h.sendError(conn, log, fmt.Errorf("%w: websocket message too large", ErrPhotoTooLarge))
			return
		}
		h.sendError(conn, log, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		return
	}

	if !h.send(conn, log, WSMessage{Type: MessageTypeProgress, Stage: StageReceived}) {
		return
	}

	req, err := h.parseWSRequest(msg)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  [TransformWS] Invalid upload")
		h.sendError(conn, log, err)
		return
	}

	log.Info().
		Str("gender", req.Gender).
		Str("style", req.StyleID).
		Str("mime", req.MIMEType).
		Int("bytes", len(req.Photo)).
		Msg("📝 [TransformWS] Transform request")

	if !h.send(conn, log, WSMessage{Type: MessageTypeProgress, Stage: StageGenerating}) {
		return
	}

	result, err := h.service.Transform(r.Context(), *req)
	if err != nil {
		h.sendError(conn, log, err)
		return
	}

	if h.send(conn, log, WSMessage{
		Type:        MessageTypeResult,
		OK:          true,
		ImageBase64: result.ImageBase64,
		MIMEType:    result.MIMEType,
		StyleID:     result.StyleID,
	}) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
			time.Now().Add(wsWriteTimeout))
	}
}

func (h *Handler) parseWSRequest(msg WSRequest) (*TransformRequest, error) {
	encoded := strings.TrimSpace(msg.PhotoBase64)
	declared := msg.MIMEType

	// data:image/png;base64,... 형식 허용
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.Index(encoded, ","); i > 0 {
			meta := encoded[len("data:"):i]
			if declared == "" {
				declared = strings.TrimSuffix(meta, ";base64")
			}
			encoded = encoded[i+1:]
		}
	}
	if encoded == "" {
		return nil, ErrNoPhoto
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: photoBase64 is not valid base64", ErrInvalidRequest)
	}

	mimeType, err := ValidateUpload(data, declared, h.maxUploadBytes)
	if err != nil {
		return nil, err
	}

	format, err := NormalizeFormat(msg.Format, h.service.OutputFormat())
	if err != nil {
		return nil, err
	}

	return &TransformRequest{
		Photo:    data,
		MIMEType: mimeType,
		Gender:   msg.Gender,
		StyleID:  msg.StyleID,
		Format:   format,
	}, nil
}

func (h *Handler) send(conn *websocket.Conn, log zerolog.Logger, msg WSMessage) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		log.Warn().Err(err).Str("type", msg.Type).Msg("⚠️  [TransformWS] Write failed")
		return false
	}
	return true
}

func (h *Handler) sendError(conn *websocket.Conn, log zerolog.Logger, err error) {
	status, body := ErrorResponseFor(err)
	h.send(conn, log, WSMessage{
		Type:    MessageTypeError,
		Status:  status,
		Error:   body.Error,
		Details: body.Details,
	})
}
