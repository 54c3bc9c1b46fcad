package transform

// TransformRequest - 변환 요청 (multipart / websocket 공통)
type TransformRequest struct {
	Photo    []byte
	MIMEType string // 검증 후 실제 콘텐츠 기준 MIME
	Gender   string
	StyleID  string
	Format   string // "png" | "webp", 비어 있으면 서버 기본값
}

// TransformResult - 변환 결과
type TransformResult struct {
	ImageBase64   string
	MIMEType      string
	StyleID       string
	StyleFallback bool
}

// TransformResponse - POST /api/transform 성공 응답
type TransformResponse struct {
	OK          bool   `json:"ok"`
	ImageBase64 string `json:"imageBase64"`
	MIMEType    string `json:"mimeType"`
	StyleID     string `json:"styleId"`
}

// ErrorResponse - 실패 응답
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WebSocket 메시지 타입
const (
	MessageTypeProgress = "progress"
	MessageTypeResult   = "result"
	MessageTypeError    = "error"

	StageReceived   = "received"
	StageGenerating = "generating"
)

// WSRequest - 클라이언트가 보내는 단일 요청 메시지
type WSRequest struct {
	PhotoBase64 string `json:"photoBase64"`
	MIMEType    string `json:"mimeType"`
	Gender      string `json:"gender"`
	StyleID     string `json:"styleId"`
	Format      string `json:"format"`
}

// WSMessage - 서버가 보내는 메시지
type WSMessage struct {
	Type        string `json:"type"`
	Stage       string `json:"stage,omitempty"`
	OK          bool   `json:"ok,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
	MIMEType    string `json:"mimeType,omitempty"`
	StyleID     string `json:"styleId,omitempty"`
	Status      int    `json:"status,omitempty"`
	Error       string `json:"error,omitempty"`
	Details     string `json:"details,omitempty"`
}
