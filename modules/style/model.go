package style

// StyleTemplate - 초상화 스타일 정의
type StyleTemplate struct {
	ID                 string `json:"id"`
	DisplayName        string `json:"displayName,omitempty"`
	PromptSuffix       string `json:"promptSuffix"`
	ReferenceImagePath string `json:"referenceImagePath,omitempty"`
	FallbackImagePath  string `json:"fallbackImagePath,omitempty"`
}

// ReferenceImage - 시작 시 미리 읽어 둔 스타일 참고 이미지
type ReferenceImage struct {
	Path     string
	MIMEType string
	Data     []byte
}

// StyleSummary - GET /api/styles 항목
type StyleSummary struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	HasReference bool   `json:"hasReference"`
	IsDefault    bool   `json:"isDefault"`
}

// StylesResponse - GET /api/styles 응답
type StylesResponse struct {
	OK             bool           `json:"ok"`
	DefaultStyleID string         `json:"defaultStyleId"`
	Styles         []StyleSummary `json:"styles"`
}
