package transform

import (
	"errors"
	"net/http"
	"strings"
)

// 실패 종류
const (
	KindQuota    = "quota"
	KindAuth     = "auth"
	KindTooLarge = "too_large"
	KindNetwork  = "network"
	KindGeneric  = "generic"
)

const (
	MessageQuota    = "The image service is busy right now (rate limit or quota reached). Please try again in a minute."
	MessageAuth     = "The image service rejected the server credentials. Please contact the site owner."
	MessageTooLarge = "The photo is too large for the image service. Please upload an image under 8MB."
	MessageNetwork  = "Could not reach the image service. Please check your connection and try again."
	MessageGeneric  = "Failed to generate the portrait. Please try again."

	MessageNoPhoto         = "No image uploaded."
	MessagePhotoTooLarge   = "Image is too large. Max 8MB."
	MessageUnsupportedType = "Only JPG/PNG/WEBP allowed"
	MessageInvalidFormat   = "Output format must be png or webp."
	MessageInvalidRequest  = "Invalid request."
	MessageNoImage         = "Model did not return an image."
	MessageNoImageDetails  = "No image data in response."
)

const maxDetailsLength = 300

// NoImageError - 모델 응답에 이미지가 없음
type NoImageError struct {
	Text string
}

func (e *NoImageError) Error() string {
	if e.Text == "" {
		return "model returned no image"
	}
	return "model returned no image: " + e.Text
}

// Failure - 업스트림 오류 분류 결과
type Failure struct {
	Kind    string
	Status  int
	Message string
}

type classifier struct {
	kind     string
	status   int
	message  string
	patterns []string
}

// 순서대로 검사
var classifiers = []classifier{
	{KindQuota, http.StatusTooManyRequests, MessageQuota, []string{"429", "quota", "rate limit", "resource_exhausted"}},
	{KindAuth, http.StatusBadGateway, MessageAuth, []string{"401", "403", "api key", "key", "permission"}},
	{KindTooLarge, http.StatusRequestEntityTooLarge, MessageTooLarge, []string{"413", "large"}},
	{KindNetwork, http.StatusServiceUnavailable, MessageNetwork, []string{"network", "timeout", "deadline exceeded", "connection", "no such host"}},
}

// Classify - 오류 메시지 문자열로 사용자용 실패 분류
func Classify(err error) Failure {
	if err == nil {
		return Failure{Kind: KindGeneric, Status: http.StatusInternalServerError, Message: MessageGeneric}
	}
	msg := strings.ToLower(err.Error())
	for _, c := range classifiers {
		for _, p := range c.patterns {
			if strings.Contains(msg, p) {
				return Failure{Kind: c.kind, Status: c.status, Message: c.message}
			}
		}
	}
	return Failure{Kind: KindGeneric, Status: http.StatusInternalServerError, Message: MessageGeneric}
}

// ErrorResponseFor - 오류를 HTTP 상태와 응답 본문으로 변환
// 검증 오류와 NoImageError 는 분류를 거치지 않음
func ErrorResponseFor(err error) (int, ErrorResponse) {
	var noImage *NoImageError
	switch {
	case errors.As(err, &noImage):
		details := noImage.Text
		if details == "" {
			details = MessageNoImageDetails
		}
		return http.StatusBadGateway, ErrorResponse{Error: MessageNoImage, Details: truncate(details, maxDetailsLength)}
	case errors.Is(err, ErrNoPhoto):
		return http.StatusBadRequest, ErrorResponse{Error: MessageNoPhoto}
	case errors.Is(err, ErrPhotoTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Error: MessagePhotoTooLarge}
	case errors.Is(err, ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, ErrorResponse{Error: MessageUnsupportedType}
	case errors.Is(err, ErrContentMismatch):
		return http.StatusUnsupportedMediaType, ErrorResponse{Error: MessageUnsupportedType, Details: truncate(err.Error(), maxDetailsLength)}
	case errors.Is(err, ErrInvalidFormat):
		return http.StatusBadRequest, ErrorResponse{Error: MessageInvalidFormat}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, ErrorResponse{Error: MessageInvalidRequest, Details: truncate(err.Error(), maxDetailsLength)}
	}

	f := Classify(err)
	return f.Status, ErrorResponse{Error: f.Message, Details: truncate(err.Error(), maxDetailsLength)}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
