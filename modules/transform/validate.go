package transform

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pet-portrait-server/modules/common/utils"
)

var (
	ErrNoPhoto         = errors.New("no image uploaded")
	ErrPhotoTooLarge   = errors.New("photo exceeds the upload limit")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrContentMismatch = errors.New("image content does not match an allowed type")
	ErrInvalidFormat   = errors.New("unsupported output format")
	ErrInvalidRequest  = errors.New("invalid request")
)

var allowedTypes = map[string]bool{
	utils.MIMEJPEG: true,
	utils.MIMEPNG:  true,
	utils.MIMEWebP: true,
}

// ValidateUpload - 업로드 사진 검증 후 실제 콘텐츠 MIME 반환
func ValidateUpload(data []byte, declaredMIME string, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", ErrNoPhoto
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrPhotoTooLarge, len(data))
	}

	declared := normalizeMIME(declaredMIME)
	if !allowedTypes[declared] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, declaredMIME)
	}

	sniffed := normalizeMIME(http.DetectContentType(data))
	if !allowedTypes[sniffed] {
		return "", fmt.Errorf("%w: detected %s", ErrContentMismatch, sniffed)
	}
	if sniffed != declared {
		return "", fmt.Errorf("%w: declared %s, detected %s", ErrContentMismatch, declared, sniffed)
	}
	return sniffed, nil
}

// NormalizeGender - male / female 외에는 빈 문자열
func NormalizeGender(gender string) string {
	switch g := strings.ToLower(strings.TrimSpace(gender)); g {
	case "male", "female":
		return g
	default:
		return ""
	}
}

// NormalizeFormat - 출력 포맷 검증 (비어 있으면 기본값)
func NormalizeFormat(format, fallback string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		return fallback, nil
	}
	switch f {
	case "png", "webp":
		return f, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}
}

// normalizeMIME - 파라미터 제거, 소문자, image/jpg 별칭 처리
func normalizeMIME(mimeType string) string {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(m, ";"); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	if m == "image/jpg" || m == "image/pjpeg" {
		return utils.MIMEJPEG
	}
	return m
}
