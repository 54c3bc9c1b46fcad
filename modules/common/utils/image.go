package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"github.com/nfnt/resize"
)

// 지원하는 이미지 MIME 타입
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEWebP = "image/webp"
)

// ConvertImageToBase64 - 이미지 바이너리를 base64로 변환
func ConvertImageToBase64(imageData []byte) string {
	return base64.StdEncoding.EncodeToString(imageData)
}

// MIMETypeFromPath - 확장자로 MIME 타입 결정 (.png 외에는 jpeg 취급)
func MIMETypeFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return MIMEPNG
	case ".webp":
		return MIMEWebP
	default:
		return MIMEJPEG
	}
}

// DecodeImage - MIME 타입에 맞는 디코더로 이미지 디코딩
// JPEG 는 EXIF Orientation 을 픽셀에 반영 (재인코딩하면 EXIF 가 사라지므로)
func DecodeImage(data []byte, mimeType string) (image.Image, error) {
	r := bytes.NewReader(data)
	switch mimeType {
	case MIMEJPEG:
		return imaging.Decode(r, imaging.AutoOrientation(true))
	case MIMEPNG:
		return png.Decode(r)
	case MIMEWebP:
		return webp.Decode(r, &decoder.Options{})
	default:
		return nil, fmt.Errorf("unsupported image type: %s", mimeType)
	}
}

// EncodeImage - MIME 타입에 맞게 다시 인코딩
func EncodeImage(img image.Image, mimeType string, quality float32) ([]byte, error) {
	var buf bytes.Buffer
	switch mimeType {
	case MIMEJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: int(quality)}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case MIMEPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
	case MIMEWebP:
		options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
		if err != nil {
			return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
		}
		if err := webp.Encode(&buf, img, options); err != nil {
			return nil, fmt.Errorf("failed to encode WebP: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported image type: %s", mimeType)
	}
	return buf.Bytes(), nil
}

// ConvertToWebP - JPEG/PNG/WebP 바이너리를 WebP로 변환
func ConvertToWebP(data []byte, mimeType string, quality float32) ([]byte, error) {
	img, err := DecodeImage(data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", mimeType, err)
	}
	return EncodeImage(img, MIMEWebP, quality)
}

// ImageDimensions - 가로/세로 픽셀 크기
func ImageDimensions(data []byte, mimeType string) (int, int, error) {
	if mimeType != MIMEWebP {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return 0, 0, err
		}
		return cfg.Width, cfg.Height, nil
	}
	img, err := DecodeImage(data, mimeType)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

// FitWithin - 긴 변이 maxDim 을 넘으면 비율 유지하며 축소 후 같은 포맷으로 재인코딩
// 축소가 필요 없으면 원본 그대로 반환 (resized=false)
// 축소된 JPEG 는 회전이 픽셀에 적용된 상태로 저장됨
func FitWithin(data []byte, mimeType string, maxDim int) ([]byte, bool, error) {
	if maxDim <= 0 {
		return data, false, nil
	}

	w, h, err := ImageDimensions(data, mimeType)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read image size: %w", err)
	}
	if w <= maxDim && h <= maxDim {
		return data, false, nil
	}

	img, err := DecodeImage(data, mimeType)
	if err != nil {
		return nil, false, err
	}
	thumb := resize.Thumbnail(uint(maxDim), uint(maxDim), img, resize.Lanczos3)

	out, err := EncodeImage(thumb, mimeType, 90)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}
