package gemini

import (
	"context"
	"strings"
)

// Part - 요청/응답 공통 파트 (텍스트 또는 인라인 바이너리)
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// TextPart - 텍스트 파트
func TextPart(text string) Part {
	return Part{Text: text}
}

// BlobPart - 인라인 이미지 파트
func BlobPart(data []byte, mimeType string) Part {
	return Part{Data: data, MIMEType: mimeType}
}

// HasData - 인라인 바이트 포함 여부
func (p Part) HasData() bool {
	return len(p.Data) > 0
}

// Candidate - 응답 후보 하나
type Candidate struct {
	Parts        []Part
	FinishReason string
}

// Response - SDK 응답을 백엔드와 무관한 형태로 정규화한 결과
type Response struct {
	Candidates []Candidate
}

// Text - 모든 후보의 텍스트 파트를 이어 붙임
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var texts []string
	for _, c := range r.Candidates {
		for _, p := range c.Parts {
			if t := strings.TrimSpace(p.Text); t != "" {
				texts = append(texts, t)
			}
		}
	}
	return strings.Join(texts, "\n")
}

// FinishReasons - 후보별 종료 사유 (로그용)
func (r *Response) FinishReasons() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		if c.FinishReason != "" {
			out = append(out, c.FinishReason)
		}
	}
	return out
}

// Request - 단일 generateContent 호출
type Request struct {
	Model              string
	Parts              []Part
	ResponseModalities []string
	AspectRatio        string
	Temperature        *float32
}

// Generator - 이미지 생성 모델 호출 계약
type Generator interface {
	GenerateContent(ctx context.Context, req *Request) (*Response, error)
	Close() error
}
