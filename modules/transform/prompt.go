package transform

import (
	"pet-portrait-server/modules/common/gemini"
	"pet-portrait-server/modules/style"
)

// BasePrompt - 모든 스타일 공통 지시문
const BasePrompt = `
Task: Transform the provided dog photo into a historically-inspired portrait.

Keep identity: Preserve the dog's unique face shape, markings, fur color, and eye color EXACTLY as shown in the photo.

Quality: Ultra-detailed textures (fur, fabric, armor, ornaments), museum-quality finish, no artifacts, no text overlays.
Pose & composition: Camera at eye-level or slight 3/4 view; centered composition with appropriate background.
Lighting: Cinematic lighting with dramatic contrast and warm tones where appropriate.
Constraints: No humans. No extra limbs. Keep anatomical correctness for the dog. No watermarks. No frames.

VERY IMPORTANT:
- Use the first image (the dog's photo) as the SUBJECT to transform - preserve its exact appearance.
- Use the second image (style reference) ONLY for color palette, composition, and artistic treatment—do not copy its subject.
- Output a vertical portrait aspect ratio (4:5) suitable for printing (at least ~1024px on the short side).
`

// ReferenceCaption - 참고 이미지 앞에 붙는 안내 문구
const ReferenceCaption = "Style reference image (do NOT copy subject):"

// GenderHint - 성별 복장 힌트 (male / female 외에는 빈 문자열)
func GenderHint(gender string) string {
	switch NormalizeGender(gender) {
	case "male":
		return "\nAttire note: Use traditionally masculine styling in pose and garment details."
	case "female":
		return "\nAttire note: Use traditionally feminine styling in pose and garment details."
	default:
		return ""
	}
}

// BuildPrompt - 공통 지시문 + 스타일 문구 + 성별 힌트
func BuildPrompt(template style.StyleTemplate, gender string) string {
	return BasePrompt + template.PromptSuffix + GenderHint(gender)
}

// BuildParts - 프롬프트, 사용자 사진, (있으면) 참고 이미지 캡션과 참고 이미지 순서
func BuildParts(prompt string, photo []byte, mimeType string, ref *style.ReferenceImage) []gemini.Part {
	parts := []gemini.Part{
		gemini.TextPart(prompt),
		gemini.BlobPart(photo, mimeType),
	}
	if ref != nil && len(ref.Data) > 0 {
		parts = append(parts,
			gemini.TextPart(ReferenceCaption),
			gemini.BlobPart(ref.Data, ref.MIMEType),
		)
	}
	return parts
}
