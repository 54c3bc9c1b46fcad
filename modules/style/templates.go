package style

// DefaultStyleID - 알 수 없는 styleId 요청 시 사용
const DefaultStyleID = "duke-style"

// DefaultTemplates - 내장 스타일 4종
func DefaultTemplates() []StyleTemplate {
	return []StyleTemplate{
		{
			ID:          "egyptian-pharaoh",
			DisplayName: "Egyptian Pharaoh",
			PromptSuffix: `
Style: Ancient Egyptian Pharaoh portrait with divine royal regalia.
Attire & Props: Golden ceremonial headdress (nemes) with cobra insignia (uraeus), ornate broad collar (usekh) with precious stones and gold, golden arm bands, flowing white and gold robes, holding ceremonial ankh staff.
Background: Pyramid and sphinx silhouettes at sunset, golden desert sands, hieroglyphic decorations on walls.
Lighting: Warm golden sunlight, creating a divine, majestic atmosphere.`,
			ReferenceImagePath: "style/egyptian-pharaoh-reference.png",
			FallbackImagePath:  "style/egyptian-pharaoh-preview.jpg",
		},
		{
			ID:          "roman-gladiator",
			DisplayName: "Roman Gladiator",
			PromptSuffix: `
Style: Roman gladiator warrior portrait with arena champion aesthetics.
Attire & Props: Detailed bronze armor with ornate breastplate featuring eagle insignia, red leather pteruges (military skirt), crimson cape, gladius sword, decorated shield with Roman emblems.
Background: Roman Colosseum arena with sand floor, architectural columns, warm afternoon light.
Lighting: Warm golden sunlight with dramatic shadows, cinematic heroic lighting.`,
			ReferenceImagePath: "style/roman-gladiator-reference.png",
			FallbackImagePath:  "style/roman-gladiator-preview.jpg",
		},
		{
			ID:          "duke-style",
			DisplayName: "Duke Style",
			PromptSuffix: `
Style: Classic Late-Renaissance / Baroque royal portrait with luxurious noble elegance.
Attire & Props: Deep burgundy velvet robe with dense gold embroidery, white ermine collar, blue velvet mantle, jeweled pendant and chain, ornate gold crown with red velvet cap, golden scepter.
Background: Palace interior with rich tapestries, carved wooden throne, warm palatial setting.
Lighting: Warm Rembrandt-style key light with gentle falloff, soft shadows.`,
			ReferenceImagePath: "style/duke-style-reference.jpg",
			FallbackImagePath:  "style/duke-style-preview.jpg",
		},
		{
			ID:          "renaissance-noble",
			DisplayName: "Renaissance Noble",
			PromptSuffix: `
Style: Italian Renaissance noble scholar portrait in the style of Leonardo da Vinci or Raphael.
Attire & Props: Rich silk doublet in deep emerald or burgundy, ornate gold chain of office, leather gloves, scholarly accessories.
Background: Renaissance study with leather-bound books, astronomical instruments, rolled parchments, classical architecture.
Lighting: Soft window light creating gentle chiaroscuro effect, warm and contemplative atmosphere.`,
			ReferenceImagePath: "style/renaissance-noble-reference.png",
			FallbackImagePath:  "style/renaissance-noble-preview.jpg",
		},
	}
}
