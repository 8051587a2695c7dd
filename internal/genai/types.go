package genai

// Wire types for the generation API (Gemini-compatible REST shape).

// Part is a single piece of content: either text or inline binary data.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries a base64-encoded image and its MIME type.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Content is an ordered list of parts.
type Content struct {
	Parts []Part `json:"parts"`
}

// Tool enables auxiliary capabilities on a request. Only search grounding is
// used here.
type Tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

// GenerateRequest is the full request payload. User content and the system
// instruction are always kept separate.
type GenerateRequest struct {
	Contents          []Content `json:"contents"`
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
	Tools             []Tool    `json:"tools,omitempty"`
}

// GenerateResponse mirrors the subset of the response the application reads.
type GenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// FallbackText is returned when a response carries no usable text. The
// frontend displays it verbatim.
const FallbackText = "No se pudo obtener respuesta de la IA."

// Text extracts the generated text at candidates[0].content.parts[0].text.
// A missing or empty path yields FallbackText, never a panic.
func (r *GenerateResponse) Text() string {
	if len(r.Candidates) == 0 {
		return FallbackText
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return FallbackText
	}
	return parts[0].Text
}
