package api

// VideoRequest asks the toolbox to fetch a video from a public URL.
type VideoRequest struct {
	URL     string `json:"url"`
	Quality string `json:"quality"`
}

// QRRequest asks the toolbox to render text as a QR code PNG.
// Size is the module (box) pixel size, Border the quiet-zone width in
// modules; both follow the upstream defaults when zero.
type QRRequest struct {
	Text            string `json:"text"`
	Size            int    `json:"size,omitempty"`
	Border          int    `json:"border,omitempty"`
	ErrorCorrection string `json:"error_correction,omitempty"`
}

// SpeechRequest asks the toolbox to synthesize spoken audio for text.
type SpeechRequest struct {
	Text       string `json:"text"`
	Language   string `json:"language"`
	Slow       bool   `json:"slow"`
	VoiceStyle string `json:"voice_style,omitempty"`
}

// CutoutRequest asks the toolbox to remove the background from an image.
// The file is uploaded as a multipart form part.
type CutoutRequest struct {
	Filename string
	MIME     string
	Data     []byte
}

// Payload is a binary artifact returned by a toolbox endpoint.
type Payload struct {
	Data     []byte
	MIME     string
	Filename string
}

// Size returns the payload length in bytes.
func (p *Payload) Size() int64 {
	if p == nil {
		return 0
	}
	return int64(len(p.Data))
}

// errorBody is the JSON shape the toolbox uses for failures.
type errorBody struct {
	Detail string `json:"detail"`
}
