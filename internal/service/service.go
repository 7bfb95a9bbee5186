package service

// ID identifies one of the four independent tools.
type ID string

const (
	Video  ID = "video"
	QR     ID = "qr"
	Speech ID = "tts"
	Cutout ID = "background-removal"
)

// All returns the service identifiers in display order.
func All() []ID {
	return []ID{Video, QR, Speech, Cutout}
}

// IDs returns the identifiers as plain strings, the form the session store
// and artifact registry key on.
func IDs() []string {
	all := All()
	out := make([]string, len(all))
	for i, id := range all {
		out[i] = string(id)
	}
	return out
}

// Title returns the human-readable name for a service.
func (id ID) Title() string {
	switch id {
	case Video:
		return "Video Download"
	case QR:
		return "QR Code"
	case Speech:
		return "Text to Speech"
	case Cutout:
		return "Background Removal"
	default:
		return string(id)
	}
}

// Phase is one step of the per-service lifecycle:
// Idle -> Validating -> (Idle | Loading) -> (Rendered | ErrorRendered).
// Validating never persists between events; it exists only inside Submit.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseRendered
	PhaseErrorRendered
)

// Input carries the raw form values for any service; Validate interprets
// the fields the service cares about and ignores the rest.
type Input struct {
	// Video
	URL     string
	Quality string

	// QR and speech share Text.
	Text            string
	Size            int
	Border          int
	ErrorCorrection string

	// Speech
	Language   string
	Slow       bool
	VoiceStyle string

	// Background removal
	FilePath string
}
