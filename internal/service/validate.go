package service

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// MaxQRTextLen caps QR payload text, in characters.
	MaxQRTextLen = 2000
	// MaxSpeechTextLen caps text-to-speech input, in characters.
	MaxSpeechTextLen = 5000
	// MaxUploadBytes caps the background-removal upload size.
	MaxUploadBytes = 10 << 20
)

// Languages the speech service accepts, in display order.
var SpeechLanguages = []string{"en", "es", "fr", "de", "it", "pt", "hi", "ja", "ko", "zh-CN", "ar", "ru"}

// Quality options forwarded to the video downloader.
var VideoQualities = []string{"best", "worst", "bestaudio"}

// ErrorCorrectionLevels the QR service accepts.
var ErrorCorrectionLevels = []string{"L", "M", "Q", "H"}

// VoiceStyles the speech service accepts; "default" maps to the server's
// own default and is omitted from the request.
var VoiceStyles = []string{"default", "formal", "casual"}

// ValidationError reports input rejected before any network call was made.
type ValidationError struct {
	Service ID
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Service, e.Reason)
}

func invalid(id ID, format string, args ...any) *ValidationError {
	return &ValidationError{Service: id, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks input against the service's rules. The server remains the
// authority; this exists to reject obviously invalid input before a single
// byte leaves the machine.
func Validate(id ID, in Input) *ValidationError {
	switch id {
	case Video:
		return validateVideo(in)
	case QR:
		return validateQR(in)
	case Speech:
		return validateSpeech(in)
	case Cutout:
		return validateCutout(in)
	default:
		return invalid(id, "unknown service")
	}
}

func validateVideo(in Input) *ValidationError {
	raw := strings.TrimSpace(in.URL)
	if raw == "" {
		return invalid(Video, "enter a video URL")
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return invalid(Video, "enter a valid absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid(Video, "only http and https URLs are supported")
	}
	return nil
}

func validateQR(in Input) *ValidationError {
	text := in.Text
	if strings.TrimSpace(text) == "" {
		return invalid(QR, "enter text to encode")
	}
	if n := utf8.RuneCountInString(text); n > MaxQRTextLen {
		return invalid(QR, "text is %d characters, the limit is %d", n, MaxQRTextLen)
	}
	if in.Size < 0 || in.Border < 0 {
		return invalid(QR, "size and border must not be negative")
	}
	if in.ErrorCorrection != "" && !contains(ErrorCorrectionLevels, in.ErrorCorrection) {
		return invalid(QR, "error correction must be one of L, M, Q, H")
	}
	return nil
}

func validateSpeech(in Input) *ValidationError {
	text := in.Text
	if strings.TrimSpace(text) == "" {
		return invalid(Speech, "enter text to speak")
	}
	if n := utf8.RuneCountInString(text); n > MaxSpeechTextLen {
		return invalid(Speech, "text is %d characters, the limit is %d", n, MaxSpeechTextLen)
	}
	if in.Language != "" && !contains(SpeechLanguages, in.Language) {
		return invalid(Speech, "unsupported language %q", in.Language)
	}
	if in.VoiceStyle != "" && !contains(VoiceStyles, in.VoiceStyle) {
		return invalid(Speech, "unsupported voice style %q", in.VoiceStyle)
	}
	return nil
}

func validateCutout(in Input) *ValidationError {
	path := strings.TrimSpace(in.FilePath)
	if path == "" {
		return invalid(Cutout, "choose an image file")
	}
	info, err := os.Stat(path)
	if err != nil {
		return invalid(Cutout, "cannot read %s", filepath.Base(path))
	}
	if info.IsDir() {
		return invalid(Cutout, "%s is a directory", filepath.Base(path))
	}
	if info.Size() > MaxUploadBytes {
		return invalid(Cutout, "file is %.1f MB, the limit is 10 MB", float64(info.Size())/(1<<20))
	}
	if mimeType := DetectImageMIME(path); !strings.HasPrefix(mimeType, "image/") {
		return invalid(Cutout, "only image files are allowed")
	}
	return nil
}

// DetectImageMIME determines a file's content type by extension first and by
// sniffing the first bytes when the extension is unknown.
func DetectImageMIME(path string) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		return byExt
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 512)
	n, err := f.Read(head)
	if n == 0 && err != nil {
		return ""
	}
	return http.DetectContentType(head[:n])
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
