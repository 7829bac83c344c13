// Package recognizer holds helpers shared by the speech-to-text backends.
//
// Concrete recognizers live in subpackages (openai, local) and implement
// provider.Recognizer; the failover subpackage chains them into the
// online→offline fallback protocol.
package recognizer

import (
	"fmt"
	"strings"

	"github.com/nZiben/ai-interviewer/internal/provider"
)

// ExtFromContentType maps an audio MIME type to a file extension for
// multipart uploads.
func ExtFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	case strings.Contains(ct, "m4a"):
		return ".m4a"
	default:
		return ".wav"
	}
}

// ClassifyStatus converts a non-200 transcription response into a
// provider.RecognitionError. Every HTTP-level failure — auth, quota,
// server error — is a service problem, not a speech problem, so all of
// them classify as unavailable and let the fallback chain advance.
func ClassifyStatus(providerName string, status int, body []byte) error {
	return provider.Unavailable(providerName,
		fmt.Errorf("transcription failed (status %d): %s", status, body))
}

// ClassifyTranscript converts a successful transcription response into a
// result. A 200 with an empty transcript means the service heard the audio
// and made nothing of it — unintelligible, terminal for the chain.
func ClassifyTranscript(providerName, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", provider.Unintelligible(providerName, fmt.Errorf("empty transcript"))
	}
	return text, nil
}
