// MODUL: formats
// ZWECK: Bildformat-Erkennung anhand von Magic-Bytes
// INPUT: Rohe Bild-Bytes
// OUTPUT: Format, Fehler bei unbekanntem Format
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: keine (nur Standardbibliothek)
// HINWEISE: JPEG/PNG/WebP werden unterstuetzt, alles andere ist unbekannt

package imaging

import (
	"errors"
)

// Format repraesentiert ein unterstuetztes Bildformat
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatWebP    Format = "webp"
	FormatUnknown Format = "unknown"
)

// Magic-Byte-Signaturen
var (
	magicJPEG = []byte{0xFF, 0xD8, 0xFF}
	magicPNG  = []byte{0x89, 0x50, 0x4E, 0x47}
	magicRIFF = []byte{0x52, 0x49, 0x46, 0x46}
)

// ErrUnknownFormat wird zurueckgegeben wenn das Format nicht erkannt wurde
var ErrUnknownFormat = errors.New("imaging: unknown image format")

// DetectFormat erkennt das Bildformat anhand der ersten Bytes
func DetectFormat(data []byte) Format {
	switch {
	case hasPrefix(data, magicJPEG):
		return FormatJPEG
	case hasPrefix(data, magicPNG):
		return FormatPNG
	case hasPrefix(data, magicRIFF) && isWebP(data):
		return FormatWebP
	default:
		return FormatUnknown
	}
}

// ValidateFormat prueft ob ein Format dekodierbar ist
func ValidateFormat(f Format) error {
	if f == FormatUnknown {
		return ErrUnknownFormat
	}
	return nil
}

// MimeType gibt den MIME-Type fuer ein Format zurueck
func (f Format) MimeType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

func (f Format) String() string {
	return string(f)
}

func hasPrefix(data, magic []byte) bool {
	if len(data) < len(magic) {
		return false
	}
	for i, b := range magic {
		if data[i] != b {
			return false
		}
	}
	return true
}

// isWebP prueft auf den "WEBP" Marker nach dem RIFF-Header
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		data[8] == 'W' && data[9] == 'E' && data[10] == 'B' && data[11] == 'P'
}
