// MODUL: encoder
// ZWECK: Zentrale Interfaces fuer Bild- und Text-Encoder
// INPUT: Dekodierte Bilder bzw. Hypothesen-Strings
// OUTPUT: Float32-Embeddings in gemeinsamem Vektorraum
// NEBENEFFEKTE: Keine (reine Typdefinitionen)
// ABHAENGIGKEITEN: image (Standard-Library)
// HINWEISE: Joint-Encoder implementieren beide Interfaces

package encoder

import (
	"errors"
	"image"
)

// ============================================================================
// Fehler-Definitionen
// ============================================================================

var (
	ErrUnknownModelType = errors.New("encoder: unknown model type")
	ErrModelNotFound    = errors.New("encoder: model file not found")
	ErrEncoderClosed    = errors.New("encoder: encoder already closed")
)

// ============================================================================
// Encoder-Interfaces
// ============================================================================

// ImageEncoder bildet ein Bild auf einen Embedding-Vektor ab.
type ImageEncoder interface {
	EncodeImage(img image.Image) ([]float32, error)
	Close() error
	Info() ModelInfo
}

// TextEncoder bildet Texte auf Embedding-Vektoren ab, einen pro Eingabe,
// in Eingabe-Reihenfolge.
type TextEncoder interface {
	EncodeTexts(texts []string) ([][]float32, error)
	Close() error
	Info() ModelInfo
}

// JointEncoder embeddet Bilder und Texte in denselben Vektorraum.
type JointEncoder interface {
	ImageEncoder
	TextEncoder
}

// ============================================================================
// ModelInfo - Metadaten eines geladenen Modells
// ============================================================================

// ModelInfo enthaelt Metadaten ueber ein geladenes Encoder-Modell.
type ModelInfo struct {
	Name         string // Modell-Name (z.B. "ViT-B/32")
	Type         string // Modell-Typ (z.B. "clip", "mclip")
	EmbeddingDim int    // Embedding-Dimension
	ImageSize    int    // Erwartete Bildgroesse (0 fuer reine Text-Encoder)
	ContextLen   int    // Maximale Token-Anzahl (0 fuer reine Bild-Encoder)
}
