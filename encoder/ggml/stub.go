//go:build !ggml || !cgo

// MODUL: ggml/stub
// ZWECK: Stub-Implementierung ohne "ggml" Build-Tag bzw. ohne CGO
// HINWEISE: Gibt Fehler zurueck bei allen Operationen

package ggml

import (
	"errors"
	"image"

	"github.com/7blacky7/zeroshot/encoder"
)

// ErrGGMLDisabled wird zurueckgegeben wenn der Build ohne ggml-Tag lief.
var ErrGGMLDisabled = errors.New("ggml: built without ggml support")

// GGMLEncoder Stub
type GGMLEncoder struct{}

// NewGGMLEncoder Stub - gibt immer Fehler zurueck
func NewGGMLEncoder(modelPath string, opts encoder.LoadOptions) (*GGMLEncoder, error) {
	return nil, ErrGGMLDisabled
}

func (e *GGMLEncoder) EncodeImage(img image.Image) ([]float32, error)  { return nil, ErrGGMLDisabled }
func (e *GGMLEncoder) EncodeTexts(texts []string) ([][]float32, error) { return nil, ErrGGMLDisabled }
func (e *GGMLEncoder) Close() error                                    { return nil }
func (e *GGMLEncoder) Info() encoder.ModelInfo                         { return encoder.ModelInfo{} }

func init() {
	encoder.DefaultRegistry.RegisterJoint("clip-gguf",
		func(modelPath string, opts encoder.LoadOptions) (encoder.JointEncoder, error) {
			return nil, ErrGGMLDisabled
		})
}
