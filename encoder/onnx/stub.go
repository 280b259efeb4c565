//go:build !cgo

// MODUL: onnx/stub
// ZWECK: Stub-Implementierung wenn CGO nicht verfuegbar ist
// HINWEISE: Gibt Fehler zurueck bei allen Operationen

package onnx

import (
	"errors"
	"image"

	"github.com/7blacky7/zeroshot/encoder"
)

// ErrCGORequired wird zurueckgegeben wenn CGO nicht verfuegbar ist
var ErrCGORequired = errors.New("onnx: CGO required but not available")

// ClipOptions Stub
type ClipOptions struct {
	Name         string
	ImageSize    int
	EmbeddingDim int
	InputName    string
	OutputName   string
}

// ClipEncoder Stub
type ClipEncoder struct{}

// NewClipEncoder Stub - gibt immer Fehler zurueck
func NewClipEncoder(dir string, opts ClipOptions, loadOpts encoder.LoadOptions) (*ClipEncoder, error) {
	return nil, ErrCGORequired
}

func (e *ClipEncoder) EncodeImage(img image.Image) ([]float32, error)  { return nil, ErrCGORequired }
func (e *ClipEncoder) EncodeTexts(texts []string) ([][]float32, error) { return nil, ErrCGORequired }
func (e *ClipEncoder) Close() error                                    { return nil }
func (e *ClipEncoder) Info() encoder.ModelInfo                         { return encoder.ModelInfo{} }

// VisualEncoder Stub
type VisualEncoder struct{}

// NewVisualEncoder Stub - gibt immer Fehler zurueck
func NewVisualEncoder(dir string, opts ClipOptions, loadOpts encoder.LoadOptions) (*VisualEncoder, error) {
	return nil, ErrCGORequired
}

func (e *VisualEncoder) EncodeImage(img image.Image) ([]float32, error) { return nil, ErrCGORequired }
func (e *VisualEncoder) Close() error                                   { return nil }
func (e *VisualEncoder) Info() encoder.ModelInfo                        { return encoder.ModelInfo{} }

// MClipTextEncoder Stub
type MClipTextEncoder struct{}

// NewMClipTextEncoder Stub - gibt immer Fehler zurueck
func NewMClipTextEncoder(dir string, loadOpts encoder.LoadOptions) (*MClipTextEncoder, error) {
	return nil, ErrCGORequired
}

func (e *MClipTextEncoder) EncodeTexts(texts []string) ([][]float32, error) {
	return nil, ErrCGORequired
}
func (e *MClipTextEncoder) Close() error            { return nil }
func (e *MClipTextEncoder) Info() encoder.ModelInfo { return encoder.ModelInfo{} }

func init() {
	encoder.DefaultRegistry.RegisterJoint("clip-onnx",
		func(modelPath string, opts encoder.LoadOptions) (encoder.JointEncoder, error) {
			return nil, ErrCGORequired
		})

	encoder.DefaultRegistry.RegisterImage("clip-visual-onnx",
		func(modelPath string, opts encoder.LoadOptions) (encoder.ImageEncoder, error) {
			return nil, ErrCGORequired
		})

	encoder.DefaultRegistry.RegisterText("mclip-onnx",
		func(modelPath string, opts encoder.LoadOptions) (encoder.TextEncoder, error) {
			return nil, ErrCGORequired
		})
}
