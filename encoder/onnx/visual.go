//go:build cgo

// MODUL: onnx/visual
// ZWECK: Reiner Bild-Encoder (Visual-Turm) fuer das multilinguale Paar
// INPUT: Snapshot-Verzeichnis mit Visual ONNX-Export
// OUTPUT: Bild-Embeddings
// NEBENEFFEKTE: Laedt eine ONNX Session
// ABHAENGIGKEITEN: session.go, imaging
// HINWEISE: Text-Seite kommt beim Paar vom multilingualen Encoder

package onnx

import (
	"fmt"
	"image"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/7blacky7/zeroshot/encoder"
	"github.com/7blacky7/zeroshot/encoder/backend"
	"github.com/7blacky7/zeroshot/imaging"
)

// VisualEncoder implementiert encoder.ImageEncoder mit einem einzelnen
// CLIP Visual-Turm.
type VisualEncoder struct {
	session *Session
	info    encoder.ModelInfo
	closed  bool
	mu      sync.RWMutex
}

// NewVisualEncoder laedt den Visual-Turm aus einem Snapshot-Verzeichnis.
func NewVisualEncoder(dir string, opts ClipOptions, loadOpts encoder.LoadOptions) (*VisualEncoder, error) {
	visualPath, err := locateVisual(dir)
	if err != nil {
		return nil, err
	}

	if opts.ImageSize == 0 {
		opts.ImageSize = DefaultImageSize
	}
	if opts.EmbeddingDim == 0 {
		opts.EmbeddingDim = DefaultEmbeddingDim
	}
	if opts.InputName == "" {
		opts.InputName = DefaultInputName
	}
	if opts.OutputName == "" {
		opts.OutputName = DefaultOutputName
	}

	session, err := CreateSession(visualPath, SessionOptions{
		InputName:   opts.InputName,
		OutputName:  opts.OutputName,
		NumThreads:  loadOpts.Threads,
		UseGPU:      loadOpts.Device == backend.BackendCUDA,
		GPUDeviceID: loadOpts.MainGPU,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: visual: %v", ErrSessionCreate, err)
	}

	if dim := session.OutputDim(); dim > 0 {
		opts.EmbeddingDim = dim
	}

	return &VisualEncoder{
		session: session,
		info: encoder.ModelInfo{
			Name:         opts.Name,
			Type:         "clip-visual-onnx",
			EmbeddingDim: opts.EmbeddingDim,
			ImageSize:    opts.ImageSize,
		},
	}, nil
}

// locateVisual sucht den Visual-Export im Snapshot.
func locateVisual(dir string) (string, error) {
	var visual string
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		name := d.Name()
		if strings.HasSuffix(name, ".onnx") && strings.Contains(name, "visual") {
			visual = path
		}
		return nil
	})
	if walkErr != nil {
		return "", fmt.Errorf("%w: %v", ErrModelLoad, walkErr)
	}
	if visual == "" {
		return "", fmt.Errorf("%w: in %s", ErrMissingModel, dir)
	}
	return visual, nil
}

// EncodeImage bildet ein Bild auf einen Embedding-Vektor ab.
func (e *VisualEncoder) EncodeImage(img image.Image) ([]float32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, encoder.ErrEncoderClosed
	}

	size := e.info.ImageSize
	input := imaging.PrepareForEncoder(imaging.FromImage(img), size)
	shape := []int64{1, 3, int64(size), int64(size)}

	result, err := e.session.RunFloat(input, shape, e.info.EmbeddingDim)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	return result, nil
}

// Close gibt die Session frei.
func (e *VisualEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	e.closed = true
	return nil
}

// Info gibt die Modell-Metadaten zurueck.
func (e *VisualEncoder) Info() encoder.ModelInfo {
	return e.info
}
