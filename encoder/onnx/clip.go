//go:build cgo

// MODUL: onnx/clip
// ZWECK: Gemeinsamer CLIP Bild/Text-Encoder auf ONNX Runtime Basis
// INPUT: Snapshot-Verzeichnis mit Visual/Textual ONNX-Export und Tokenizer
// OUTPUT: Embeddings im gemeinsamen Vektorraum
// NEBENEFFEKTE: Laedt zwei ONNX Sessions, alloziert GPU/CPU Speicher
// ABHAENGIGKEITEN: session.go, imaging, tokenizer
// HINWEISE: Thread-sicher, Close() MUSS aufgerufen werden

package onnx

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/7blacky7/zeroshot/encoder"
	"github.com/7blacky7/zeroshot/encoder/backend"
	"github.com/7blacky7/zeroshot/imaging"
	"github.com/7blacky7/zeroshot/tokenizer"
)

// ============================================================================
// Konstanten
// ============================================================================

const (
	// DefaultImageSize ist die Fallback-Bildgroesse wenn nicht konfiguriert
	DefaultImageSize = 224

	// DefaultEmbeddingDim ist die Fallback-Dimension (ViT-B/32)
	DefaultEmbeddingDim = 512

	// DefaultInputName / DefaultOutputName der mlunar/clip-variants Exporte
	DefaultInputName  = "input"
	DefaultOutputName = "output"
)

// ============================================================================
// Fehler-Definitionen
// ============================================================================

var (
	ErrModelLoad     = errors.New("onnx: model load failed")
	ErrSessionCreate = errors.New("onnx: session create failed")
	ErrInference     = errors.New("onnx: inference failed")
	ErrMissingModel  = errors.New("onnx: visual or textual model missing")
)

// ============================================================================
// ClipEncoder - Gemeinsamer Bild/Text-Encoder
// ============================================================================

// ClipEncoder implementiert encoder.JointEncoder mit zwei ONNX Sessions:
// einem Visual-Turm fuer Bilder und einem Textual-Turm fuer Hypothesen.
type ClipEncoder struct {
	visual  *Session
	textual *Session
	tok     *tokenizer.Tokenizer
	info    encoder.ModelInfo
	closed  bool
	mu      sync.RWMutex
}

// ClipOptions konfiguriert den Encoder.
type ClipOptions struct {
	Name         string // Anzeige-Name (z.B. "ViT-B/32")
	ImageSize    int    // Eingabe-Bildgroesse
	EmbeddingDim int    // Embedding-Dimension
	InputName    string // ONNX Input-Tensor Name
	OutputName   string // ONNX Output-Tensor Name
}

// NewClipEncoder laedt Visual- und Textual-Turm aus einem Snapshot-
// Verzeichnis. Das Verzeichnis muss *visual*.onnx, *textual*.onnx sowie
// vocab.json und merges.txt enthalten (ggf. in Unterverzeichnissen).
func NewClipEncoder(dir string, opts ClipOptions, loadOpts encoder.LoadOptions) (*ClipEncoder, error) {
	visualPath, textualPath, tokDir, err := locateModelFiles(dir)
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

	sessOpts := SessionOptions{
		InputName:   opts.InputName,
		OutputName:  opts.OutputName,
		NumThreads:  loadOpts.Threads,
		UseGPU:      loadOpts.Device == backend.BackendCUDA,
		GPUDeviceID: loadOpts.MainGPU,
	}

	visual, err := CreateSession(visualPath, sessOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: visual: %v", ErrSessionCreate, err)
	}

	textual, err := CreateSession(textualPath, sessOpts)
	if err != nil {
		visual.Destroy()
		return nil, fmt.Errorf("%w: textual: %v", ErrSessionCreate, err)
	}

	tok, err := tokenizer.LoadFromDir(tokDir)
	if err != nil {
		visual.Destroy()
		textual.Destroy()
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	// Embedding-Dimension aus dem Modell hat Vorrang vor der Option
	if dim := visual.OutputDim(); dim > 0 {
		opts.EmbeddingDim = dim
	}

	return &ClipEncoder{
		visual:  visual,
		textual: textual,
		tok:     tok,
		info: encoder.ModelInfo{
			Name:         opts.Name,
			Type:         "clip-onnx",
			EmbeddingDim: opts.EmbeddingDim,
			ImageSize:    opts.ImageSize,
			ContextLen:   tokenizer.ContextLength,
		},
	}, nil
}

// locateModelFiles sucht die ONNX-Exporte und den Tokenizer im Snapshot.
func locateModelFiles(dir string) (visual, textual, tokDir string, err error) {
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		name := d.Name()
		switch {
		case strings.HasSuffix(name, ".onnx") && strings.Contains(name, "visual"):
			visual = path
		case strings.HasSuffix(name, ".onnx") && strings.Contains(name, "textual"):
			textual = path
		case name == "vocab.json":
			tokDir = filepath.Dir(path)
		}
		return nil
	})
	if walkErr != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrModelLoad, walkErr)
	}
	if visual == "" || textual == "" {
		return "", "", "", fmt.Errorf("%w: in %s", ErrMissingModel, dir)
	}
	if tokDir == "" {
		return "", "", "", fmt.Errorf("%w: vocab.json not found in %s", ErrModelLoad, dir)
	}
	return visual, textual, tokDir, nil
}

// ============================================================================
// JointEncoder Interface
// ============================================================================

// EncodeImage bildet ein Bild auf einen Embedding-Vektor ab.
func (e *ClipEncoder) EncodeImage(img image.Image) ([]float32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, encoder.ErrEncoderClosed
	}

	size := e.info.ImageSize
	input := imaging.PrepareForEncoder(imaging.FromImage(img), size)
	shape := []int64{1, 3, int64(size), int64(size)}

	result, err := e.visual.RunFloat(input, shape, e.info.EmbeddingDim)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	return result, nil
}

// EncodeTexts bildet Texte auf Embedding-Vektoren ab, in Eingabe-Reihenfolge.
func (e *ClipEncoder) EncodeTexts(texts []string) ([][]float32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, encoder.ErrEncoderClosed
	}

	batch, err := e.tok.EncodeBatch(texts)
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(batch))
	for i, ids := range batch {
		input := make([]int64, len(ids))
		for j, id := range ids {
			input[j] = int64(id)
		}
		shape := []int64{1, int64(len(ids))}

		emb, err := e.textual.RunInt(input, shape, e.info.EmbeddingDim)
		if err != nil {
			return nil, fmt.Errorf("%w: text %d: %v", ErrInference, i, err)
		}
		out[i] = emb
	}
	return out, nil
}

// Close gibt beide Sessions frei.
func (e *ClipEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	if e.visual != nil {
		e.visual.Destroy()
		e.visual = nil
	}
	if e.textual != nil {
		e.textual.Destroy()
		e.textual = nil
	}

	e.closed = true
	return nil
}

// Info gibt die Modell-Metadaten zurueck.
func (e *ClipEncoder) Info() encoder.ModelInfo {
	return e.info
}
