//go:build ggml && cgo

// MODUL: ggml/encoder
// ZWECK: Go-Bindings fuer CLIP Bild/Text-Encoder auf GGUF-Basis via CGO
// INPUT: Modell-Pfad (GGUF), dekodierte Bilder, Hypothesen-Strings
// OUTPUT: Float32 Embeddings, ModelInfo
// NEBENEFFEKTE: Laedt GGUF-Modell, alloziert C-Speicher
// ABHAENGIGKEITEN: encoder (Interfaces), imaging, clip_wrapper.h (C-Bindings)
// HINWEISE: Close() muss aufgerufen werden um C-Speicher freizugeben

package ggml

/*
#cgo CFLAGS: -I${SRCDIR}
#cgo LDFLAGS: -L${SRCDIR} -lclip_wrapper
#include "clip_wrapper.h"
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"image"
	"sync"
	"unsafe"

	"github.com/7blacky7/zeroshot/encoder"
	"github.com/7blacky7/zeroshot/imaging"
)

// ============================================================================
// Fehler-Definitionen
// ============================================================================

var (
	ErrNullContext  = errors.New("ggml: null context")
	ErrNullInput    = errors.New("ggml: null input data")
	ErrEncodeFailed = errors.New("ggml: encoding failed")
	ErrAllocFailed  = errors.New("ggml: memory allocation failed")
)

// ============================================================================
// GGMLEncoder - Hauptstruktur
// ============================================================================

// GGMLEncoder implementiert encoder.JointEncoder fuer GGUF-CLIP-Modelle.
// Bild- und Text-Turm stecken in derselben GGUF-Datei.
type GGMLEncoder struct {
	ctx  *C.clip_ctx
	info encoder.ModelInfo
	mu   sync.Mutex
}

// NewGGMLEncoder laedt ein konvertiertes CLIP-Modell aus einer GGUF-Datei.
func NewGGMLEncoder(modelPath string, opts encoder.LoadOptions) (*GGMLEncoder, error) {
	params := buildCParams(opts)

	cPath := C.CString(modelPath)
	defer C.free(unsafe.Pointer(cPath))

	ctx := C.clip_wrapper_init(cPath, params)
	if ctx == nil {
		return nil, ErrNullContext
	}

	return &GGMLEncoder{
		ctx:  ctx,
		info: extractModelInfo(ctx),
	}, nil
}

// ============================================================================
// JointEncoder Interface
// ============================================================================

// EncodeImage konvertiert ein Bild zu einem Embedding-Vektor.
// Preprocessing (Resize, Crop, Normalisierung) passiert auf der Go-Seite.
func (e *GGMLEncoder) EncodeImage(img image.Image) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctx == nil {
		return nil, encoder.ErrEncoderClosed
	}

	size := e.info.ImageSize
	pixels := imaging.PrepareForEncoder(imaging.FromImage(img), size)
	embedding := make([]float32, e.info.EmbeddingDim)

	result := C.clip_encode_image_pixels(
		e.ctx,
		(*C.float)(unsafe.Pointer(&pixels[0])),
		C.int32_t(size),
		(*C.float)(unsafe.Pointer(&embedding[0])),
		C.int32_t(e.info.EmbeddingDim),
	)
	if err := mapCError(int(result)); err != nil {
		return nil, err
	}
	return embedding, nil
}

// EncodeTexts konvertiert Texte zu Embedding-Vektoren, in
// Eingabe-Reihenfolge. Tokenisierung macht der C-Wrapper mit dem
// GGUF-Vokabular.
func (e *GGMLEncoder) EncodeTexts(texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctx == nil {
		return nil, encoder.ErrEncoderClosed
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if text == "" {
			return nil, ErrNullInput
		}

		cText := C.CString(text)
		embedding := make([]float32, e.info.EmbeddingDim)

		result := C.clip_encode_text(
			e.ctx,
			cText,
			(*C.float)(unsafe.Pointer(&embedding[0])),
			C.int32_t(e.info.EmbeddingDim),
		)
		C.free(unsafe.Pointer(cText))

		if err := mapCError(int(result)); err != nil {
			return nil, err
		}
		out[i] = embedding
	}
	return out, nil
}

// Close gibt den C-Context und zugehoerigen Speicher frei.
func (e *GGMLEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctx == nil {
		return nil
	}
	C.clip_wrapper_free(e.ctx)
	e.ctx = nil
	return nil
}

// Info gibt Metadaten ueber das geladene Modell zurueck.
func (e *GGMLEncoder) Info() encoder.ModelInfo {
	return e.info
}

// ============================================================================
// Hilfsfunktionen
// ============================================================================

// buildCParams konvertiert LoadOptions zu C-Parametern.
func buildCParams(opts encoder.LoadOptions) C.clip_init_params {
	params := C.clip_wrapper_default_params()
	params.n_threads = C.int32_t(opts.Threads)
	params.n_gpu_layers = C.int32_t(opts.GPULayers)
	params.main_gpu = C.int32_t(opts.MainGPU)
	params.use_mmap = boolToInt8(opts.UseMmap)
	return params
}

// extractModelInfo holt Modell-Metadaten aus dem C-Context.
func extractModelInfo(ctx *C.clip_ctx) encoder.ModelInfo {
	cInfo := C.clip_get_model_info(ctx)
	return encoder.ModelInfo{
		Name:         C.GoString(cInfo.name),
		Type:         "clip-gguf",
		EmbeddingDim: int(cInfo.embedding_dim),
		ImageSize:    int(cInfo.image_size),
		ContextLen:   int(cInfo.context_len),
	}
}

// mapCError konvertiert C-Fehlercodes zu Go-Errors.
func mapCError(code int) error {
	switch code {
	case 0:
		return nil
	case -1:
		return ErrNullContext
	case -2:
		return ErrNullInput
	case -3:
		return ErrEncodeFailed
	case -4:
		return ErrAllocFailed
	default:
		return ErrEncodeFailed
	}
}

// boolToInt8 konvertiert bool zu C.int8_t.
func boolToInt8(b bool) C.int8_t {
	if b {
		return 1
	}
	return 0
}

func init() {
	encoder.DefaultRegistry.RegisterJoint("clip-gguf",
		func(modelPath string, opts encoder.LoadOptions) (encoder.JointEncoder, error) {
			return NewGGMLEncoder(modelPath, opts)
		})
}
