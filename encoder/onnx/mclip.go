//go:build cgo

// MODUL: onnx/mclip
// ZWECK: Multilingualer Text-Encoder (DistilBERT-Basis, WordPiece)
// INPUT: Snapshot-Verzeichnis mit model.onnx und vocab.txt
// OUTPUT: Text-Embeddings im CLIP ViT-B/32 Vektorraum
// NEBENEFFEKTE: Laedt eine ONNX Session
// ABHAENGIGKEITEN: onnxruntime_go, tokenizer (WordPiece)
// HINWEISE: Zwei Inputs (input_ids, attention_mask), keine Kleinschreibung

package onnx

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/7blacky7/zeroshot/encoder"
	"github.com/7blacky7/zeroshot/encoder/backend"
	"github.com/7blacky7/zeroshot/tokenizer"
)

// Tensor-Namen der Sentence-Transformers ONNX-Exporte.
const (
	mclipInputIDs  = "input_ids"
	mclipAttnMask  = "attention_mask"
	mclipOutput    = "sentence_embedding"
	mclipMaxLen    = 128
	mclipOutputDim = 512
)

// MClipTextEncoder implementiert encoder.TextEncoder fuer den
// multilingualen Text-Turm des Encoder-Paars.
type MClipTextEncoder struct {
	session *ort.DynamicAdvancedSession
	tok     *tokenizer.WordPiece
	info    encoder.ModelInfo
	closed  bool
	mu      sync.RWMutex
}

// NewMClipTextEncoder laedt model.onnx und vocab.txt aus dem Snapshot.
func NewMClipTextEncoder(dir string, loadOpts encoder.LoadOptions) (*MClipTextEncoder, error) {
	modelPath, vocabPath, err := locateMClipFiles(dir)
	if err != nil {
		return nil, err
	}

	if err := InitRuntime(); err != nil {
		return nil, fmt.Errorf("runtime init: %w", err)
	}

	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCreate, err)
	}
	defer sessOpts.Destroy()

	if loadOpts.Threads > 0 {
		if err := sessOpts.SetIntraOpNumThreads(loadOpts.Threads); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSessionCreate, err)
		}
	}
	if loadOpts.Device == backend.BackendCUDA {
		cudaOpts, err := ort.NewCUDAProviderOptions()
		if err == nil {
			_ = cudaOpts.Update(map[string]string{
				"device_id": fmt.Sprintf("%d", loadOpts.MainGPU),
			})
			_ = sessOpts.AppendExecutionProviderCUDA(cudaOpts)
			cudaOpts.Destroy()
		}
		// Bei Fehler: Fallback auf CPU (kein Error)
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{mclipInputIDs, mclipAttnMask},
		[]string{mclipOutput},
		sessOpts,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCreate, err)
	}

	tok, err := tokenizer.LoadWordPiece(vocabPath, mclipMaxLen)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	return &MClipTextEncoder{
		session: session,
		tok:     tok,
		info: encoder.ModelInfo{
			Name:         "clip-ViT-B-32-multilingual-v1",
			Type:         "mclip-onnx",
			EmbeddingDim: mclipOutputDim,
			ContextLen:   mclipMaxLen,
		},
	}, nil
}

// locateMClipFiles sucht model.onnx und vocab.txt im Snapshot.
func locateMClipFiles(dir string) (model, vocab string, err error) {
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		switch {
		case strings.HasSuffix(d.Name(), ".onnx"):
			model = path
		case d.Name() == "vocab.txt":
			vocab = path
		}
		return nil
	})
	if walkErr != nil {
		return "", "", fmt.Errorf("%w: %v", ErrModelLoad, walkErr)
	}
	if model == "" {
		return "", "", fmt.Errorf("%w: in %s", ErrMissingModel, dir)
	}
	if vocab == "" {
		return "", "", fmt.Errorf("%w: vocab.txt not found in %s", ErrModelLoad, dir)
	}
	return model, vocab, nil
}

// EncodeTexts bildet Texte auf Embedding-Vektoren ab, in Eingabe-Reihenfolge.
func (e *MClipTextEncoder) EncodeTexts(texts []string) ([][]float32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, encoder.ErrEncoderClosed
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.encodeOne(text)
		if err != nil {
			return nil, fmt.Errorf("%w: text %d: %v", ErrInference, i, err)
		}
		out[i] = emb
	}
	return out, nil
}

// encodeOne tokenisiert und embeddet einen einzelnen Text.
func (e *MClipTextEncoder) encodeOne(text string) ([]float32, error) {
	ids, mask := e.tok.Encode(text)

	idsIn := make([]int64, len(ids))
	maskIn := make([]int64, len(mask))
	for i := range ids {
		idsIn[i] = int64(ids[i])
		maskIn[i] = int64(mask[i])
	}
	shape := ort.Shape{1, int64(len(ids))}

	idsTensor, err := ort.NewTensor(shape, idsIn)
	if err != nil {
		return nil, err
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, maskIn)
	if err != nil {
		return nil, err
	}
	defer maskTensor.Destroy()

	outputData := make([]float32, e.info.EmbeddingDim)
	outputTensor, err := ort.NewTensor(ort.Shape{1, int64(e.info.EmbeddingDim)}, outputData)
	if err != nil {
		return nil, err
	}
	defer outputTensor.Destroy()

	err = e.session.Run(
		[]ort.ArbitraryTensor{idsTensor, maskTensor},
		[]ort.ArbitraryTensor{outputTensor},
	)
	if err != nil {
		return nil, err
	}

	result := make([]float32, e.info.EmbeddingDim)
	copy(result, outputTensor.GetData())
	return result, nil
}

// Close gibt die Session frei.
func (e *MClipTextEncoder) Close() error {
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
func (e *MClipTextEncoder) Info() encoder.ModelInfo {
	return e.info
}
