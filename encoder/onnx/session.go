//go:build cgo

// MODUL: onnx/session
// ZWECK: ONNX Runtime Session Management - Erstellen, Konfigurieren, Ausfuehren
// INPUT: Modell-Pfad (.onnx), Session-Optionen, Input-Tensoren
// OUTPUT: Session-Handle, Embedding-Tensoren
// NEBENEFFEKTE: Alloziert ONNX Runtime Ressourcen, GPU Memory
// ABHAENGIGKEITEN: onnxruntime_go
// HINWEISE: Thread-sicher, Destroy() MUSS aufgerufen werden

package onnx

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ============================================================================
// Runtime Initialisierung (Singleton)
// ============================================================================

var (
	runtimeInitOnce sync.Once
	runtimeInitErr  error
)

// InitRuntime initialisiert die ONNX Runtime einmalig.
// Wird automatisch beim ersten Session-Erstellen aufgerufen.
func InitRuntime() error {
	runtimeInitOnce.Do(func() {
		runtimeInitErr = ort.InitializeEnvironment()
	})
	return runtimeInitErr
}

// DestroyRuntime gibt die ONNX Runtime frei.
// Sollte am Programmende aufgerufen werden.
func DestroyRuntime() error {
	return ort.DestroyEnvironment()
}

// ============================================================================
// Session Struktur
// ============================================================================

// Session verwaltet eine ONNX Runtime Inference Session.
type Session struct {
	inner      *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	outputDim  int // Letzte Dimension des Output-Tensors, 0 wenn unbekannt
}

// SessionOptions konfiguriert die ONNX Session
type SessionOptions struct {
	// InputName ist der ONNX Input-Tensor Name
	InputName string

	// OutputName ist der ONNX Output-Tensor Name
	OutputName string

	// NumThreads fuer Intra-Op Parallelisierung (0 = auto)
	NumThreads int

	// UseGPU aktiviert CUDA Execution Provider
	UseGPU bool

	// GPUDeviceID ist die GPU Index (Standard: 0)
	GPUDeviceID int
}

// ============================================================================
// Session Konstruktor
// ============================================================================

// CreateSession erstellt eine neue ONNX Inference Session.
func CreateSession(modelPath string, opts SessionOptions) (*Session, error) {
	// Runtime initialisieren falls noetig
	if err := InitRuntime(); err != nil {
		return nil, fmt.Errorf("runtime init: %w", err)
	}

	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer sessOpts.Destroy()

	if opts.NumThreads > 0 {
		if err := sessOpts.SetIntraOpNumThreads(opts.NumThreads); err != nil {
			return nil, fmt.Errorf("threads setzen: %w", err)
		}
	}

	// GPU aktivieren wenn gewuenscht
	if opts.UseGPU {
		cudaOpts, err := ort.NewCUDAProviderOptions()
		if err == nil {
			_ = cudaOpts.Update(map[string]string{
				"device_id": fmt.Sprintf("%d", opts.GPUDeviceID),
			})
			_ = sessOpts.AppendExecutionProviderCUDA(cudaOpts)
			cudaOpts.Destroy()
		}
		// Bei Fehler: Fallback auf CPU (kein Error)
	}

	inner, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{opts.InputName},
		[]string{opts.OutputName},
		sessOpts,
	)
	if err != nil {
		return nil, fmt.Errorf("session erstellen: %w", err)
	}

	sess := &Session{
		inner:      inner,
		inputName:  opts.InputName,
		outputName: opts.OutputName,
	}

	// Output-Dimension aus Modell-Datei lesen (nicht aus Session)
	if _, outputs, err := ort.GetInputOutputInfo(modelPath); err == nil {
		for _, info := range outputs {
			if info.Name == opts.OutputName && len(info.Dimensions) >= 2 {
				if dim := info.Dimensions[len(info.Dimensions)-1]; dim > 0 {
					sess.outputDim = int(dim)
				}
				break
			}
		}
	}

	return sess, nil
}

// OutputDim gibt die aus dem Modell gelesene Embedding-Dimension zurueck,
// oder 0 wenn die Shape dynamisch ist.
func (s *Session) OutputDim() int {
	return s.outputDim
}

// ============================================================================
// Inference
// ============================================================================

// RunFloat fuehrt Inference mit einem Float32-Input durch (NCHW Bilddaten).
// Rueckgabe: Embedding-Vektor der Groesse embeddingDim.
func (s *Session) RunFloat(input []float32, inputShape []int64, embeddingDim int) ([]float32, error) {
	inputTensor, err := ort.NewTensor(ort.Shape(inputShape), input)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	return s.run(inputTensor, embeddingDim)
}

// RunInt fuehrt Inference mit einem Int64-Input durch (Token-IDs [1, N]).
// Rueckgabe: Embedding-Vektor der Groesse embeddingDim.
func (s *Session) RunInt(input []int64, inputShape []int64, embeddingDim int) ([]float32, error) {
	inputTensor, err := ort.NewTensor(ort.Shape(inputShape), input)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	return s.run(inputTensor, embeddingDim)
}

// run fuehrt die Session aus und kopiert das Embedding heraus.
func (s *Session) run(inputTensor ort.ArbitraryTensor, embeddingDim int) ([]float32, error) {
	outputShape := ort.Shape{1, int64(embeddingDim)}
	outputData := make([]float32, embeddingDim)
	outputTensor, err := ort.NewTensor(outputShape, outputData)
	if err != nil {
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	err = s.inner.Run(
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
	)
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}

	result := make([]float32, embeddingDim)
	copy(result, outputTensor.GetData())
	return result, nil
}

// Destroy gibt alle Session-Ressourcen frei
func (s *Session) Destroy() {
	if s.inner != nil {
		s.inner.Destroy()
		s.inner = nil
	}
}
