// MODUL: options
// ZWECK: Functional Options fuer das Laden von Encodern
// INPUT: Optionale Konfigurationsparameter (Device, Threads, BatchSize)
// OUTPUT: LoadOptions Struct mit Konfiguration
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: runtime (Standard-Library), backend (Device-Konstanten)
// HINWEISE: Device wird einmalig bei der Konstruktion aufgeloest

package encoder

import (
	"errors"
	"runtime"

	"github.com/7blacky7/zeroshot/encoder/backend"
)

// ============================================================================
// LoadOptions - Konfiguration fuer das Laden eines Encoders
// ============================================================================

// LoadOptions enthaelt die Konfiguration fuer das Laden eines Encoders.
type LoadOptions struct {
	Device    backend.Backend // Compute-Backend: cpu, cuda, metal
	Threads   int             // Anzahl CPU-Threads
	BatchSize int             // Batch-Groesse fuer Encoding
	GPULayers int             // Anzahl GPU-Layers (-1 fuer alle)
	MainGPU   int             // Index des Haupt-GPUs
	UseMmap   bool            // Memory-Mapping aktivieren
}

// Option ist eine funktionale Option fuer LoadOptions.
type Option func(*LoadOptions)

// ============================================================================
// Fehler-Definitionen
// ============================================================================

var (
	ErrInvalidDevice    = errors.New("encoder: invalid device")
	ErrInvalidThreads   = errors.New("encoder: thread count must be > 0")
	ErrInvalidBatchSize = errors.New("encoder: batch size must be > 0")
)

// ============================================================================
// DefaultLoadOptions - Standard-Konfiguration
// ============================================================================

// DefaultLoadOptions gibt eine Standard-Konfiguration zurueck.
// Das Device ist das beste verfuegbare Backend (CUDA > Metal > CPU).
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Device:    backend.Best(),
		Threads:   runtime.NumCPU(),
		BatchSize: 1,
		GPULayers: -1,
		MainGPU:   0,
		UseMmap:   true,
	}
}

// ============================================================================
// Functional Options
// ============================================================================

// WithDevice setzt das Compute-Backend.
func WithDevice(device backend.Backend) Option {
	return func(o *LoadOptions) {
		o.Device = device
	}
}

// WithThreads setzt die Anzahl der CPU-Threads.
// Werte <= 0 werden ignoriert.
func WithThreads(n int) Option {
	return func(o *LoadOptions) {
		if n > 0 {
			o.Threads = n
		}
	}
}

// WithBatchSize setzt die Batch-Groesse.
// Werte <= 0 werden ignoriert.
func WithBatchSize(n int) Option {
	return func(o *LoadOptions) {
		if n > 0 {
			o.BatchSize = n
		}
	}
}

// WithGPULayers setzt die Anzahl der GPU-Layers (-1 fuer alle).
func WithGPULayers(n int) Option {
	return func(o *LoadOptions) {
		o.GPULayers = n
	}
}

// WithMainGPU setzt den Index des Haupt-GPUs.
func WithMainGPU(gpu int) Option {
	return func(o *LoadOptions) {
		if gpu >= 0 {
			o.MainGPU = gpu
		}
	}
}

// WithMmap aktiviert/deaktiviert Memory-Mapping.
func WithMmap(enabled bool) Option {
	return func(o *LoadOptions) {
		o.UseMmap = enabled
	}
}

// Apply wendet alle Options auf LoadOptions an.
func (o *LoadOptions) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// ============================================================================
// Validate - Konfiguration validieren
// ============================================================================

// Validate prueft ob die LoadOptions gueltig sind.
func (o *LoadOptions) Validate() error {
	switch o.Device {
	case backend.BackendCPU, backend.BackendCUDA, backend.BackendMetal:
		// gueltig
	default:
		return ErrInvalidDevice
	}

	if o.Threads <= 0 {
		return ErrInvalidThreads
	}

	if o.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	return nil
}
