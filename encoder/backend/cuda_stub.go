// MODUL: cuda_stub
// ZWECK: Stub-Implementierung wenn CUDA nicht verfuegbar
// INPUT: Keine
// OUTPUT: Leere DeviceInfo-Liste, false fuer Detect
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: backend.go
// HINWEISE: Wird kompiliert wenn Build-Tag "cuda" NICHT gesetzt

//go:build !cuda

package backend

// CUDADetector Stub fuer Builds ohne CUDA.
type CUDADetector struct{}

// NewCUDADetector erstellt einen Stub-Detektor.
func NewCUDADetector() *CUDADetector {
	return &CUDADetector{}
}

// Detect gibt immer false zurueck.
func (d *CUDADetector) Detect() bool {
	return false
}

// Devices gibt eine leere Liste zurueck.
func (d *CUDADetector) Devices() []DeviceInfo {
	return nil
}

// Backend gibt BackendCUDA zurueck.
func (d *CUDADetector) Backend() Backend {
	return BackendCUDA
}
