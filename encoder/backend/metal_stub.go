// MODUL: metal_stub
// ZWECK: Stub-Implementierung wenn Metal nicht verfuegbar
// INPUT: Keine
// OUTPUT: Leere DeviceInfo-Liste, false fuer Detect
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: backend.go
// HINWEISE: Wird kompiliert wenn NICHT darwin ODER Build-Tag "metal" NICHT gesetzt

//go:build !darwin || !metal

package backend

// MetalDetector Stub fuer Builds ohne Metal.
type MetalDetector struct{}

// NewMetalDetector erstellt einen Stub-Detektor.
func NewMetalDetector() *MetalDetector {
	return &MetalDetector{}
}

// Detect gibt immer false zurueck.
func (d *MetalDetector) Detect() bool {
	return false
}

// Devices gibt eine leere Liste zurueck.
func (d *MetalDetector) Devices() []DeviceInfo {
	return nil
}

// Backend gibt BackendMetal zurueck.
func (d *MetalDetector) Backend() Backend {
	return BackendMetal
}
