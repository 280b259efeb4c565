// MODUL: metal
// ZWECK: Metal Backend Detection auf Apple-Systemen
// INPUT: Keine (Hardware-Abfrage)
// OUTPUT: DeviceInfo fuer das Metal-Geraet
// NEBENEFFEKTE: CGO-Aufrufe ins Metal-Framework
// ABHAENGIGKEITEN: Metal.framework (CGO)
// HINWEISE: Nur darwin mit Build-Tag "metal"

//go:build darwin && metal

package backend

/*
#cgo LDFLAGS: -framework Metal -framework Foundation

#include <stdlib.h>

extern int metal_device_available();
extern const char* metal_device_name();
*/
import "C"

// MetalDetector implementiert Detector fuer das Metal-Backend.
type MetalDetector struct {
	available bool
	checked   bool
}

// NewMetalDetector erstellt einen neuen Metal-Detektor.
func NewMetalDetector() *MetalDetector {
	return &MetalDetector{}
}

// Detect prueft ob ein Metal-faehiges Geraet vorhanden ist.
func (d *MetalDetector) Detect() bool {
	if d.checked {
		return d.available
	}
	d.checked = true
	d.available = C.metal_device_available() != 0
	return d.available
}

// Devices gibt das Metal-Standardgeraet zurueck.
func (d *MetalDetector) Devices() []DeviceInfo {
	if !d.Detect() {
		return nil
	}
	return []DeviceInfo{{
		Backend:    BackendMetal,
		DeviceID:   0,
		DeviceName: C.GoString(C.metal_device_name()),
		IsDefault:  true,
	}}
}

// Backend gibt BackendMetal zurueck.
func (d *MetalDetector) Backend() Backend {
	return BackendMetal
}
