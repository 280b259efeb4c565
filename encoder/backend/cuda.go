// MODUL: cuda
// ZWECK: CUDA Backend Detection via CUDA Runtime
// INPUT: Keine (Hardware-Abfrage)
// OUTPUT: DeviceInfo fuer CUDA-Geraete
// NEBENEFFEKTE: CGO-Aufrufe zur CUDA Runtime
// ABHAENGIGKEITEN: cudart (CGO)
// HINWEISE: Build-Tag "cuda" fuer bedingte Kompilierung

//go:build cuda

package backend

/*
#cgo LDFLAGS: -lcudart

#include <cuda_runtime.h>
*/
import "C"

// CUDADetector implementiert Detector fuer CUDA-Backends.
type CUDADetector struct {
	available bool
	devices   []DeviceInfo
	checked   bool
}

// NewCUDADetector erstellt einen neuen CUDA-Detektor.
func NewCUDADetector() *CUDADetector {
	return &CUDADetector{}
}

// Detect prueft ob mindestens ein CUDA-Geraet vorhanden ist.
func (d *CUDADetector) Detect() bool {
	if d.checked {
		return d.available
	}
	d.checked = true

	var count C.int
	if C.cudaGetDeviceCount(&count) != C.cudaSuccess || count == 0 {
		return false
	}

	for i := C.int(0); i < count; i++ {
		var props C.struct_cudaDeviceProp
		if C.cudaGetDeviceProperties(&props, i) != C.cudaSuccess {
			continue
		}
		d.devices = append(d.devices, DeviceInfo{
			Backend:    BackendCUDA,
			DeviceID:   int(i),
			DeviceName: C.GoString(&props.name[0]),
			IsDefault:  i == 0,
		})
	}

	d.available = len(d.devices) > 0
	return d.available
}

// Devices gibt alle CUDA-Geraete zurueck.
func (d *CUDADetector) Devices() []DeviceInfo {
	if !d.Detect() {
		return nil
	}
	return d.devices
}

// Backend gibt BackendCUDA zurueck.
func (d *CUDADetector) Backend() Backend {
	return BackendCUDA
}
