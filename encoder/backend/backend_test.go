// MODUL: backend_test
// ZWECK: Tests fuer Backend-Detection und Auswahl
// INPUT: Keine (Stub-Detektoren in Tag-losen Builds)
// OUTPUT: Testresultate
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: testing
// HINWEISE: CPU muss immer verfuegbar sein

package backend

import (
	"testing"
)

func TestDetectAlwaysContainsCPU(t *testing.T) {
	available := Detect()
	if len(available) == 0 {
		t.Fatal("keine Backends erkannt")
	}
	if available[0] != BackendCPU {
		t.Errorf("erstes Backend = %s, erwartet cpu", available[0])
	}
}

func TestAvailable(t *testing.T) {
	if !Available(BackendCPU) {
		t.Error("CPU nicht verfuegbar")
	}
}

func TestBestFallsBackToCPU(t *testing.T) {
	// Ohne cuda/metal Build-Tags muss die Auswahl auf CPU fallen
	best := BestWithPriority(Priority{BackendCUDA, BackendMetal, BackendCPU})
	if Available(BackendCUDA) || Available(BackendMetal) {
		t.Skip("GPU-Backend vorhanden")
	}
	if best != BackendCPU {
		t.Errorf("Best = %s, erwartet cpu", best)
	}
}

func TestDevicesContainsDefaultCPU(t *testing.T) {
	devices := Devices()
	if len(devices) == 0 {
		t.Fatal("keine Geraete")
	}
	if devices[0].Backend != BackendCPU || !devices[0].IsDefault {
		t.Errorf("Standard-Geraet ist nicht CPU: %+v", devices[0])
	}
}

func TestBestWithEmptyPriority(t *testing.T) {
	if got := BestWithPriority(nil); got != BackendCPU {
		t.Errorf("leere Prioritaet = %s, erwartet cpu", got)
	}
}
