// MODUL: backend
// ZWECK: Erkennung und Auswahl von Compute-Backends (CPU/CUDA/Metal)
// INPUT: Keine (reine Datenstrukturen und Detection)
// OUTPUT: Backend-Typ, DeviceInfo, Verfuegbarkeit
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: Keine externen (nur stdlib)
// HINWEISE: Plattform-spezifische Implementierung in cuda.go/metal.go

package backend

// ============================================================================
// Backend-Typ
// ============================================================================

// Backend repraesentiert ein verfuegbares Compute-Backend.
type Backend string

const (
	BackendCPU   Backend = "cpu"
	BackendCUDA  Backend = "cuda"
	BackendMetal Backend = "metal"
)

// String gibt die String-Repraesentation zurueck.
func (b Backend) String() string {
	return string(b)
}

// ============================================================================
// DeviceInfo
// ============================================================================

// DeviceInfo enthaelt Informationen ueber ein verfuegbares Compute-Geraet.
type DeviceInfo struct {
	Backend    Backend // Backend-Typ (cpu, cuda, metal)
	DeviceID   int     // Geraete-Index (0 fuer CPU, GPU-Index sonst)
	DeviceName string  // Lesbarer Geraetename
	IsDefault  bool    // Ob dies das Standard-Geraet ist
}

// ============================================================================
// Detector Interface
// ============================================================================

// Detector ist das Interface fuer Backend-Erkennung.
// Implementierungen: CUDADetector, MetalDetector (plus Stubs ohne Build-Tag).
type Detector interface {
	// Detect prueft ob das Backend verfuegbar ist
	Detect() bool

	// Devices gibt alle verfuegbaren Geraete zurueck
	Devices() []DeviceInfo

	// Backend gibt den Backend-Typ zurueck
	Backend() Backend
}

// registeredDetectors haelt die registrierten Backend-Detektoren.
var registeredDetectors = map[Backend]Detector{
	BackendCUDA:  NewCUDADetector(),
	BackendMetal: NewMetalDetector(),
}

// ============================================================================
// Detection
// ============================================================================

// Detect erkennt alle verfuegbaren Backends. CPU ist immer dabei.
func Detect() []Backend {
	available := []Backend{BackendCPU}

	for _, b := range []Backend{BackendCUDA, BackendMetal} {
		if d, ok := registeredDetectors[b]; ok && d.Detect() {
			available = append(available, b)
		}
	}

	return available
}

// Available prueft ob ein bestimmtes Backend verfuegbar ist.
func Available(b Backend) bool {
	if b == BackendCPU {
		return true
	}
	if d, ok := registeredDetectors[b]; ok {
		return d.Detect()
	}
	return false
}

// Devices gibt alle verfuegbaren Geraete zurueck.
func Devices() []DeviceInfo {
	devices := []DeviceInfo{{
		Backend:    BackendCPU,
		DeviceID:   0,
		DeviceName: "CPU",
		IsDefault:  true,
	}}

	for _, b := range []Backend{BackendCUDA, BackendMetal} {
		if d, ok := registeredDetectors[b]; ok && d.Detect() {
			devices = append(devices, d.Devices()...)
		}
	}

	return devices
}

// ============================================================================
// Auswahl
// ============================================================================

// Priority definiert die Praeferenzreihenfolge fuer die Backend-Auswahl.
type Priority []Backend

// DefaultPriority gibt die Standard-Praeferenzreihenfolge zurueck.
func DefaultPriority() Priority {
	return Priority{BackendCUDA, BackendMetal, BackendCPU}
}

// Best waehlt das beste verfuegbare Backend nach Standard-Prioritaet.
// CUDA vor Metal vor CPU; CPU ist immer verfuegbar.
func Best() Backend {
	return BestWithPriority(DefaultPriority())
}

// BestWithPriority waehlt das Backend nach gegebener Prioritaet.
func BestWithPriority(priority Priority) Backend {
	for _, b := range priority {
		if Available(b) {
			return b
		}
	}
	return BackendCPU
}
