// MODUL: registry
// ZWECK: Thread-sichere Registry fuer Encoder-Factories
// INPUT: Encoder-Name, Factory-Funktionen, LoadOptions
// OUTPUT: Instanziierte Encoder
// NEBENEFFEKTE: Keine (rein speicherbasiert)
// ABHAENGIGKEITEN: sync (Standard-Library)
// HINWEISE: Implementierungen registrieren sich via init() beim Import

package encoder

import (
	"fmt"
	"os"
	"sync"
)

// ============================================================================
// Factory-Typen
// ============================================================================

// ImageFactory erstellt einen ImageEncoder aus einem Modell-Verzeichnis.
type ImageFactory func(modelPath string, opts LoadOptions) (ImageEncoder, error)

// TextFactory erstellt einen TextEncoder aus einem Modell-Verzeichnis.
type TextFactory func(modelPath string, opts LoadOptions) (TextEncoder, error)

// JointFactory erstellt einen JointEncoder aus einem Modell-Verzeichnis.
type JointFactory func(modelPath string, opts LoadOptions) (JointEncoder, error)

// ============================================================================
// Registry
// ============================================================================

// Registry verwaltet registrierte Encoder-Factories, getrennt nach
// Joint-, Bild- und Text-Encodern. Thread-sicher durch RWMutex.
type Registry struct {
	joint map[string]JointFactory
	img   map[string]ImageFactory
	text  map[string]TextFactory
	mu    sync.RWMutex
}

// NewRegistry erstellt eine neue leere Registry.
func NewRegistry() *Registry {
	return &Registry{
		joint: make(map[string]JointFactory),
		img:   make(map[string]ImageFactory),
		text:  make(map[string]TextFactory),
	}
}

// DefaultRegistry ist die globale Registry. Encoder-Implementierungen
// registrieren sich hier via init().
var DefaultRegistry = NewRegistry()

// ============================================================================
// Registrierung
// ============================================================================

// RegisterJoint registriert eine JointFactory unter dem angegebenen Namen.
// Ueberschreibt existierende Eintraege ohne Warnung.
func (r *Registry) RegisterJoint(name string, factory JointFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joint[name] = factory
}

// RegisterImage registriert eine ImageFactory.
func (r *Registry) RegisterImage(name string, factory ImageFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.img[name] = factory
}

// RegisterText registriert eine TextFactory.
func (r *Registry) RegisterText(name string, factory TextFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text[name] = factory
}

// ============================================================================
// Erstellung
// ============================================================================

// CreateJoint erstellt einen JointEncoder ueber die registrierte Factory.
func (r *Registry) CreateJoint(name, modelPath string, opts LoadOptions) (JointEncoder, error) {
	r.mu.RLock()
	factory, ok := r.joint[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModelType, name)
	}
	if err := checkModelPath(modelPath); err != nil {
		return nil, err
	}
	return factory(modelPath, opts)
}

// CreateImage erstellt einen ImageEncoder ueber die registrierte Factory.
func (r *Registry) CreateImage(name, modelPath string, opts LoadOptions) (ImageEncoder, error) {
	r.mu.RLock()
	factory, ok := r.img[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModelType, name)
	}
	if err := checkModelPath(modelPath); err != nil {
		return nil, err
	}
	return factory(modelPath, opts)
}

// CreateText erstellt einen TextEncoder ueber die registrierte Factory.
func (r *Registry) CreateText(name, modelPath string, opts LoadOptions) (TextEncoder, error) {
	r.mu.RLock()
	factory, ok := r.text[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModelType, name)
	}
	if err := checkModelPath(modelPath); err != nil {
		return nil, err
	}
	return factory(modelPath, opts)
}

// ============================================================================
// Abfrage
// ============================================================================

// HasJoint prueft ob eine JointFactory registriert ist.
func (r *Registry) HasJoint(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.joint[name]
	return ok
}

// List gibt die Namen aller registrierten Factories zurueck.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for name := range r.joint {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range r.img {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range r.text {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// checkModelPath prueft ob der Modell-Pfad existiert.
// Ein leerer Pfad ist erlaubt (Factories mit eingebauten Gewichten, Tests).
func checkModelPath(modelPath string) error {
	if modelPath == "" {
		return nil
	}
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
	}
	return nil
}
