// MODUL: registry_test
// ZWECK: Tests fuer Factory-Registrierung und Encoder-Erstellung
// INPUT: Fake-Factories
// OUTPUT: Testresultate
// NEBENEFFEKTE: keine (eigene Registry pro Test)
// ABHAENGIGKEITEN: testing
// HINWEISE: DefaultRegistry bleibt unberuehrt

package encoder

import (
	"errors"
	"image"
	"testing"
)

// fakeJoint ist ein JointEncoder ohne echtes Modell.
type fakeJoint struct{ info ModelInfo }

func (f *fakeJoint) EncodeImage(img image.Image) ([]float32, error)  { return []float32{1}, nil }
func (f *fakeJoint) EncodeTexts(texts []string) ([][]float32, error) { return nil, nil }
func (f *fakeJoint) Close() error                                    { return nil }
func (f *fakeJoint) Info() ModelInfo                                 { return f.info }

func TestRegistryCreateJoint(t *testing.T) {
	r := NewRegistry()
	r.RegisterJoint("fake", func(modelPath string, opts LoadOptions) (JointEncoder, error) {
		return &fakeJoint{info: ModelInfo{Name: "fake", EmbeddingDim: 4}}, nil
	})

	enc, err := r.CreateJoint("fake", "", DefaultLoadOptions())
	if err != nil {
		t.Fatalf("CreateJoint fehlgeschlagen: %v", err)
	}
	if enc.Info().EmbeddingDim != 4 {
		t.Errorf("EmbeddingDim = %d", enc.Info().EmbeddingDim)
	}
}

func TestRegistryUnknownName(t *testing.T) {
	r := NewRegistry()

	_, err := r.CreateJoint("nope", "", DefaultLoadOptions())
	if !errors.Is(err, ErrUnknownModelType) {
		t.Errorf("err = %v, erwartet ErrUnknownModelType", err)
	}
}

func TestRegistryMissingModelPath(t *testing.T) {
	r := NewRegistry()
	r.RegisterJoint("fake", func(modelPath string, opts LoadOptions) (JointEncoder, error) {
		return &fakeJoint{}, nil
	})

	_, err := r.CreateJoint("fake", "/does/not/exist", DefaultLoadOptions())
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("err = %v, erwartet ErrModelNotFound", err)
	}
}

func TestRegistryHasJointAndList(t *testing.T) {
	r := NewRegistry()
	if r.HasJoint("fake") {
		t.Error("leere Registry meldet Factory")
	}

	r.RegisterJoint("fake", func(modelPath string, opts LoadOptions) (JointEncoder, error) {
		return &fakeJoint{}, nil
	})
	r.RegisterText("fake", func(modelPath string, opts LoadOptions) (TextEncoder, error) {
		return nil, nil
	})

	if !r.HasJoint("fake") {
		t.Error("registrierte Factory nicht gefunden")
	}
	// Gleicher Name in zwei Maps erscheint nur einmal
	if names := r.List(); len(names) != 1 || names[0] != "fake" {
		t.Errorf("List = %v", names)
	}
}

func TestLoadOptionsValidate(t *testing.T) {
	opts := DefaultLoadOptions()
	if err := opts.Validate(); err != nil {
		t.Errorf("Default-Optionen ungueltig: %v", err)
	}

	opts.Threads = 0
	if err := opts.Validate(); !errors.Is(err, ErrInvalidThreads) {
		t.Errorf("err = %v, erwartet ErrInvalidThreads", err)
	}

	opts = DefaultLoadOptions()
	opts.Device = "tpu"
	if err := opts.Validate(); !errors.Is(err, ErrInvalidDevice) {
		t.Errorf("err = %v, erwartet ErrInvalidDevice", err)
	}
}

func TestOptionsApply(t *testing.T) {
	opts := DefaultLoadOptions()
	opts.Apply(WithThreads(2), WithBatchSize(8), WithMainGPU(1))

	if opts.Threads != 2 || opts.BatchSize != 8 || opts.MainGPU != 1 {
		t.Errorf("Apply nicht angewendet: %+v", opts)
	}

	// Ungueltige Werte werden ignoriert
	opts.Apply(WithThreads(-1))
	if opts.Threads != 2 {
		t.Errorf("negativer Thread-Wert uebernommen: %d", opts.Threads)
	}
}
