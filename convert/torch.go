// MODUL: torch
// ZWECK: PyTorch-Checkpoints (pickle) zu Tensoren lesen
// INPUT: pytorch_model.bin
// OUTPUT: Tensor-Liste mit float32-Daten
// NEBENEFFEKTE: Liest die gesamte Checkpoint-Datei in den Speicher
// ABHAENGIGKEITEN: github.com/nlpodyssey/gopickle
// HINWEISE: Half/BFloat16-Storages liefert gopickle bereits als float32

package convert

import (
	"errors"
	"fmt"

	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"
)

// Fehler beim Checkpoint-Lesen.
var (
	ErrNotStateDict  = errors.New("convert: checkpoint is not a state dict")
	ErrUnsupported   = errors.New("convert: unsupported storage type")
	ErrNonContiguous = errors.New("convert: non-contiguous tensor")
)

// LoadTorch liest alle Tensoren aus einem PyTorch-Checkpoint.
func LoadTorch(path string) ([]*Tensor, error) {
	model, err := pytorch.Load(path)
	if err != nil {
		return nil, fmt.Errorf("convert: load checkpoint: %w", err)
	}
	return stateDictTensors(model)
}

// stateDictTensors sammelt die Tensoren eines entpickelten State-Dicts
// in Eintrags-Reihenfolge. Nicht-Tensor-Werte werden uebersprungen.
func stateDictTensors(model any) ([]*Tensor, error) {
	var tensors []*Tensor
	collect := func(key, value any) error {
		name, ok := key.(string)
		if !ok {
			return nil
		}
		pt, ok := value.(*pytorch.Tensor)
		if !ok {
			return nil
		}
		t, err := fromTorchTensor(name, pt)
		if err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}
		tensors = append(tensors, t)
		return nil
	}

	switch dict := model.(type) {
	case *types.OrderedDict:
		for el := dict.List.Front(); el != nil; el = el.Next() {
			entry := el.Value.(*types.OrderedDictEntry)
			if err := collect(entry.Key, entry.Value); err != nil {
				return nil, err
			}
		}
	case *types.Dict:
		for _, entry := range *dict {
			if err := collect(entry.Key, entry.Value); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotStateDict, model)
	}

	return tensors, nil
}

// fromTorchTensor kopiert einen pytorch.Tensor in unsere Darstellung.
func fromTorchTensor(name string, pt *pytorch.Tensor) (*Tensor, error) {
	shape := make([]uint64, len(pt.Size))
	elements := 1
	for i, d := range pt.Size {
		shape[i] = uint64(d)
		elements *= d
	}

	if !contiguous(pt) {
		return nil, ErrNonContiguous
	}

	data, err := storageFloats(pt.Source)
	if err != nil {
		return nil, err
	}

	offset := pt.StorageOffset
	if offset+elements > len(data) {
		return nil, fmt.Errorf("convert: storage too small for %s", name)
	}

	out := make([]float32, elements)
	copy(out, data[offset:offset+elements])

	return &Tensor{Name: name, Shape: shape, Kind: KindF32, Data: out}, nil
}

// storageFloats extrahiert float32-Daten aus einem Storage.
func storageFloats(source pytorch.StorageInterface) ([]float32, error) {
	switch s := source.(type) {
	case *pytorch.FloatStorage:
		return s.Data, nil
	case *pytorch.HalfStorage:
		return s.Data, nil
	case *pytorch.BFloat16Storage:
		return s.Data, nil
	case *pytorch.DoubleStorage:
		out := make([]float32, len(s.Data))
		for i, v := range s.Data {
			out[i] = float32(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, source)
	}
}

// contiguous prueft ob die Strides einem dicht gepackten
// Row-Major-Layout entsprechen.
func contiguous(pt *pytorch.Tensor) bool {
	expected := 1
	for i := len(pt.Size) - 1; i >= 0; i-- {
		if pt.Stride[i] != expected {
			return false
		}
		expected *= pt.Size[i]
	}
	return true
}
