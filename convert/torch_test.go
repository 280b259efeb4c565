// MODUL: torch_test
// ZWECK: Tests fuer das Einsammeln von Tensoren aus State-Dicts
// INPUT: Handgebaute OrderedDict/Dict-Strukturen mit pytorch-Tensoren
// OUTPUT: Testresultate
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: testing, gopickle, go-cmp
// HINWEISE: OrderedDict wird ueber seine Eintrags-Liste iteriert

package convert

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"
)

// torchTensor baut einen dicht gepackten 1D-Tensor.
func torchTensor(data []float32) *pytorch.Tensor {
	return &pytorch.Tensor{
		Source: &pytorch.FloatStorage{Data: data},
		Size:   []int{len(data)},
		Stride: []int{1},
	}
}

func TestStateDictTensorsOrderedDict(t *testing.T) {
	dict := types.NewOrderedDict()
	dict.Set("t.proj.weight", torchTensor([]float32{1, 2}))
	dict.Set("_metadata", "nicht-tensor")
	dict.Set("v.proj.weight", torchTensor([]float32{3, 4, 5}))

	tensors, err := stateDictTensors(dict)
	if err != nil {
		t.Fatalf("stateDictTensors: %v", err)
	}
	if len(tensors) != 2 {
		t.Fatalf("len = %d, erwartet 2", len(tensors))
	}

	// Eintrags-Reihenfolge bleibt erhalten, Nicht-Tensoren fallen raus.
	if tensors[0].Name != "t.proj.weight" || tensors[1].Name != "v.proj.weight" {
		t.Errorf("Namen = %q, %q", tensors[0].Name, tensors[1].Name)
	}
	if diff := cmp.Diff([]float32{3, 4, 5}, tensors[1].Data); diff != "" {
		t.Errorf("Daten (-erwartet +erhalten):\n%s", diff)
	}
}

func TestStateDictTensorsDict(t *testing.T) {
	dict := types.NewDict()
	dict.Set("t.token_embd.weight", torchTensor([]float32{7}))

	tensors, err := stateDictTensors(dict)
	if err != nil {
		t.Fatalf("stateDictTensors: %v", err)
	}
	if len(tensors) != 1 || tensors[0].Name != "t.token_embd.weight" {
		t.Fatalf("tensors = %+v", tensors)
	}
}

func TestStateDictTensorsRejectsNonDict(t *testing.T) {
	_, err := stateDictTensors([]string{"kein", "dict"})
	if !errors.Is(err, ErrNotStateDict) {
		t.Fatalf("err = %v, erwartet ErrNotStateDict", err)
	}
}
