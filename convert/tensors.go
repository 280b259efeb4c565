// MODUL: tensors
// ZWECK: Tensor-Abstraktion und Namens-Mapping CLIP-Checkpoint zu GGUF
// INPUT: Checkpoint-Tensoren (PyTorch/Safetensors Namen)
// OUTPUT: GGUF-Tensoren mit kanonischen Namen
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: github.com/pdevine/tensor (Split von in_proj)
// HINWEISE: OpenAI-Checkpoints buendeln Q/K/V in attn.in_proj_*

package convert

import (
	"fmt"
	"strings"

	"github.com/pdevine/tensor"
	"github.com/pdevine/tensor/native"
)

// TensorKind ist der GGUF-Datentyp eines Tensors.
type TensorKind uint32

const (
	KindF32 TensorKind = 0
	KindF16 TensorKind = 1
)

// Tensor ist ein konvertierbarer Gewichts-Tensor.
type Tensor struct {
	Name  string
	Shape []uint64
	Kind  TensorKind
	Data  []float32
}

// Elements gibt die Gesamtzahl der Elemente zurueck.
func (t *Tensor) Elements() int {
	n := 1
	for _, d := range t.Shape {
		n *= int(d)
	}
	return n
}

// ============================================================================
// Namens-Mapping
// ============================================================================

// nameReplacer bildet HuggingFace-CLIP-Namen auf GGUF-Namen ab.
var nameReplacer = strings.NewReplacer(
	"vision_model.", "v.",
	"text_model.", "t.",
	"encoder.layers.", "blk.",
	"embeddings.patch_embedding", "patch_embd",
	"embeddings.position_embedding", "position_embd",
	"embeddings.class_embedding", "class_embd",
	"embeddings.token_embedding", "token_embd",
	"self_attn.q_proj", "attn_q",
	"self_attn.k_proj", "attn_k",
	"self_attn.v_proj", "attn_v",
	"self_attn.out_proj", "attn_out",
	"layer_norm1", "ln1",
	"layer_norm2", "ln2",
	"pre_layrnorm", "pre_ln", // sic: Tippfehler im HF-Checkpoint
	"post_layernorm", "post_ln",
	"final_layer_norm", "final_ln",
	"mlp.fc1", "ffn_up",
	"mlp.fc2", "ffn_down",
	"visual_projection", "v.proj",
	"text_projection", "t.proj",
)

// MapName uebersetzt einen Checkpoint-Namen in den GGUF-Namen.
func MapName(name string) string {
	return nameReplacer.Replace(name)
}

// ============================================================================
// in_proj Split (OpenAI-Checkpoints)
// ============================================================================

// SplitInProj zerlegt einen gebuendelten in_proj-Tensor (Q, K, V
// uebereinander gestapelt) in drei gleich grosse Tensoren.
// weight: [3*dim, dim], bias: [3*dim].
func SplitInProj(t *Tensor) ([]*Tensor, error) {
	if t.Shape[0]%3 != 0 {
		return nil, fmt.Errorf("convert: in_proj dim %d not divisible by 3", t.Shape[0])
	}
	dim := int(t.Shape[0]) / 3

	shape := make([]int, len(t.Shape))
	for i, d := range t.Shape {
		shape[i] = int(d)
	}

	full := tensor.New(tensor.WithShape(shape...), tensor.WithBacking(t.Data))

	suffixes := []string{"attn_q", "attn_k", "attn_v"}
	out := make([]*Tensor, 3)
	for i := range 3 {
		part, err := full.Slice(tensor.S(i*dim, (i+1)*dim))
		if err != nil {
			return nil, fmt.Errorf("convert: slice in_proj: %w", err)
		}

		data, err := flatten(part.Materialize())
		if err != nil {
			return nil, err
		}

		partShape := make([]uint64, len(t.Shape))
		copy(partShape, t.Shape)
		partShape[0] = uint64(dim)

		// "attn.in_proj_weight" wird zu "attn_q.weight" usw.
		name := strings.Replace(t.Name, "attn.in_proj_", suffixes[i]+".", 1)
		out[i] = &Tensor{Name: name, Shape: partShape, Kind: t.Kind, Data: data}
	}
	return out, nil
}

// flatten kopiert einen (ggf. 2D) Tensor in ein flaches float32-Slice.
func flatten(t tensor.Tensor) ([]float32, error) {
	dense, ok := t.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("convert: unexpected tensor type %T", t)
	}

	if dense.Dims() == 1 {
		data, ok := dense.Data().([]float32)
		if !ok {
			return nil, fmt.Errorf("convert: unexpected backing type %T", dense.Data())
		}
		out := make([]float32, len(data))
		copy(out, data)
		return out, nil
	}

	rows, err := native.MatrixF32(dense)
	if err != nil {
		return nil, fmt.Errorf("convert: materialize matrix: %w", err)
	}

	var out []float32
	for _, row := range rows {
		out = append(out, row...)
	}
	return out, nil
}
