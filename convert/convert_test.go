// MODUL: convert_test
// ZWECK: Tests fuer Namens-Mapping, in_proj-Split und GGUF-Roundtrip
// INPUT: Handgebaute Tensoren und Safetensors-Bytes
// OUTPUT: Testresultate
// NEBENEFFEKTE: keine (t.TempDir raeumt auf)
// ABHAENGIGKEITEN: testing, encoder (GGUF-Leser), go-cmp
// HINWEISE: Geschriebene GGUF-Dateien muessen vom Encoder lesbar sein

package convert

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/7blacky7/zeroshot/encoder"
)

func TestMapName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			"vision_model.encoder.layers.0.self_attn.q_proj.weight",
			"v.blk.0.attn_q.weight",
		},
		{
			"text_model.encoder.layers.11.mlp.fc1.bias",
			"t.blk.11.ffn_up.bias",
		},
		{
			"vision_model.embeddings.patch_embedding.weight",
			"v.patch_embd.weight",
		},
		{
			"text_model.final_layer_norm.weight",
			"t.final_ln.weight",
		},
		{"visual_projection.weight", "v.proj.weight"},
	}
	for _, tt := range tests {
		if got := MapName(tt.in); got != tt.want {
			t.Errorf("MapName(%q) = %q, erwartet %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitInProjWeight(t *testing.T) {
	// [6, 2] Matrix: Q = Zeilen 0-1, K = 2-3, V = 4-5
	data := make([]float32, 12)
	for i := range data {
		data[i] = float32(i)
	}
	in := &Tensor{
		Name:  "vision_model.encoder.layers.0.attn.in_proj_weight",
		Shape: []uint64{6, 2},
		Kind:  KindF32,
		Data:  data,
	}

	parts, err := SplitInProj(in)
	if err != nil {
		t.Fatalf("SplitInProj fehlgeschlagen: %v", err)
	}
	if len(parts) != 3 {
		t.Fatalf("Teile = %d", len(parts))
	}

	if parts[0].Name != "vision_model.encoder.layers.0.attn_q.weight" {
		t.Errorf("Q-Name = %q", parts[0].Name)
	}
	if diff := cmp.Diff([]uint64{2, 2}, parts[1].Shape); diff != "" {
		t.Errorf("K-Shape Differenz:\n%s", diff)
	}
	if diff := cmp.Diff([]float32{8, 9, 10, 11}, parts[2].Data); diff != "" {
		t.Errorf("V-Daten Differenz:\n%s", diff)
	}
}

func TestSplitInProjBias(t *testing.T) {
	in := &Tensor{
		Name:  "text_model.encoder.layers.3.attn.in_proj_bias",
		Shape: []uint64{6},
		Kind:  KindF32,
		Data:  []float32{0, 1, 2, 3, 4, 5},
	}

	parts, err := SplitInProj(in)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{2, 3}, parts[1].Data); diff != "" {
		t.Errorf("K-Bias Differenz:\n%s", diff)
	}
}

func TestSplitInProjBadShape(t *testing.T) {
	in := &Tensor{Name: "x", Shape: []uint64{5}, Data: make([]float32, 5)}
	if _, err := SplitInProj(in); err == nil {
		t.Error("nicht durch 3 teilbare Dimension akzeptiert")
	}
}

// writeTestSafetensors baut eine minimale Safetensors-Datei.
func writeTestSafetensors(t *testing.T, dir string) string {
	t.Helper()

	f32 := []float32{1.5, -2.25}
	raw32 := make([]byte, 8)
	for i, v := range f32 {
		binary.LittleEndian.PutUint32(raw32[i*4:], math.Float32bits(v))
	}

	// 1.0 als IEEE half: 0x3C00
	raw16 := []byte{0x00, 0x3C}

	header := map[string]any{
		"a.weight": map[string]any{
			"dtype": "F32", "shape": []int{2}, "data_offsets": []int{0, 8},
		},
		"b.weight": map[string]any{
			"dtype": "F16", "shape": []int{1}, "data_offsets": []int{8, 10},
		},
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		t.Fatal(err)
	}

	var buf []byte
	lenBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(lenBytes, uint64(len(headerJSON)))
	buf = append(buf, lenBytes...)
	buf = append(buf, headerJSON...)
	buf = append(buf, raw32...)
	buf = append(buf, raw16...)

	path := filepath.Join(dir, "model.safetensors")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSafetensors(t *testing.T) {
	path := writeTestSafetensors(t, t.TempDir())

	tensors, err := LoadSafetensors(path)
	if err != nil {
		t.Fatalf("LoadSafetensors fehlgeschlagen: %v", err)
	}
	if len(tensors) != 2 {
		t.Fatalf("Tensoren = %d", len(tensors))
	}

	// Sortierte Reihenfolge: a.weight vor b.weight
	if tensors[0].Name != "a.weight" {
		t.Errorf("erster Tensor = %q", tensors[0].Name)
	}
	if diff := cmp.Diff([]float32{1.5, -2.25}, tensors[0].Data); diff != "" {
		t.Errorf("F32-Daten Differenz:\n%s", diff)
	}
	if tensors[1].Data[0] != 1.0 {
		t.Errorf("F16-Wert = %v, erwartet 1.0", tensors[1].Data[0])
	}
}

func TestWriteGGUFRoundtrip(t *testing.T) {
	kv := NewKV()
	kv.Set("general.architecture", "clip")
	kv.Set("general.name", "test")
	kv.Set("clip.vision.image_size", uint32(224))

	tensors := []*Tensor{
		{Name: "v.proj.weight", Shape: []uint64{2, 2}, Kind: KindF32, Data: []float32{1, 2, 3, 4}},
		{Name: "t.proj.weight", Shape: []uint64{2, 2}, Kind: KindF16, Data: []float32{0.5, 1, 1.5, 2}},
	}

	path := filepath.Join(t.TempDir(), "model.gguf")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteGGUF(f, kv, tensors); err != nil {
		t.Fatalf("WriteGGUF fehlgeschlagen: %v", err)
	}
	f.Close()

	// Die geschriebene Datei muss vom Encoder-Leser verstanden werden
	arch, err := encoder.DetectArchitecture(path)
	if err != nil {
		t.Fatalf("DetectArchitecture fehlgeschlagen: %v", err)
	}
	if arch != "clip" {
		t.Errorf("arch = %q", arch)
	}

	rf, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()

	meta, err := encoder.ReadGGUFStrings(rf)
	if err != nil {
		t.Fatal(err)
	}
	if meta["general.name"] != "test" {
		t.Errorf("name = %q", meta["general.name"])
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	writeTestSafetensors(t, dir)

	config := `{
		"projection_dim": 512,
		"vision_config": {"hidden_size": 768, "image_size": 224, "patch_size": 32, "num_hidden_layers": 12},
		"text_config": {"hidden_size": 512, "max_position_embeddings": 77, "vocab_size": 49408, "num_hidden_layers": 12}
	}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "out.gguf")
	if err := ConvertFile(dir, out, Options{OutputKind: KindF16, Name: "mini"}); err != nil {
		t.Fatalf("ConvertFile fehlgeschlagen: %v", err)
	}

	arch, err := encoder.DetectArchitecture(out)
	if err != nil {
		t.Fatal(err)
	}
	if arch != "clip" {
		t.Errorf("arch = %q", arch)
	}
}

func TestConvertMissingCheckpoint(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := ConvertFile(dir, filepath.Join(t.TempDir(), "out.gguf"), Options{})
	if err == nil {
		t.Fatal("fehlender Checkpoint akzeptiert")
	}
}

func TestTransformTensorsKeepsBiasF32(t *testing.T) {
	tensors := []*Tensor{
		{Name: "text_model.final_layer_norm.bias", Shape: []uint64{4}, Kind: KindF32, Data: make([]float32, 4)},
		{Name: "visual_projection.weight", Shape: []uint64{2, 2}, Kind: KindF32, Data: make([]float32, 4)},
	}

	out, err := transformTensors(tensors, KindF16)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Kind != KindF32 {
		t.Error("1D-Tensor wurde zu F16 konvertiert")
	}
	if out[1].Kind != KindF16 {
		t.Error("2D-Gewicht blieb F32")
	}
}
