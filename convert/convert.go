// MODUL: convert
// ZWECK: CLIP-Checkpoints (PyTorch/Safetensors) zu GGUF konvertieren
// INPUT: Snapshot-Verzeichnis mit Checkpoint und config.json
// OUTPUT: GGUF-Datei fuer den GGML-Encoder
// NEBENEFFEKTE: Liest Checkpoint, schreibt Zieldatei
// ABHAENGIGKEITEN: torch.go, safetensors.go, writer.go, log/slog
// HINWEISE: Gebuendelte in_proj-Tensoren werden in Q/K/V zerlegt

package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoCheckpoint: weder model.safetensors noch pytorch_model.bin gefunden.
var ErrNoCheckpoint = errors.New("convert: no checkpoint found")

// Options steuert die Konvertierung.
type Options struct {
	// OutputKind ist der Ziel-Datentyp der Gewichte (F32 oder F16).
	OutputKind TensorKind

	// Name landet als general.name in den Metadaten.
	Name string
}

// clipConfig sind die relevanten Felder aus config.json.
type clipConfig struct {
	VisionConfig struct {
		HiddenSize int `json:"hidden_size"`
		ImageSize  int `json:"image_size"`
		PatchSize  int `json:"patch_size"`
		Layers     int `json:"num_hidden_layers"`
	} `json:"vision_config"`
	TextConfig struct {
		HiddenSize  int `json:"hidden_size"`
		MaxPosition int `json:"max_position_embeddings"`
		VocabSize   int `json:"vocab_size"`
		Layers      int `json:"num_hidden_layers"`
	} `json:"text_config"`
	ProjectionDim int `json:"projection_dim"`
}

// Convert liest den Checkpoint aus dir und schreibt GGUF nach w.
func Convert(dir string, w io.WriteSeeker, opts Options) error {
	log := slog.Default().With("component", "convert")

	cfg, err := loadConfig(dir)
	if err != nil {
		return err
	}

	tensors, err := loadCheckpoint(dir)
	if err != nil {
		return err
	}
	log.Info("checkpoint loaded", "tensors", len(tensors))

	out, err := transformTensors(tensors, opts.OutputKind)
	if err != nil {
		return err
	}

	kv := buildKV(cfg, opts.Name)
	if err := WriteGGUF(w, kv, out); err != nil {
		return err
	}
	log.Info("gguf written", "tensors", len(out), "kv", kv.Len())
	return nil
}

// ConvertFile ist die Datei-zu-Datei Variante von Convert.
func ConvertFile(dir, outputPath string, opts Options) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("convert: create output: %w", err)
	}
	defer f.Close()

	if err := Convert(dir, f, opts); err != nil {
		os.Remove(outputPath)
		return err
	}
	return nil
}

// loadConfig liest config.json aus dem Snapshot.
func loadConfig(dir string) (*clipConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		return nil, fmt.Errorf("convert: read config: %w", err)
	}

	var cfg clipConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("convert: parse config: %w", err)
	}
	return &cfg, nil
}

// loadCheckpoint bevorzugt Safetensors, faellt auf PyTorch-Pickle zurueck.
func loadCheckpoint(dir string) ([]*Tensor, error) {
	if path := filepath.Join(dir, "model.safetensors"); exists(path) {
		return LoadSafetensors(path)
	}
	if path := filepath.Join(dir, "pytorch_model.bin"); exists(path) {
		return LoadTorch(path)
	}
	return nil, fmt.Errorf("%w: in %s", ErrNoCheckpoint, dir)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// transformTensors mappt Namen, zerlegt in_proj und setzt den Ziel-Typ.
// Bias- und Norm-Tensoren bleiben F32, Gewichte folgen outputKind.
func transformTensors(tensors []*Tensor, outputKind TensorKind) ([]*Tensor, error) {
	var out []*Tensor
	for _, t := range tensors {
		expanded := []*Tensor{t}
		if strings.Contains(t.Name, "attn.in_proj_") {
			split, err := SplitInProj(t)
			if err != nil {
				return nil, err
			}
			expanded = split
		}

		for _, e := range expanded {
			e.Name = MapName(e.Name)
			if outputKind == KindF16 && keepHalf(e) {
				e.Kind = KindF16
			}
			out = append(out, e)
		}
	}
	return out, nil
}

// keepHalf entscheidet ob ein Tensor in F16 abgelegt werden darf.
// 1D-Tensoren (Bias, Norm-Parameter) bleiben in voller Praezision.
func keepHalf(t *Tensor) bool {
	return len(t.Shape) >= 2
}

// buildKV baut die GGUF-Metadaten in fester Reihenfolge.
func buildKV(cfg *clipConfig, name string) *KV {
	kv := NewKV()
	kv.Set("general.architecture", "clip")
	if name != "" {
		kv.Set("general.name", name)
	}
	kv.Set("clip.projection_dim", uint32(cfg.ProjectionDim))
	kv.Set("clip.vision.image_size", uint32(cfg.VisionConfig.ImageSize))
	kv.Set("clip.vision.patch_size", uint32(cfg.VisionConfig.PatchSize))
	kv.Set("clip.vision.embedding_length", uint32(cfg.VisionConfig.HiddenSize))
	kv.Set("clip.vision.block_count", uint32(cfg.VisionConfig.Layers))
	kv.Set("clip.text.context_length", uint32(cfg.TextConfig.MaxPosition))
	kv.Set("clip.text.embedding_length", uint32(cfg.TextConfig.HiddenSize))
	kv.Set("clip.text.vocab_size", uint32(cfg.TextConfig.VocabSize))
	kv.Set("clip.text.block_count", uint32(cfg.TextConfig.Layers))
	return kv
}
