// MODUL: safetensors
// ZWECK: Safetensors-Checkpoints zu Tensoren lesen
// INPUT: model.safetensors (8-Byte Header-Laenge + JSON + Rohdaten)
// OUTPUT: Tensor-Liste mit float32-Daten
// NEBENEFFEKTE: Liest die gesamte Datei in den Speicher
// ABHAENGIGKEITEN: github.com/x448/float16, github.com/d4l3k/go-bfloat16
// HINWEISE: F16/BF16 werden beim Lesen zu float32 erweitert

package convert

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// ErrBadSafetensors wird bei einem ungueltigen Dateiaufbau geliefert.
var ErrBadSafetensors = errors.New("convert: invalid safetensors file")

// safetensorEntry beschreibt einen Tensor im JSON-Header.
type safetensorEntry struct {
	DType   string    `json:"dtype"`
	Shape   []uint64  `json:"shape"`
	Offsets [2]uint64 `json:"data_offsets"`
}

// LoadSafetensors liest alle Tensoren aus einer Safetensors-Datei.
func LoadSafetensors(path string) ([]*Tensor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("convert: read safetensors: %w", err)
	}
	if len(raw) < 8 {
		return nil, ErrBadSafetensors
	}

	headerLen := binary.LittleEndian.Uint64(raw[:8])
	if 8+headerLen > uint64(len(raw)) {
		return nil, ErrBadSafetensors
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(raw[8:8+headerLen], &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSafetensors, err)
	}
	data := raw[8+headerLen:]

	// Deterministische Reihenfolge fuer reproduzierbare Ausgaben
	names := make([]string, 0, len(header))
	for name := range header {
		if name == "__metadata__" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var tensors []*Tensor
	for _, name := range names {
		var entry safetensorEntry
		if err := json.Unmarshal(header[name], &entry); err != nil {
			return nil, fmt.Errorf("%w: tensor %s: %v", ErrBadSafetensors, name, err)
		}

		t, err := fromSafetensorEntry(name, entry, data)
		if err != nil {
			return nil, err
		}
		tensors = append(tensors, t)
	}
	return tensors, nil
}

// fromSafetensorEntry dekodiert die Rohdaten eines Tensors.
func fromSafetensorEntry(name string, entry safetensorEntry, data []byte) (*Tensor, error) {
	start, end := entry.Offsets[0], entry.Offsets[1]
	if start > end || end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: offsets of %s out of range", ErrBadSafetensors, name)
	}
	raw := data[start:end]

	var floats []float32
	switch entry.DType {
	case "F32":
		floats = make([]float32, len(raw)/4)
		for i := range floats {
			floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	case "F16":
		floats = make([]float32, len(raw)/2)
		for i := range floats {
			floats[i] = float16.Frombits(binary.LittleEndian.Uint16(raw[i*2:])).Float32()
		}
	case "BF16":
		floats = bfloat16.DecodeFloat32(raw)
	default:
		return nil, fmt.Errorf("%w: dtype %s", ErrUnsupported, entry.DType)
	}

	return &Tensor{Name: name, Shape: entry.Shape, Kind: KindF32, Data: floats}, nil
}
