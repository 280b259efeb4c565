// MODUL: writer
// ZWECK: GGUF-Dateien schreiben (Header, KV-Metadata, Tensor-Daten)
// INPUT: KV-Metadaten in Einfuege-Reihenfolge, Tensor-Liste
// OUTPUT: GGUF-Bytes auf einem io.WriteSeeker
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: github.com/wk8/go-ordered-map, github.com/x448/float16
// HINWEISE: Tensor-Daten werden auf 32 Bytes ausgerichtet

package convert

import (
	"encoding/binary"
	"fmt"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/x448/float16"
)

const (
	ggufMagic   = "GGUF"
	ggufVersion = uint32(3)

	// ggufAlignment ist die Ausrichtung der Tensor-Daten.
	ggufAlignment = 32

	ggufTypeUint32  = uint32(4)
	ggufTypeFloat32 = uint32(6)
	ggufTypeBool    = uint32(7)
	ggufTypeString  = uint32(8)
	ggufTypeUint64  = uint32(10)
)

// KV haelt die Metadaten in deterministischer Einfuege-Reihenfolge.
type KV struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewKV erstellt leere Metadaten.
func NewKV() *KV {
	return &KV{m: orderedmap.New[string, any]()}
}

// Set fuegt einen Wert hinzu bzw. ueberschreibt ihn in-place.
func (kv *KV) Set(key string, value any) {
	kv.m.Set(key, value)
}

// Len gibt die Anzahl der Eintraege zurueck.
func (kv *KV) Len() int {
	return kv.m.Len()
}

// WriteGGUF schreibt Metadaten und Tensoren als GGUF-Datei.
func WriteGGUF(w io.WriteSeeker, kv *KV, tensors []*Tensor) error {
	if _, err := w.Write([]byte(ggufMagic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, ggufVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(tensors))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(kv.Len())); err != nil {
		return err
	}

	for pair := kv.m.Oldest(); pair != nil; pair = pair.Next() {
		if err := writeKVPair(w, pair.Key, pair.Value); err != nil {
			return fmt.Errorf("convert: write kv %s: %w", pair.Key, err)
		}
	}

	// Tensor-Infos: Name, Dimensionen (umgekehrt, GGUF ist column-major),
	// Typ, Offset in den Daten
	var offset uint64
	for _, t := range tensors {
		if err := writeString(w, t.Name); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(t.Shape))); err != nil {
			return err
		}
		for i := len(t.Shape) - 1; i >= 0; i-- {
			if err := binary.Write(w, binary.LittleEndian, t.Shape[i]); err != nil {
				return err
			}
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(t.Kind)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, offset); err != nil {
			return err
		}
		offset = align(offset+tensorBytes(t), ggufAlignment)
	}

	// Datenbereich beginnt ausgerichtet
	if err := alignWriter(w); err != nil {
		return err
	}

	for _, t := range tensors {
		if err := writeTensorData(w, t); err != nil {
			return fmt.Errorf("convert: write tensor %s: %w", t.Name, err)
		}
		if err := alignWriter(w); err != nil {
			return err
		}
	}
	return nil
}

// writeKVPair schreibt einen typisierten Metadata-Eintrag.
func writeKVPair(w io.Writer, key string, value any) error {
	if err := writeString(w, key); err != nil {
		return err
	}

	switch v := value.(type) {
	case string:
		if err := binary.Write(w, binary.LittleEndian, ggufTypeString); err != nil {
			return err
		}
		return writeString(w, v)
	case uint32:
		if err := binary.Write(w, binary.LittleEndian, ggufTypeUint32); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v)
	case int:
		if err := binary.Write(w, binary.LittleEndian, ggufTypeUint32); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, uint32(v))
	case uint64:
		if err := binary.Write(w, binary.LittleEndian, ggufTypeUint64); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v)
	case float32:
		if err := binary.Write(w, binary.LittleEndian, ggufTypeFloat32); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v)
	case bool:
		if err := binary.Write(w, binary.LittleEndian, ggufTypeBool); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v)
	default:
		return fmt.Errorf("unsupported kv type %T", value)
	}
}

// writeTensorData schreibt die Tensor-Daten im Ziel-Datentyp.
func writeTensorData(w io.Writer, t *Tensor) error {
	switch t.Kind {
	case KindF32:
		return binary.Write(w, binary.LittleEndian, t.Data)
	case KindF16:
		bits := make([]uint16, len(t.Data))
		for i, v := range t.Data {
			bits[i] = float16.Fromfloat32(v).Bits()
		}
		return binary.Write(w, binary.LittleEndian, bits)
	default:
		return fmt.Errorf("unsupported tensor kind %d", t.Kind)
	}
}

// writeString schreibt einen laengen-praefixierten String.
func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

// tensorBytes gibt die Byte-Groesse der Tensor-Daten zurueck.
func tensorBytes(t *Tensor) uint64 {
	switch t.Kind {
	case KindF16:
		return uint64(t.Elements()) * 2
	default:
		return uint64(t.Elements()) * 4
	}
}

// align rundet auf das naechste Vielfache auf.
func align(offset uint64, alignment uint64) uint64 {
	return (offset + alignment - 1) / alignment * alignment
}

// alignWriter fuellt mit Nullbytes bis zur naechsten Ausrichtung auf.
func alignWriter(w io.WriteSeeker) error {
	pos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	padded := int64(align(uint64(pos), ggufAlignment))
	if padded == pos {
		return nil
	}
	_, err = w.Write(make([]byte, padded-pos))
	return err
}
