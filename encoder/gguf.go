// MODUL: gguf
// ZWECK: GGUF-Header lesen fuer Architektur-Erkennung
// INPUT: GGUF-Datei (io.ReadSeeker oder Pfad)
// OUTPUT: Architektur-String und String-Metadaten
// NEBENEFFEKTE: Keine (nur Lesen)
// ABHAENGIGKEITEN: encoding/binary, io (Standard-Library)
// HINWEISE: Liest nur Header und Metadata, nicht die Tensor-Daten

package encoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrInvalidGGUF wird zurueckgegeben wenn die GGUF-Datei ungueltig ist.
var ErrInvalidGGUF = errors.New("encoder: invalid GGUF file")

const (
	ggufMagic      = "GGUF"
	ggufTypeString = uint32(8)
	ggufTypeArray  = uint32(9)

	// KeyArchitecture ist der Metadata-Key fuer den Modell-Typ.
	KeyArchitecture = "general.architecture"
)

// ggufScalarSizes enthaelt die Byte-Groessen der GGUF-Skalartypen.
var ggufScalarSizes = map[uint32]int64{
	0:  1, // UINT8
	1:  1, // INT8
	2:  2, // UINT16
	3:  2, // INT16
	4:  4, // UINT32
	5:  4, // INT32
	6:  4, // FLOAT32
	7:  1, // BOOL
	10: 8, // UINT64
	11: 8, // INT64
	12: 8, // FLOAT64
}

// DetectArchitecture liest den "general.architecture" Key aus einer
// GGUF-Datei. Wird von der Factory fuer Auto-Detection verwendet.
func DetectArchitecture(modelPath string) (string, error) {
	f, err := os.Open(modelPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
	}
	defer f.Close()

	meta, err := ReadGGUFStrings(f)
	if err != nil {
		return "", err
	}

	arch, ok := meta[KeyArchitecture]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrInvalidGGUF, KeyArchitecture)
	}
	return arch, nil
}

// ReadGGUFStrings liest alle String-Metadaten aus einem GGUF-Header.
// Nicht-String-Werte werden uebersprungen.
func ReadGGUFStrings(r io.ReadSeeker) (map[string]string, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != ggufMagic {
		return nil, ErrInvalidGGUF
	}

	// Version, Tensor-Count, KV-Count
	var header struct {
		Version     uint32
		TensorCount uint64
		KVCount     uint64
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, ErrInvalidGGUF
	}

	meta := make(map[string]string)
	for i := uint64(0); i < header.KVCount; i++ {
		key, err := readGGUFKey(r)
		if err != nil {
			return nil, err
		}

		var valueType uint32
		if err := binary.Read(r, binary.LittleEndian, &valueType); err != nil {
			return nil, ErrInvalidGGUF
		}

		if valueType == ggufTypeString {
			val, err := readGGUFString(r)
			if err != nil {
				return nil, err
			}
			meta[key] = val
			continue
		}

		if err := skipGGUFValue(r, valueType); err != nil {
			return nil, err
		}
	}

	return meta, nil
}

// readGGUFKey liest einen laengen-praefixierten Key.
func readGGUFKey(r io.Reader) (string, error) {
	var keyLen uint64
	if err := binary.Read(r, binary.LittleEndian, &keyLen); err != nil {
		return "", ErrInvalidGGUF
	}
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return "", ErrInvalidGGUF
	}
	return string(key), nil
}

// readGGUFString liest einen String-Wert (8-Byte-Laenge + Bytes).
func readGGUFString(r io.Reader) (string, error) {
	var strLen uint64
	if err := binary.Read(r, binary.LittleEndian, &strLen); err != nil {
		return "", ErrInvalidGGUF
	}
	str := make([]byte, strLen)
	if _, err := io.ReadFull(r, str); err != nil {
		return "", ErrInvalidGGUF
	}
	return string(str), nil
}

// skipGGUFValue ueberspringt einen Wert anhand seines Typs.
func skipGGUFValue(r io.ReadSeeker, valueType uint32) error {
	switch valueType {
	case ggufTypeString:
		var strLen uint64
		if err := binary.Read(r, binary.LittleEndian, &strLen); err != nil {
			return ErrInvalidGGUF
		}
		_, err := r.Seek(int64(strLen), io.SeekCurrent)
		return err
	case ggufTypeArray:
		var elemType uint32
		if err := binary.Read(r, binary.LittleEndian, &elemType); err != nil {
			return ErrInvalidGGUF
		}
		var count uint64
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return ErrInvalidGGUF
		}
		for i := uint64(0); i < count; i++ {
			if err := skipGGUFValue(r, elemType); err != nil {
				return err
			}
		}
		return nil
	default:
		size, ok := ggufScalarSizes[valueType]
		if !ok {
			return ErrInvalidGGUF
		}
		_, err := r.Seek(size, io.SeekCurrent)
		return err
	}
}
