// MODUL: vocab
// ZWECK: Vokabular und Merge-Regeln aus einem Modell-Snapshot laden
// INPUT: Modell-Verzeichnis mit vocab.json und merges.txt
// OUTPUT: Initialisierter Tokenizer
// NEBENEFFEKTE: Dateisystem-Lesezugriff
// ABHAENGIGKEITEN: encoding/json (Standard-Library)
// HINWEISE: Dateinamen folgen dem HuggingFace-Snapshot-Layout

package tokenizer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	vocabFile  = "vocab.json"
	mergesFile = "merges.txt"
)

// LoadFromDir laedt vocab.json und merges.txt aus einem Modell-Verzeichnis.
func LoadFromDir(dir string) (*Tokenizer, error) {
	vocab, err := loadVocab(filepath.Join(dir, vocabFile))
	if err != nil {
		return nil, err
	}

	merges, err := loadMerges(filepath.Join(dir, mergesFile))
	if err != nil {
		return nil, err
	}

	return New(vocab, merges)
}

// loadVocab liest die Token-zu-ID Zuordnung.
func loadVocab(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: read vocab: %w", err)
	}

	var vocab map[string]int
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("tokenizer: parse vocab: %w", err)
	}
	return vocab, nil
}

// loadMerges liest die Merge-Regeln in Rang-Reihenfolge.
// Kommentarzeilen ("#version: ...") und Leerzeilen werden uebersprungen.
func loadMerges(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: read merges: %w", err)
	}
	defer f.Close()

	var merges []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		merges = append(merges, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tokenizer: scan merges: %w", err)
	}
	return merges, nil
}
