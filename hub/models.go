// MODUL: models
// ZWECK: Katalog der bekannten CLIP-Backbones und des multilingualen Paars
// INPUT: Backbone-Name (z.B. "ViT-B/32")
// OUTPUT: Hub-Repository, Dateinamen und Modell-Parameter
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: Keine (Standard-Library)
// HINWEISE: Alle Backbones teilen denselben BPE-Tokenizer

package hub

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownBackbone wird bei nicht katalogisierten Backbone-Namen geliefert.
var ErrUnknownBackbone = errors.New("hub: unknown backbone")

// DefaultBackbone ist das Standard-Backbone des Klassifikators.
const DefaultBackbone = "ViT-B/32"

// onnxRepo hostet die ONNX-Exporte aller OpenAI-CLIP-Varianten.
const onnxRepo = "mlunar/clip-variants"

// tokenizerRepo liefert vocab.json und merges.txt; der BPE-Tokenizer
// ist fuer alle OpenAI-CLIP-Backbones identisch.
const tokenizerRepo = "openai/clip-vit-base-patch32"

// TokenizerFiles sind die Dateien des BPE-Tokenizers im Snapshot.
var TokenizerFiles = []string{"vocab.json", "merges.txt"}

// Backbone beschreibt ein gemeinsames Bild/Text-Modell (englisch).
type Backbone struct {
	Name          string
	Repo          string
	VisualFile    string
	TextualFile   string
	TokenizerRepo string
	EmbeddingDim  int
	ImageSize     int
	ContextLen    int
}

// Files gibt die herunterzuladenden Snapshot-Dateien zurueck.
func (b Backbone) Files() []string {
	return []string{b.VisualFile, b.TextualFile}
}

// backbone baut einen Katalog-Eintrag fuer eine OpenAI-CLIP-Variante.
func backbone(name, slug string, dim, imageSize int) Backbone {
	return Backbone{
		Name:          name,
		Repo:          onnxRepo,
		VisualFile:    fmt.Sprintf("models/clip-%s-visual-float32.onnx", slug),
		TextualFile:   fmt.Sprintf("models/clip-%s-textual-float32.onnx", slug),
		TokenizerRepo: tokenizerRepo,
		EmbeddingDim:  dim,
		ImageSize:     imageSize,
		ContextLen:    77,
	}
}

// backbones ist der Katalog aller unterstuetzten englischen Backbones.
var backbones = map[string]Backbone{
	"RN50":     backbone("RN50", "resnet-50", 1024, 224),
	"RN101":    backbone("RN101", "resnet-101", 512, 224),
	"RN50x4":   backbone("RN50x4", "resnet-50x4", 640, 288),
	"RN50x16":  backbone("RN50x16", "resnet-50x16", 768, 384),
	"RN50x64":  backbone("RN50x64", "resnet-50x64", 1024, 448),
	"ViT-B/32": backbone("ViT-B/32", "vit-base-patch32", 512, 224),
	"ViT-B/16": backbone("ViT-B/16", "vit-base-patch16", 512, 224),
	"ViT-L/14": backbone("ViT-L/14", "vit-large-patch14", 768, 224),
}

// LookupBackbone loest einen Backbone-Namen im Katalog auf.
func LookupBackbone(name string) (Backbone, error) {
	if name == "" {
		name = DefaultBackbone
	}
	b, ok := backbones[name]
	if !ok {
		return Backbone{}, fmt.Errorf("%w: %q (known: %s)",
			ErrUnknownBackbone, name, strings.Join(BackboneNames(), ", "))
	}
	return b, nil
}

// BackboneNames listet alle Katalog-Namen sortiert auf.
func BackboneNames() []string {
	names := make([]string, 0, len(backbones))
	for name := range backbones {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ============================================================================
// Multilinguales Encoder-Paar
// ============================================================================

// EncoderPair beschreibt das feste Paar fuer nicht-englische Sprachen:
// ein englischer Bild-Encoder plus ein multilingualer Text-Encoder,
// der in denselben Embedding-Raum projiziert.
type EncoderPair struct {
	ImageRepo    string
	TextRepo     string
	EmbeddingDim int
	ImageSize    int
	ContextLen   int
}

// MultilingualPair ist das einzige unterstuetzte Encoder-Paar.
var MultilingualPair = EncoderPair{
	ImageRepo:    "sentence-transformers/clip-ViT-B-32",
	TextRepo:     "sentence-transformers/clip-ViT-B-32-multilingual-v1",
	EmbeddingDim: 512,
	ImageSize:    224,
	ContextLen:   128,
}
