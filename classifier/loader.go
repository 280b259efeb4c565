// MODUL: loader
// ZWECK: Modell-Beschaffung: Hub-Download plus Encoder-Erstellung
// INPUT: Backbone bzw. Encoder-Paar, LoadOptions
// OUTPUT: Einsatzbereite Encoder
// NEBENEFFEKTE: Downloads in den Modell-Cache beim ersten Aufruf
// ABHAENGIGKEITEN: hub, encoder (Registry)
// HINWEISE: Tests injizieren einen eigenen Loader via WithLoader

package classifier

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/7blacky7/zeroshot/encoder"
	"github.com/7blacky7/zeroshot/hub"
)

// Loader beschafft die Encoder einer Variante.
type Loader interface {
	// LoadJoint laedt das gemeinsame Bild/Text-Modell eines Backbones.
	LoadJoint(ctx context.Context, backbone hub.Backbone, opts encoder.LoadOptions) (encoder.JointEncoder, error)

	// LoadPair laedt den festen Bild-Encoder und den multilingualen
	// Text-Encoder.
	LoadPair(ctx context.Context, pair hub.EncoderPair, opts encoder.LoadOptions) (encoder.ImageEncoder, encoder.TextEncoder, error)
}

// hubLoader ist der Standard-Loader: HuggingFace Hub plus Registry.
type hubLoader struct {
	downloader *hub.Downloader
	client     *hub.Client
	cache      *hub.Cache
	registry   *encoder.Registry
}

// newHubLoader verbindet Hub-Client, Cache und Default-Registry.
func newHubLoader() (*hubLoader, error) {
	cache, err := hub.NewCache()
	if err != nil {
		return nil, err
	}
	client := hub.NewClient()

	return &hubLoader{
		downloader: hub.NewDownloader(client, cache),
		client:     client,
		cache:      cache,
		registry:   encoder.DefaultRegistry,
	}, nil
}

// LoadJoint holt ONNX-Exporte und Tokenizer des Backbones und erstellt
// den Joint-Encoder.
func (l *hubLoader) LoadJoint(ctx context.Context, backbone hub.Backbone, opts encoder.LoadOptions) (encoder.JointEncoder, error) {
	dir, err := l.downloader.EnsureModel(ctx, backbone.Repo, "", backbone.Files(), nil)
	if err != nil {
		return nil, err
	}

	// Tokenizer-Dateien liegen in einem eigenen Repository und werden
	// in den Backbone-Snapshot gelegt
	if err := l.ensureTokenizer(ctx, backbone.TokenizerRepo, dir); err != nil {
		return nil, err
	}

	return l.registry.CreateJoint("clip-onnx", dir, opts)
}

// LoadPair holt Bild- und Text-Seite des multilingualen Paars.
func (l *hubLoader) LoadPair(ctx context.Context, pair hub.EncoderPair, opts encoder.LoadOptions) (encoder.ImageEncoder, encoder.TextEncoder, error) {
	imgDir, err := l.downloader.EnsureModel(ctx, pair.ImageRepo, "",
		[]string{"onnx/visual.onnx"}, nil)
	if err != nil {
		return nil, nil, err
	}

	txtDir, err := l.downloader.EnsureModel(ctx, pair.TextRepo, "",
		[]string{"onnx/model.onnx", "vocab.txt"}, nil)
	if err != nil {
		return nil, nil, err
	}

	img, err := l.registry.CreateImage("clip-visual-onnx", imgDir, opts)
	if err != nil {
		return nil, nil, err
	}

	txt, err := l.registry.CreateText("mclip-onnx", txtDir, opts)
	if err != nil {
		img.Close()
		return nil, nil, err
	}
	return img, txt, nil
}

// ensureTokenizer laedt vocab.json und merges.txt in das Zielverzeichnis,
// falls sie dort fehlen.
func (l *hubLoader) ensureTokenizer(ctx context.Context, repo, dir string) error {
	for _, filename := range hub.TokenizerFiles {
		target := filepath.Join(dir, filename)
		if info, err := os.Stat(target); err == nil && info.Size() > 0 {
			continue
		}

		f, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("classifier: create tokenizer file: %w", err)
		}
		if err := l.client.FetchFile(ctx, repo, hub.DefaultRevision, filename, f, nil); err != nil {
			f.Close()
			os.Remove(target)
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
