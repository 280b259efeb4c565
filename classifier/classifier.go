// MODUL: classifier
// ZWECK: Zero-Shot Bildklassifikation mit CLIP-Embeddings und Fuzzy-Matching
// INPUT: Bild-Referenz, Kandidaten-Labels, Konfiguration
// OUTPUT: Wahrscheinlichkeiten und Fuzzy-Matches je Label
// NEBENEFFEKTE: Modell-Download beim ersten New, Encoder-Ressourcen
// ABHAENGIGKEITEN: encoder, hub, imaging, fuzzy, log/slog, uuid
// HINWEISE: Encoder-Variante wird einmalig bei der Konstruktion gewaehlt

package classifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/7blacky7/zeroshot/encoder"
	"github.com/7blacky7/zeroshot/fuzzy"
	"github.com/7blacky7/zeroshot/hub"
	"github.com/7blacky7/zeroshot/imaging"
)

// ============================================================================
// Classifier
// ============================================================================

// Classifier klassifiziert Bilder anhand frei waehlbarer Kandidaten-Labels.
// Nach der Konstruktion ist er fuer parallele lesende Nutzung geeignet,
// sofern die zugrundeliegenden Encoder das sind.
type Classifier struct {
	cfg     Config
	variant *encoderVariant
	log     *slog.Logger
}

// Option ist eine funktionale Option fuer New.
type Option func(*newOptions)

type newOptions struct {
	loader   Loader
	loadOpts encoder.LoadOptions
	loadSet  bool
}

// WithLoader ersetzt den Standard-Loader (Hub + Registry).
func WithLoader(l Loader) Option {
	return func(o *newOptions) {
		o.loader = l
	}
}

// WithLoadOptions setzt die Encoder-LoadOptions (Device, Threads, ...).
func WithLoadOptions(opts encoder.LoadOptions) Option {
	return func(o *newOptions) {
		o.loadOpts = opts
		o.loadSet = true
	}
}

// New erstellt einen Klassifikator. Das Compute-Device wird einmalig
// aufgeloest (CUDA > Metal > CPU), dann wird je nach Sprache entweder das
// gemeinsame Backbone (en) oder das feste multilinguale Paar geladen.
func New(ctx context.Context, cfg Config, opts ...Option) (*Classifier, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	var o newOptions
	for _, opt := range opts {
		opt(&o)
	}
	if !o.loadSet {
		// Device einmalig bei der Konstruktion aufloesen
		o.loadOpts = encoder.DefaultLoadOptions()
	}
	if err := o.loadOpts.Validate(); err != nil {
		return nil, err
	}
	if o.loader == nil {
		loader, err := newHubLoader()
		if err != nil {
			return nil, err
		}
		o.loader = loader
	}

	log := slog.Default().With("component", "classifier", "lang", cfg.Lang)

	var variant *encoderVariant
	if cfg.Lang == DefaultLang {
		backbone, err := hub.LookupBackbone(cfg.Model)
		if err != nil {
			return nil, err
		}
		log.Info("loading joint encoder", "model", backbone.Name, "device", o.loadOpts.Device)

		joint, err := o.loader.LoadJoint(ctx, backbone, o.loadOpts)
		if err != nil {
			return nil, err
		}
		variant = newJointVariant(joint)
	} else {
		pair := hub.MultilingualPair
		log.Info("loading encoder pair", "image", pair.ImageRepo, "text", pair.TextRepo, "device", o.loadOpts.Device)

		img, txt, err := o.loader.LoadPair(ctx, pair, o.loadOpts)
		if err != nil {
			return nil, err
		}
		variant = newPairVariant(img, txt)
	}

	return &Classifier{cfg: cfg, variant: variant, log: log}, nil
}

// Close gibt die Encoder-Ressourcen frei.
func (c *Classifier) Close() error {
	return c.variant.close()
}

// Lang gibt den normalisierten Sprachcode zurueck.
func (c *Classifier) Lang() string {
	return c.cfg.Lang
}

// ============================================================================
// Classify
// ============================================================================

// Classify klassifiziert ein Bild gegen die Kandidaten-Labels.
// Scores sind Softmax-Wahrscheinlichkeiten in Label-Reihenfolge; die
// Fuzzy-Felder vergleichen jedes Label mit den Hypothesen-Strings.
func (c *Classifier) Classify(ctx context.Context, req Request) (*Result, error) {
	reqID := uuid.NewString()

	labels, err := parseLabels(req.Labels)
	if err != nil {
		return nil, err
	}

	template := req.HypothesisTemplate
	if template == "" {
		template = defaultTemplate(c.cfg.Lang)
	}
	hyps := hypotheses(labels, template)

	c.log.Debug("classify", "request", reqID, "labels", len(labels),
		"variant", c.variant.kind.String(), "top_k", req.TopK)

	img, err := imaging.Resolve(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	imageEmb, err := c.variant.encodeImage(img.RGB)
	if err != nil {
		return nil, fmt.Errorf("classifier: encode image: %w", err)
	}

	textEmbs, err := c.variant.encodeTexts(hyps)
	if err != nil {
		return nil, fmt.Errorf("classifier: encode hypotheses: %w", err)
	}

	scores := softmax(similarityScores(imageEmb, textEmbs))

	matched, highestLabel := fuzzyMatches(labels, hyps)

	result := &Result{
		Image:              imageRef(req.Image),
		Scores:             scores,
		FuzzyMatchedLabels: matched,
		HighestFuzzyLabel:  highestLabel,
		HighestScore:       maxScore(scores),
	}

	c.log.Debug("classified", "request", reqID,
		"highest_score", result.HighestScore, "highest_fuzzy", result.HighestFuzzyLabel)
	return result, nil
}

// fuzzyMatches ermittelt je Label den besten Hypothesen-Treffer und den
// besten Treffer insgesamt. Der Gesamt-Treffer wird unterdrueckt wenn
// sein Score unter der Konfidenz-Schwelle liegt.
func fuzzyMatches(labels, hyps []string) (matched []string, highestLabel string) {
	matched = make([]string, len(labels))
	highestScore := 0

	for i, label := range labels {
		match, score := fuzzy.BestMatch(label, hyps, fuzzy.DefaultThreshold)
		matched[i] = match
		if score > highestScore {
			highestScore = score
			highestLabel = match
		}
	}

	if highestScore < fuzzy.ConfidenceGate {
		highestLabel = ""
	}
	return matched, highestLabel
}

// imageRef gibt die String-Referenz der Anfrage zurueck, leer fuer
// bereits dekodierte Bilder.
func imageRef(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// maxScore gibt das Maximum zurueck, 0 bei leerer Liste.
func maxScore(scores []float64) float64 {
	var max float64
	for i, s := range scores {
		if i == 0 || s > max {
			max = s
		}
	}
	return max
}
