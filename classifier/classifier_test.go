// MODUL: classifier_test
// ZWECK: Tests fuer Konstruktion, Scoring und Fuzzy-Verhalten
// INPUT: Fake-Loader mit kontrollierten Embeddings
// OUTPUT: Testresultate
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: testing, testify
// HINWEISE: Embeddings sind so gewaehlt dass Kosinus-Werte exakt sind

package classifier

import (
	"context"
	"errors"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7blacky7/zeroshot/encoder"
	"github.com/7blacky7/zeroshot/hub"
)

// ============================================================================
// Fakes
// ============================================================================

// fakeEncoder liefert feste Embeddings: Bilder bekommen imageEmb, Texte
// werden ueber die textEmbs-Map aufgeloest (Fallback: orthogonaler Vektor).
type fakeEncoder struct {
	imageEmb []float32
	textEmbs map[string][]float32
	closed   bool
}

func (f *fakeEncoder) EncodeImage(img image.Image) ([]float32, error) {
	if f.closed {
		return nil, encoder.ErrEncoderClosed
	}
	return f.imageEmb, nil
}

func (f *fakeEncoder) EncodeTexts(texts []string) ([][]float32, error) {
	if f.closed {
		return nil, encoder.ErrEncoderClosed
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if emb, ok := f.textEmbs[text]; ok {
			out[i] = emb
		} else {
			out[i] = []float32{0, 0, 1}
		}
	}
	return out, nil
}

func (f *fakeEncoder) Close() error {
	f.closed = true
	return nil
}

func (f *fakeEncoder) Info() encoder.ModelInfo {
	return encoder.ModelInfo{Name: "fake", EmbeddingDim: 3}
}

// fakeLoader injiziert den fakeEncoder als joint und als Paar.
type fakeLoader struct {
	enc         *fakeEncoder
	gotBackbone hub.Backbone
	loadedJoint bool
	loadedPair  bool
}

func (l *fakeLoader) LoadJoint(ctx context.Context, backbone hub.Backbone, opts encoder.LoadOptions) (encoder.JointEncoder, error) {
	l.gotBackbone = backbone
	l.loadedJoint = true
	return l.enc, nil
}

func (l *fakeLoader) LoadPair(ctx context.Context, pair hub.EncoderPair, opts encoder.LoadOptions) (encoder.ImageEncoder, encoder.TextEncoder, error) {
	l.loadedPair = true
	return l.enc, l.enc, nil
}

// newTestClassifier baut einen Klassifikator mit Fake-Encoder.
func newTestClassifier(t *testing.T, cfg Config, enc *fakeEncoder) (*Classifier, *fakeLoader) {
	t.Helper()
	loader := &fakeLoader{enc: enc}
	c, err := New(context.Background(), cfg, WithLoader(loader))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, loader
}

// dogCatEncoder: das Bild zeigt einen Hund.
func dogCatEncoder() *fakeEncoder {
	return &fakeEncoder{
		imageEmb: []float32{1, 0, 0},
		textEmbs: map[string][]float32{
			"A photo of dog": {1, 0, 0}, // Kosinus 1.0
			"A photo of cat": {0, 1, 0}, // Kosinus 0.0
		},
	}
}

// ============================================================================
// Konstruktion
// ============================================================================

func TestNewDefaultsToEnglish(t *testing.T) {
	c, loader := newTestClassifier(t, Config{}, dogCatEncoder())

	assert.Equal(t, "en", c.Lang())
	assert.True(t, loader.loadedJoint)
	assert.Equal(t, "ViT-B/32", loader.gotBackbone.Name)
}

func TestNewHonorsBackboneForEnglish(t *testing.T) {
	_, loader := newTestClassifier(t, Config{Model: "RN50x16"}, dogCatEncoder())

	assert.Equal(t, "RN50x16", loader.gotBackbone.Name)
}

func TestNewMultilingualUsesPair(t *testing.T) {
	c, loader := newTestClassifier(t, Config{Lang: "de"}, dogCatEncoder())

	assert.Equal(t, "de", c.Lang())
	assert.True(t, loader.loadedPair)
	assert.False(t, loader.loadedJoint)
}

func TestNewInvalidLanguage(t *testing.T) {
	_, err := New(context.Background(), Config{Lang: "xx"}, WithLoader(&fakeLoader{enc: dogCatEncoder()}))

	require.ErrorIs(t, err, ErrInvalidLanguage)
	// Fehlermeldung nennt den Code und die gueltige Menge
	assert.Contains(t, err.Error(), `"xx"`)
	assert.Contains(t, err.Error(), "zh-tw")
}

func TestNewCanonicalizesLanguage(t *testing.T) {
	c, _ := newTestClassifier(t, Config{Lang: " ZH-CN "}, dogCatEncoder())
	assert.Equal(t, "zh-cn", c.Lang())
}

func TestNewUnknownBackbone(t *testing.T) {
	_, err := New(context.Background(), Config{Model: "ViT-H/14"}, WithLoader(&fakeLoader{enc: dogCatEncoder()}))
	require.ErrorIs(t, err, hub.ErrUnknownBackbone)
}

// ============================================================================
// Classify - Scores
// ============================================================================

func TestClassifyScores(t *testing.T) {
	c, _ := newTestClassifier(t, Config{}, dogCatEncoder())

	res, err := c.Classify(context.Background(), Request{
		Image:  image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Labels: "dog,cat",
	})
	require.NoError(t, err)

	require.Len(t, res.Scores, 2)

	// Summe 1.0, Reihenfolge wie Eingabe, Hund gewinnt deutlich
	sum := res.Scores[0] + res.Scores[1]
	assert.InDelta(t, 1.0, sum, 1e-4)
	assert.Greater(t, res.Scores[0], res.Scores[1])
	assert.Equal(t, res.Scores[0], res.HighestScore)

	// softmax([100, 0]) ist praktisch [1, 0]
	assert.InDelta(t, 1.0, res.Scores[0], 1e-10)
}

func TestClassifyOrderFollowsInput(t *testing.T) {
	c, _ := newTestClassifier(t, Config{}, dogCatEncoder())

	res, err := c.Classify(context.Background(), Request{
		Image:  image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Labels: []string{"cat", "dog"},
	})
	require.NoError(t, err)

	// Jetzt steht cat vorne: der hohe Score muss an Position 1 wandern
	assert.Greater(t, res.Scores[1], res.Scores[0])
}

func TestClassifyTopKHasNoEffect(t *testing.T) {
	c, _ := newTestClassifier(t, Config{}, dogCatEncoder())

	withTopK, err := c.Classify(context.Background(), Request{
		Image:  image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Labels: "dog,cat",
		TopK:   1,
	})
	require.NoError(t, err)

	without, err := c.Classify(context.Background(), Request{
		Image:  image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Labels: "dog,cat",
	})
	require.NoError(t, err)

	assert.Equal(t, without.Scores, withTopK.Scores)
	assert.Len(t, withTopK.Scores, 2)
}

func TestClassifyCommaStringTrimsLabels(t *testing.T) {
	c, _ := newTestClassifier(t, Config{}, dogCatEncoder())

	res, err := c.Classify(context.Background(), Request{
		Image:  image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Labels: " dog , cat ",
	})
	require.NoError(t, err)
	require.Len(t, res.Scores, 2)
	assert.InDelta(t, 1.0, res.Scores[0], 1e-10)
}

// ============================================================================
// Classify - Fuzzy
// ============================================================================

func TestClassifyFuzzyMatches(t *testing.T) {
	c, _ := newTestClassifier(t, Config{}, dogCatEncoder())

	res, err := c.Classify(context.Background(), Request{
		Image:  image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Labels: "dog,cat",
	})
	require.NoError(t, err)

	// Jedes Label steckt woertlich in seiner Hypothese: Score 100
	assert.Equal(t, []string{"A photo of dog", "A photo of cat"}, res.FuzzyMatchedLabels)
	// Erster 100er-Treffer gewinnt (strikte > Verfolgung)
	assert.Equal(t, "A photo of dog", res.HighestFuzzyLabel)
}

func TestFuzzyMatchesSuppressedBelowGate(t *testing.T) {
	// Score 80: gleiche Laenge, eine Ersetzung ((10-2)/10)
	matched, highest := fuzzyMatches([]string{"abcde"}, []string{"abcdX"})

	assert.Equal(t, []string{"abcdX"}, matched)
	assert.Equal(t, "", highest, "Score 80 liegt unter der Schwelle 90")
}

func TestFuzzyMatchesNoMatchBelowThreshold(t *testing.T) {
	matched, highest := fuzzyMatches([]string{"abcde"}, []string{"zzzzz"})

	assert.Equal(t, []string{""}, matched)
	assert.Equal(t, "", highest)
}

func TestClassifyMultilingualTemplate(t *testing.T) {
	enc := &fakeEncoder{
		imageEmb: []float32{1, 0, 0},
		textEmbs: map[string][]float32{
			// Ohne "A photo of": das Nicht-en Template ist "{}"
			"Hund":  {1, 0, 0},
			"Katze": {0, 1, 0},
		},
	}
	c, _ := newTestClassifier(t, Config{Lang: "de"}, enc)

	res, err := c.Classify(context.Background(), Request{
		Image:  image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Labels: "Hund,Katze",
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Scores[0], 1e-10)
	assert.Equal(t, "Hund", res.HighestFuzzyLabel)
}

func TestClassifyCustomTemplate(t *testing.T) {
	enc := &fakeEncoder{
		imageEmb: []float32{1, 0, 0},
		textEmbs: map[string][]float32{
			"a picture of dog": {1, 0, 0},
		},
	}
	c, _ := newTestClassifier(t, Config{}, enc)

	res, err := c.Classify(context.Background(), Request{
		Image:              image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Labels:             "dog",
		HypothesisTemplate: "a picture of {}",
	})
	require.NoError(t, err)
	assert.Equal(t, "a picture of dog", res.FuzzyMatchedLabels[0])
}

// ============================================================================
// Classify - Fehlerfaelle
// ============================================================================

func TestClassifyInvalidLabelsType(t *testing.T) {
	c, _ := newTestClassifier(t, Config{}, dogCatEncoder())

	_, err := c.Classify(context.Background(), Request{
		Image:  image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Labels: 42,
	})
	require.ErrorIs(t, err, ErrInvalidLabels)
}

func TestClassifyEmptyLabels(t *testing.T) {
	c, _ := newTestClassifier(t, Config{}, dogCatEncoder())

	_, err := c.Classify(context.Background(), Request{
		Image:  image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Labels: " , ",
	})
	require.ErrorIs(t, err, ErrEmptyLabels)
}

func TestClassifyInvalidImageReference(t *testing.T) {
	c, _ := newTestClassifier(t, Config{}, dogCatEncoder())

	_, err := c.Classify(context.Background(), Request{
		Image:  "/no/such/file.jpg",
		Labels: "dog",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/no/such/file.jpg")
}

func TestClassifyEchoesImageRef(t *testing.T) {
	c, _ := newTestClassifier(t, Config{}, dogCatEncoder())

	// Fehlerfall reicht nicht: wir brauchen einen gueltigen String-Ref.
	// Dekodierte Bilder liefern eine leere Referenz.
	res, err := c.Classify(context.Background(), Request{
		Image:  image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Labels: "dog",
	})
	require.NoError(t, err)
	assert.Equal(t, "", res.Image)
}

func TestClassifyAfterClose(t *testing.T) {
	enc := dogCatEncoder()
	c, _ := newTestClassifier(t, Config{}, enc)
	require.NoError(t, c.Close())

	_, err := c.Classify(context.Background(), Request{
		Image:  image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Labels: "dog",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, encoder.ErrEncoderClosed), "err = %v", err)
}

// ============================================================================
// Hilfsfunktionen
// ============================================================================

func TestSoftmaxIsStable(t *testing.T) {
	// Grosse Werte duerfen nicht zu Inf/NaN fuehren
	out := softmax([]float64{1000, 999, 998})

	var sum float64
	for _, v := range out {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, out[0], out[1])
}

func TestCosineOrthogonal(t *testing.T) {
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-12)
	assert.InDelta(t, 1.0, cosine([]float32{2, 0}, []float32{5, 0}), 1e-12)
	assert.InDelta(t, 0.0, cosine([]float32{0, 0}, []float32{1, 0}), 1e-12)
}

func TestAvailableLanguagesSorted(t *testing.T) {
	codes := AvailableLanguages()
	assert.Len(t, codes, 53)
	assert.True(t, strings.HasPrefix(codes[0], "ar"))

	for i := 1; i < len(codes); i++ {
		assert.Less(t, codes[i-1], codes[i])
	}
}

func TestParseLabelsList(t *testing.T) {
	labels, err := parseLabels([]string{"a", " b ", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, labels)
}
