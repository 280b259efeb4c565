// MODUL: scoring
// ZWECK: Kosinus-Aehnlichkeit und Softmax ueber Hypothesen-Scores
// INPUT: Bild-Embedding, Text-Embeddings
// OUTPUT: Wahrscheinlichkeiten (Summe 1.0) in Eingabe-Reihenfolge
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: gonum.org/v1/gonum/floats
// HINWEISE: Softmax subtrahiert das Maximum (numerisch stabil)

package classifier

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// similarityScale streckt Kosinus-Werte vor dem Softmax auf [-100, 100].
const similarityScale = 100.0

// cosine berechnet die Kosinus-Aehnlichkeit zweier Embeddings.
// Null-Vektoren ergeben 0.
func cosine(a, b []float32) float64 {
	a64 := toFloat64(a)
	b64 := toFloat64(b)

	normA := floats.Norm(a64, 2)
	normB := floats.Norm(b64, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a64, b64) / (normA * normB)
}

// similarityScores berechnet skalierte Kosinus-Werte fuer jedes
// Text-Embedding gegen das Bild-Embedding.
func similarityScores(imageEmb []float32, textEmbs [][]float32) []float64 {
	out := make([]float64, len(textEmbs))
	for i, textEmb := range textEmbs {
		out[i] = cosine(textEmb, imageEmb) * similarityScale
	}
	return out
}

// softmax normalisiert Scores zu Wahrscheinlichkeiten.
// Das Maximum wird vor dem Exponenzieren abgezogen.
func softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	max := floats.Max(scores)

	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	floats.Scale(1/sum, out)
	return out
}

// toFloat64 konvertiert ein float32-Embedding fuer gonum.
func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
