// MODUL: fuzzy
// ZWECK: Unscharfe String-Aehnlichkeit (Ratio/PartialRatio) und Label-Matching
// INPUT: Kandidaten-Label, Liste von Hypothesen-Strings, Schwellenwert
// OUTPUT: Score 0-100, bestes Match pro Kandidat
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: github.com/agnivade/levenshtein (extern)
// HINWEISE: PartialRatio toleriert Substring-/Laengenunterschiede

package fuzzy

import (
	"github.com/agnivade/levenshtein"
)

// ============================================================================
// Konstanten - Schwellenwerte
// ============================================================================

const (
	// DefaultThreshold ist die Mindest-Score fuer ein Match pro Kandidat.
	DefaultThreshold = 80

	// ConfidenceGate ist die Schwelle fuer das globale beste Match.
	// Matches unterhalb werden als Gesamtergebnis unterdrueckt.
	ConfidenceGate = 90
)

// ============================================================================
// Ratio - Levenshtein-basierte Aehnlichkeit
// ============================================================================

// Ratio berechnet die Aehnlichkeit zweier Strings als Score von 0 bis 100.
// 100 bedeutet identisch, 0 keinerlei Uebereinstimmung.
func Ratio(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}

	dist := levenshtein.ComputeDistance(a, b)

	// Score aus Distanz ableiten: (1 - 2d/(len_a+len_b)) * 100, gerundet
	score := float64(total-2*dist) / float64(total) * 100
	if score < 0 {
		return 0
	}
	return int(score + 0.5)
}

// ============================================================================
// PartialRatio - Substring-tolerante Aehnlichkeit
// ============================================================================

// PartialRatio berechnet den besten Ratio-Score zwischen dem kuerzeren
// String und allen gleich langen Fenstern des laengeren Strings.
// Dadurch erreicht ein Label, das vollstaendig in einer Hypothese enthalten
// ist (z.B. "dog" in "A photo of dog"), einen Score von 100.
func PartialRatio(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}

	best := 0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		window := string(longer[start : start+len(shorter)])
		score := Ratio(string(shorter), window)
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// ============================================================================
// BestMatch - Bestes Label fuer einen Kandidaten finden
// ============================================================================

// BestMatch sucht das Label mit dem hoechsten PartialRatio-Score, der den
// Schwellenwert erreicht. Bei Gleichstand gewinnt das zuerst gefundene Label
// (strikter Vergleich: spaetere gleiche Scores verdraengen nicht).
// Gibt ("", 0) zurueck wenn kein Label den Schwellenwert erreicht.
func BestMatch(candidate string, labels []string, threshold int) (string, int) {
	bestScore := 0
	best := ""
	for _, label := range labels {
		score := PartialRatio(candidate, label)
		if score > bestScore && score >= threshold {
			bestScore = score
			best = label
		}
	}
	return best, bestScore
}
