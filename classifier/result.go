// MODUL: result
// ZWECK: Request/Result Typen des Klassifikators
// INPUT: Bild-Referenz, Kandidaten-Labels, optionales Template
// OUTPUT: Scores und Fuzzy-Matches in Label-Reihenfolge
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: Keine (reine Typdefinitionen)
// HINWEISE: TopK wird angenommen, beeinflusst die Ausgabe aber nicht

package classifier

// Request beschreibt eine Klassifikations-Anfrage.
type Request struct {
	// Image ist eine http/https-URL, ein lokaler Dateipfad (beides als
	// string) oder ein bereits dekodiertes image.Image.
	Image any

	// Labels sind die Kandidaten-Labels: Komma-String oder []string.
	Labels any

	// HypothesisTemplate ist das Template mit "{}" Platzhalter.
	// Leer: "A photo of {}" fuer en, "{}" fuer andere Sprachen.
	HypothesisTemplate string

	// TopK wird angenommen, kuerzt die Ausgabe aber nicht.
	// Die Scores kommen immer vollstaendig in Label-Reihenfolge.
	TopK int
}

// Result ist das Klassifikations-Ergebnis.
type Result struct {
	// Image ist die Bild-Referenz der Anfrage (URL oder Pfad). Wurde ein
	// bereits dekodiertes image.Image uebergeben, existiert keine Referenz
	// und das Feld bleibt leer.
	Image string

	// Scores sind die Wahrscheinlichkeiten je Label, in
	// Eingabe-Reihenfolge, Summe 1.0.
	Scores []float64

	// FuzzyMatchedLabels enthaelt je Label die am besten passende
	// Hypothese (Schwelle 80), leerer String wenn keine passt.
	FuzzyMatchedLabels []string

	// HighestFuzzyLabel ist der beste Fuzzy-Treffer insgesamt.
	// Leer wenn der beste Score unter der Konfidenz-Schwelle 90 liegt.
	HighestFuzzyLabel string

	// HighestScore ist das Maximum von Scores.
	HighestScore float64
}
