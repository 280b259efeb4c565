// MODUL: labels
// ZWECK: Kandidaten-Labels parsen und Hypothesen-Strings bauen
// INPUT: Labels als Komma-String oder []string, Hypothesen-Template
// OUTPUT: Label-Liste und Hypothesen in Eingabe-Reihenfolge
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: Keine (Standard-Library)
// HINWEISE: Template braucht genau einen "{}" Platzhalter

package classifier

import (
	"errors"
	"fmt"
	"strings"
)

// Fehler beim Label-Parsing.
var (
	ErrInvalidLabels = errors.New("classifier: labels must be a string or []string")
	ErrEmptyLabels   = errors.New("classifier: no candidate labels given")
)

// Hypothesen-Templates nach Sprache.
const (
	TemplateEnglish = "A photo of {}"
	TemplateOther   = "{}"
)

// parseLabels akzeptiert einen Komma-String oder eine String-Liste.
// Eintraege werden getrimmt, leere verworfen, Reihenfolge bleibt erhalten.
func parseLabels(v any) ([]string, error) {
	var raw []string
	switch labels := v.(type) {
	case string:
		raw = strings.Split(labels, ",")
	case []string:
		raw = labels
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidLabels, v)
	}

	out := make([]string, 0, len(raw))
	for _, label := range raw {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyLabels
	}
	return out, nil
}

// defaultTemplate gibt das Template fuer die Sprache zurueck.
func defaultTemplate(lang string) string {
	if lang == DefaultLang {
		return TemplateEnglish
	}
	return TemplateOther
}

// hypotheses setzt jedes Label in das Template ein.
func hypotheses(labels []string, template string) []string {
	out := make([]string, len(labels))
	for i, label := range labels {
		out[i] = strings.Replace(template, "{}", label, 1)
	}
	return out
}
