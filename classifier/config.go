// MODUL: config
// ZWECK: Klassifikator-Konfiguration mit Sprach- und Backbone-Validierung
// INPUT: Sprachcode, Backbone-Name
// OUTPUT: Normalisierte, validierte Konfiguration
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: golang.org/x/text/language (Kanonisierung)
// HINWEISE: Backbone wird nur fuer "en" beruecksichtigt

package classifier

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/7blacky7/zeroshot/hub"
)

// DefaultLang ist die Standard-Labelsprache.
const DefaultLang = "en"

// ErrInvalidLanguage wird bei nicht unterstuetzten Sprachcodes geliefert.
var ErrInvalidLanguage = errors.New("classifier: invalid language code")

// supportedLanguages sind die Sprachcodes des multilingualen Text-Encoders
// plus Englisch.
var supportedLanguages = map[string]bool{
	"ar": true, "bg": true, "ca": true, "cs": true, "da": true,
	"de": true, "el": true, "en": true, "es": true, "et": true,
	"fa": true, "fi": true, "fr": true, "fr-ca": true, "gl": true,
	"gu": true, "he": true, "hi": true, "hr": true, "hu": true,
	"hy": true, "id": true, "it": true, "ja": true, "ka": true,
	"ko": true, "ku": true, "lt": true, "lv": true, "mk": true,
	"mn": true, "mr": true, "ms": true, "my": true, "nb": true,
	"nl": true, "pl": true, "pt": true, "pt-br": true, "ro": true,
	"ru": true, "sk": true, "sl": true, "sq": true, "sr": true,
	"sv": true, "th": true, "tr": true, "uk": true, "ur": true,
	"vi": true, "zh-cn": true, "zh-tw": true,
}

// Config konfiguriert einen Klassifikator.
type Config struct {
	// Lang ist der Sprachcode der Kandidaten-Labels (Standard "en").
	Lang string

	// Model ist das Vision-Backbone (Standard "ViT-B/32").
	// Wird nur fuer Lang == "en" beruecksichtigt: das multilinguale
	// Paar hat ein festes ViT-B/32 Backbone.
	Model string
}

// normalize fuellt Defaults und kanonisiert den Sprachcode.
func (c *Config) normalize() error {
	c.Lang = normalizeLang(c.Lang)
	if !supportedLanguages[c.Lang] {
		return fmt.Errorf("%w: %q not valid, supported codes are %v",
			ErrInvalidLanguage, c.Lang, AvailableLanguages())
	}

	if c.Lang == DefaultLang && c.Model == "" {
		c.Model = hub.DefaultBackbone
	}
	return nil
}

// normalizeLang trimmt, kanonisiert via BCP-47 und liefert den
// kleingeschriebenen Code. Nicht parsbare Eingaben werden nur
// kleingeschrieben und laufen in die Mengen-Pruefung.
func normalizeLang(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return DefaultLang
	}

	if tag, err := language.Parse(code); err == nil {
		canonical := strings.ToLower(tag.String())
		if supportedLanguages[canonical] {
			return canonical
		}
	}
	return code
}

// AvailableLanguages gibt alle unterstuetzten Sprachcodes sortiert zurueck.
func AvailableLanguages() []string {
	codes := make([]string, 0, len(supportedLanguages))
	for code := range supportedLanguages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// AvailableModels gibt die Namen der unterstuetzten Backbones zurueck.
func AvailableModels() []string {
	return hub.BackboneNames()
}
