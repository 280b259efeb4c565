// MODUL: variant
// ZWECK: Explizite Encoder-Variante (joint oder paar), bei Konstruktion fix
// INPUT: JointEncoder bzw. ImageEncoder + TextEncoder
// OUTPUT: Einheitliche EncodeImage/EncodeTexts Sicht
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: encoder (Interfaces)
// HINWEISE: Keine Typ-Inspektion zur Laufzeit, die Variante ist getaggt

package classifier

import (
	"errors"
	"image"

	"github.com/7blacky7/zeroshot/encoder"
)

// variantKind unterscheidet die beiden Encoder-Aufbauten.
type variantKind int

const (
	// variantJoint: ein gemeinsames Modell fuer Bild und Text (en).
	variantJoint variantKind = iota

	// variantPair: fester Bild-Encoder plus multilingualer Text-Encoder.
	variantPair
)

// String gibt den Varianten-Namen fuer Logs zurueck.
func (k variantKind) String() string {
	if k == variantJoint {
		return "joint"
	}
	return "pair"
}

// encoderVariant buendelt die Encoder einer Variante. Bei variantJoint
// zeigen img und txt auf dasselbe Modell.
type encoderVariant struct {
	kind variantKind
	img  encoder.ImageEncoder
	txt  encoder.TextEncoder
}

// newJointVariant baut die en-Variante.
func newJointVariant(joint encoder.JointEncoder) *encoderVariant {
	return &encoderVariant{kind: variantJoint, img: joint, txt: joint}
}

// newPairVariant baut die multilinguale Variante.
func newPairVariant(img encoder.ImageEncoder, txt encoder.TextEncoder) *encoderVariant {
	return &encoderVariant{kind: variantPair, img: img, txt: txt}
}

// encodeImage delegiert an den Bild-Encoder.
func (v *encoderVariant) encodeImage(img image.Image) ([]float32, error) {
	return v.img.EncodeImage(img)
}

// encodeTexts delegiert an den Text-Encoder.
func (v *encoderVariant) encodeTexts(texts []string) ([][]float32, error) {
	return v.txt.EncodeTexts(texts)
}

// close gibt die Encoder frei. Bei variantJoint nur einmal.
func (v *encoderVariant) close() error {
	if v.kind == variantJoint {
		return v.img.Close()
	}
	return errors.Join(v.img.Close(), v.txt.Close())
}
