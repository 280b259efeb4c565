// MODUL: orientation
// ZWECK: EXIF-Orientierung lesen und auf ein Bild anwenden
// INPUT: JPEG-Stream mit EXIF-Metadaten, RGB-Bild, Orientierungs-Code 1-8
// OUTPUT: Orientierungskorrigiertes Bild
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: github.com/rwcarlsen/goexif (extern)
// HINWEISE: Codes nach EXIF-Spezifikation, 1 bedeutet keine Korrektur

package imaging

import (
	"image"
	"io"

	"github.com/rwcarlsen/goexif/exif"
)

// readOrientation liest den EXIF-Orientierungs-Tag aus einem JPEG-Stream.
// Gibt 1 zurueck wenn keine oder ungueltige EXIF-Daten vorhanden sind.
func readOrientation(r io.Reader) int {
	meta, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}

// applyOrientation wendet den EXIF-Orientierungs-Code auf ein Bild an.
// Mapping nach EXIF-Spezifikation:
//
//	2: horizontal spiegeln        5: transponieren
//	3: 180 Grad drehen            6: 90 Grad im Uhrzeigersinn
//	4: vertikal spiegeln          7: anti-transponieren
//	                              8: 90 Grad gegen Uhrzeigersinn
func applyOrientation(src *image.RGBA, orientation int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	switch orientation {
	case 2:
		return mapPixels(src, w, h, func(x, y int) (int, int) { return w - 1 - x, y })
	case 3:
		return mapPixels(src, w, h, func(x, y int) (int, int) { return w - 1 - x, h - 1 - y })
	case 4:
		return mapPixels(src, w, h, func(x, y int) (int, int) { return x, h - 1 - y })
	case 5:
		return mapPixels(src, h, w, func(x, y int) (int, int) { return y, x })
	case 6:
		return mapPixels(src, h, w, func(x, y int) (int, int) { return y, h - 1 - x })
	case 7:
		return mapPixels(src, h, w, func(x, y int) (int, int) { return w - 1 - y, h - 1 - x })
	case 8:
		return mapPixels(src, h, w, func(x, y int) (int, int) { return w - 1 - y, x })
	default:
		return src
	}
}

// mapPixels erzeugt ein Zielbild der Groesse dstW x dstH, wobei srcAt die
// Quellkoordinate fuer jede Zielkoordinate liefert.
func mapPixels(src *image.RGBA, dstW, dstH int, srcAt func(x, y int) (int, int)) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			sx, sy := srcAt(x, y)
			dst.SetRGBA(x, y, src.RGBAAt(sx, sy))
		}
	}
	return dst
}
