// MODUL: normalize
// ZWECK: Resize und Normalisierung zu Encoder-Eingabe-Tensoren
// INPUT: Image, Zielgroesse, Normalisierungs-Parameter (mean, std)
// OUTPUT: float32-Tensor im CHW-Layout
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: golang.org/x/image/draw (extern)
// HINWEISE: CLIP-Preset als Standard, bilineare Skalierung

package imaging

import (
	"image"

	"golang.org/x/image/draw"
)

// Normalisierungs-Presets fuer CLIP-Familie und ImageNet-Modelle
var (
	ClipMean = [3]float32{0.48145466, 0.4578275, 0.40821073}
	ClipStd  = [3]float32{0.26862954, 0.26130258, 0.27577711}

	ImageNetMean = [3]float32{0.485, 0.456, 0.406}
	ImageNetStd  = [3]float32{0.229, 0.224, 0.225}
)

// Resize skaliert ein Bild bilinear auf die angegebene Groesse.
func Resize(img *Image, width, height int) *Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img.RGB, img.RGB.Bounds(), draw.Src, nil)

	return &Image{
		RGB:    dst,
		Width:  width,
		Height: height,
		Format: img.Format,
	}
}

// CenterCrop schneidet einen zentrierten Bereich aus.
// Ist das Bild kleiner als der Zielbereich, bleibt es unveraendert.
func CenterCrop(img *Image, width, height int) *Image {
	if width > img.Width || height > img.Height {
		return img
	}

	offX := (img.Width - width) / 2
	offY := (img.Height - height) / 2

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Copy(dst, image.Point{}, img.RGB, image.Rect(offX, offY, offX+width, offY+height), draw.Src, nil)

	return &Image{
		RGB:    dst,
		Width:  width,
		Height: height,
		Format: img.Format,
	}
}

// Normalize skaliert Pixel auf [0,1], zieht mean ab und teilt durch std.
// Rueckgabe im CHW-Layout (Channel-First), wie es die Encoder erwarten.
func Normalize(img *Image, mean, std [3]float32) []float32 {
	b := img.RGB.Bounds()
	h, w := b.Dy(), b.Dx()
	plane := h * w

	out := make([]float32, 3*plane)
	idx := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGB.RGBAAt(x, y)
			out[idx] = (float32(c.R)/255.0 - mean[0]) / std[0]
			out[plane+idx] = (float32(c.G)/255.0 - mean[1]) / std[1]
			out[2*plane+idx] = (float32(c.B)/255.0 - mean[2]) / std[2]
			idx++
		}
	}
	return out
}

// PrepareForEncoder fuehrt die CLIP-Standardvorverarbeitung aus:
// Resize auf die Modellgroesse, Center-Crop, CLIP-Normalisierung.
func PrepareForEncoder(img *Image, imageSize int) []float32 {
	// Kuerzere Seite auf imageSize skalieren, dann zentriert beschneiden
	w, h := img.Width, img.Height
	if w < h {
		h = h * imageSize / w
		w = imageSize
	} else {
		w = w * imageSize / h
		h = imageSize
	}

	resized := Resize(img, w, h)
	cropped := CenterCrop(resized, imageSize, imageSize)
	return Normalize(cropped, ClipMean, ClipStd)
}
