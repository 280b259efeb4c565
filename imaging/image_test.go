// MODUL: image_test
// ZWECK: Tests fuer Bild-Aufloesung, RGB-Konvertierung und Orientierung
// INPUT: In-Memory erzeugte Testbilder
// OUTPUT: Testresultate
// NEBENEFFEKTE: temporaere Testdateien
// ABHAENGIGKEITEN: testing, image/png
// HINWEISE: Graustufen- und RGBA-Quellen muessen zu RGB werden

package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// grayTestImage erzeugt ein 4x4 Graustufenbild
func grayTestImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 60)})
		}
	}
	return img
}

func TestResolveDecodedImage(t *testing.T) {
	got, err := Resolve(context.Background(), grayTestImage())
	if err != nil {
		t.Fatalf("Resolve fehlgeschlagen: %v", err)
	}
	if got.Width != 4 || got.Height != 4 {
		t.Errorf("Groesse = %dx%d, erwartet 4x4", got.Width, got.Height)
	}
	// RGB erzwungen: alle Kanaele gleich, Alpha 255
	c := got.RGB.RGBAAt(2, 0)
	if c.R != c.G || c.G != c.B {
		t.Errorf("Graustufen nicht zu RGB repliziert: %+v", c)
	}
	if c.A != 255 {
		t.Errorf("Alpha = %d, erwartet 255", c.A)
	}
}

func TestResolveRGBADropsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0})

	got, err := Resolve(context.Background(), src)
	if err != nil {
		t.Fatalf("Resolve fehlgeschlagen: %v", err)
	}
	c := got.RGB.RGBAAt(0, 0)
	if c.R != 10 || c.G != 20 || c.B != 30 || c.A != 255 {
		t.Errorf("Alpha-Kanal nicht verworfen: %+v", c)
	}
}

func TestResolveLocalFile(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, grayTestImage()); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "test.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("Resolve(%q) fehlgeschlagen: %v", path, err)
	}
	if got.Format != FormatPNG {
		t.Errorf("Format = %s, erwartet png", got.Format)
	}
}

func TestResolveInvalidReference(t *testing.T) {
	_, err := Resolve(context.Background(), "/nicht/vorhanden/bild.jpg")
	if !errors.Is(err, ErrInvalidReference) {
		t.Errorf("erwartet ErrInvalidReference, got %v", err)
	}
	// Fehlertext enthaelt die fehlerhafte Referenz
	if err == nil || !bytes.Contains([]byte(err.Error()), []byte("/nicht/vorhanden/bild.jpg")) {
		t.Errorf("Fehlertext nennt die Referenz nicht: %v", err)
	}
}

func TestResolveInvalidType(t *testing.T) {
	_, err := Resolve(context.Background(), 42)
	if !errors.Is(err, ErrInvalidType) {
		t.Errorf("erwartet ErrInvalidType, got %v", err)
	}
}

func TestApplyOrientationRotate90CW(t *testing.T) {
	// 2x1 Bild: links rot, rechts blau
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	src.SetRGBA(1, 0, color.RGBA{B: 255, A: 255})

	// Orientierung 6: 90 Grad im Uhrzeigersinn
	dst := applyOrientation(src, 6)
	if dst.Bounds().Dx() != 1 || dst.Bounds().Dy() != 2 {
		t.Fatalf("Dimensionen nach Rotation: %v", dst.Bounds())
	}
	if c := dst.RGBAAt(0, 0); c.R != 255 {
		t.Errorf("Pixel (0,0) = %+v, erwartet rot", c)
	}
	if c := dst.RGBAAt(0, 1); c.B != 255 {
		t.Errorf("Pixel (0,1) = %+v, erwartet blau", c)
	}
}

func TestApplyOrientationMirror(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	src.SetRGBA(1, 0, color.RGBA{B: 255, A: 255})

	// Orientierung 2: horizontal spiegeln
	dst := applyOrientation(src, 2)
	if c := dst.RGBAAt(0, 0); c.B != 255 {
		t.Errorf("Pixel (0,0) = %+v, erwartet blau", c)
	}
}
