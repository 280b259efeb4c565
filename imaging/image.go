// MODUL: image
// ZWECK: Bild-Beschaffung aus URL, Dateipfad oder bereits dekodiertem Bild
// INPUT: Referenz als string (http/https URL oder lokaler Pfad) oder image.Image
// OUTPUT: Image Struktur mit orientierungskorrigiertem RGB-Bild
// NEBENEFFEKTE: Netzwerk-Fetch bei URLs, Dateisystem-Lesezugriff bei Pfaden
// ABHAENGIGKEITEN: golang.org/x/image (extern), image/jpeg, image/png
// HINWEISE: EXIF-Orientierung wird vor der RGB-Konvertierung angewendet

package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"os"
	"strings"

	// Standard-Decoder registrieren
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ============================================================================
// Fehler-Definitionen
// ============================================================================

var (
	// ErrInvalidReference: String ist weder URL mit http/https-Schema noch
	// ein existierender Dateipfad.
	ErrInvalidReference = errors.New("imaging: invalid image reference")

	// ErrInvalidType: Referenz ist weder string noch image.Image.
	ErrInvalidType = errors.New("imaging: unsupported image reference type")

	// ErrFetchFailed: HTTP-Fetch einer Bild-URL schlug fehl.
	ErrFetchFailed = errors.New("imaging: image fetch failed")
)

// ============================================================================
// Image - Dekodiertes RGB-Bild mit Metadaten
// ============================================================================

// Image enthaelt ein dekodiertes, orientierungskorrigiertes RGB-Bild.
type Image struct {
	RGB    *image.RGBA
	Width  int
	Height int
	Format Format
}

// ============================================================================
// Resolve - Referenz zu dekodiertem Bild aufloesen
// ============================================================================

// Resolve loest eine Bild-Referenz zu einem dekodierten RGB-Bild auf.
// Akzeptiert:
//   - string mit http:// oder https:// Schema (wird gefetcht)
//   - string mit existierendem lokalen Dateipfad
//   - bereits dekodiertes image.Image
//
// Jede andere Eingabe fuehrt zu ErrInvalidReference bzw. ErrInvalidType.
func Resolve(ctx context.Context, ref any) (*Image, error) {
	switch v := ref.(type) {
	case string:
		return resolveString(ctx, v)
	case image.Image:
		return FromImage(v), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidType, ref)
	}
}

// resolveString unterscheidet URL und Dateipfad
func resolveString(ctx context.Context, ref string) (*Image, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return fetchURL(ctx, ref)
	}

	if _, err := os.Stat(ref); err == nil {
		return LoadFile(ref)
	}

	return nil, fmt.Errorf("%w: URLs must start with http:// or https://, and %q is not a valid path", ErrInvalidReference, ref)
}

// fetchURL laedt ein Bild ueber HTTP. Keine Retries: Transportfehler
// propagieren direkt an den Aufrufer.
func fetchURL(ctx context.Context, url string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrFetchFailed, url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	return Decode(data)
}

// LoadFile laedt ein Bild von einem lokalen Dateipfad
func LoadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imaging: read file: %w", err)
	}
	return Decode(data)
}

// ============================================================================
// Decode - Bytes zu RGB-Bild dekodieren
// ============================================================================

// Decode dekodiert Bild-Bytes, wendet die EXIF-Orientierung an und
// erzwingt RGB unabhaengig vom Quell-Farbmodus (Graustufen, Palette, RGBA).
func Decode(data []byte) (*Image, error) {
	format := DetectFormat(data)
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}

	rgb := toRGB(img)

	// Orientierung nur bei JPEG relevant, EXIF steckt im Original-Stream
	if format == FormatJPEG {
		if o := readOrientation(bytes.NewReader(data)); o > 1 {
			rgb = applyOrientation(rgb, o)
		}
	}

	bounds := rgb.Bounds()
	return &Image{
		RGB:    rgb,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}, nil
}

// FromImage uebernimmt ein bereits dekodiertes Bild ohne EXIF-Korrektur
// (dekodierte Bilder tragen keine EXIF-Metadaten mehr).
func FromImage(img image.Image) *Image {
	rgb := toRGB(img)
	bounds := rgb.Bounds()
	return &Image{
		RGB:    rgb,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: FormatUnknown,
	}
}

// ============================================================================
// toRGB - Farbmodus-Konvertierung
// ============================================================================

// toRGB konvertiert ein beliebiges image.Image zu einem 3-Kanal RGB-Bild
// (gespeichert als RGBA mit Alpha fest auf 255). Ein vorhandener
// Alpha-Kanal wird verworfen, nicht komponiert.
func toRGB(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}

	return dst
}
