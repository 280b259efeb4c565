// MODUL: client
// ZWECK: HTTP-Client fuer den HuggingFace Hub (Model-Info, Datei-Downloads)
// INPUT: Modell-ID, Revision, optionales HF_TOKEN
// OUTPUT: Modell-Metadaten, heruntergeladene Dateien
// NEBENEFFEKTE: Netzwerkzugriffe auf den Hub
// ABHAENGIGKEITEN: net/http, log/slog (Standard-Library)
// HINWEISE: Keine Retries, Transportfehler propagieren an den Aufrufer

package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// Konstanten fuer die Hub-API
const (
	DefaultEndpoint = "https://huggingface.co"
	EnvToken        = "HF_TOKEN"
	EnvEndpoint     = "HF_ENDPOINT"
	userAgent       = "zeroshot/1.0"

	// clientTimeout deckt auch grosse Gewichts-Downloads ab
	clientTimeout = 30 * time.Minute
)

// Fehler-Definitionen
var (
	ErrModelNotFound = errors.New("hub: model not found")
	ErrUnauthorized  = errors.New("hub: authentication failed")
	ErrRateLimited   = errors.New("hub: rate limited")
	ErrBadResponse   = errors.New("hub: invalid server response")
)

// ============================================================================
// Modell-Metadaten
// ============================================================================

// ModelInfo enthaelt die Hub-Metadaten eines Modells.
type ModelInfo struct {
	ID           string    `json:"id"`
	SHA          string    `json:"sha"`
	LastModified time.Time `json:"lastModified"`
	Private      bool      `json:"private"`
	Gated        any       `json:"gated"` // bool oder string ("auto", "manual")
	Tags         []string  `json:"tags"`
	Siblings     []Sibling `json:"siblings"`
}

// Sibling ist eine Datei im Modell-Repository.
type Sibling struct {
	Rfilename string `json:"rfilename"`
	Size      int64  `json:"size"`
}

// IsGated prueft ob das Modell eine Authentifizierung erfordert.
func (m *ModelInfo) IsGated() bool {
	switch v := m.Gated.(type) {
	case bool:
		return v
	case string:
		return v != "" && v != "false"
	default:
		return false
	}
}

// ============================================================================
// Client
// ============================================================================

// Client spricht die HuggingFace Hub API an.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	log      *slog.Logger
}

// NewClient erstellt einen Client. Endpoint und Token kommen aus den
// Environment-Variablen HF_ENDPOINT und HF_TOKEN.
func NewClient() *Client {
	endpoint := DefaultEndpoint
	if e := os.Getenv(EnvEndpoint); e != "" {
		endpoint = strings.TrimRight(e, "/")
	}

	return &Client{
		endpoint: endpoint,
		token:    os.Getenv(EnvToken),
		http:     &http.Client{Timeout: clientTimeout},
		log:      slog.Default().With("component", "hub"),
	}
}

// ModelInfo ruft die Metadaten eines Modells ab.
func (c *Client) ModelInfo(ctx context.Context, modelID string) (*ModelInfo, error) {
	url := fmt.Sprintf("%s/api/models/%s", c.endpoint, modelID)

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, modelID); err != nil {
		return nil, err
	}

	var info ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return &info, nil
}

// FetchFile laedt eine einzelne Repository-Datei in den Writer.
// progress wird mit (geladen, gesamt) aufgerufen, falls gesetzt.
func (c *Client) FetchFile(ctx context.Context, modelID, revision, filename string, w io.Writer, progress ProgressFunc) error {
	url := fmt.Sprintf("%s/%s/resolve/%s/%s", c.endpoint, modelID, revision, filename)
	c.log.Debug("fetching file", "model", modelID, "file", filename, "revision", revision)

	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, modelID); err != nil {
		return err
	}

	var reader io.Reader = resp.Body
	if progress != nil {
		reader = &progressReader{r: resp.Body, total: resp.ContentLength, fn: progress}
	}

	if _, err := io.Copy(w, reader); err != nil {
		return fmt.Errorf("hub: download %s/%s: %w", modelID, filename, err)
	}
	return nil
}

// get baut einen authentifizierten GET-Request.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.http.Do(req)
}

// checkStatus uebersetzt HTTP-Status in Hub-Fehler.
func checkStatus(resp *http.Response, modelID string) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, modelID)
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("%w: status %d for %s", ErrBadResponse, resp.StatusCode, modelID)
	}
}

// ============================================================================
// Progress
// ============================================================================

// ProgressFunc wird waehrend eines Downloads aufgerufen.
type ProgressFunc func(downloaded, total int64)

// progressReader meldet Fortschritt beim Lesen.
type progressReader struct {
	r          io.Reader
	total      int64
	downloaded int64
	fn         ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.downloaded += int64(n)
	p.fn(p.downloaded, p.total)
	return n, err
}
