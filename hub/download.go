// MODUL: download
// ZWECK: Parallele Downloads eines Modell-Snapshots in den Cache
// INPUT: Modell-ID, Dateiliste, Fortschritts-Callback
// OUTPUT: Vollstaendiger lokaler Snapshot-Pfad
// NEBENEFFEKTE: Schreibt Dateien in den Cache, Netzwerkzugriffe
// ABHAENGIGKEITEN: golang.org/x/sync/errgroup
// HINWEISE: Downloads landen erst in .partial-Dateien, Rename nach Erfolg

package hub

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// maxParallelDownloads begrenzt gleichzeitige Dateitransfers.
const maxParallelDownloads = 4

// Downloader holt Modell-Snapshots vom Hub in den lokalen Cache.
type Downloader struct {
	client *Client
	cache  *Cache
}

// NewDownloader verbindet Client und Cache.
func NewDownloader(client *Client, cache *Cache) *Downloader {
	return &Downloader{client: client, cache: cache}
}

// FileProgress meldet den Fortschritt einer einzelnen Datei.
type FileProgress struct {
	Filename   string
	Downloaded int64
	Total      int64
}

// EnsureModel laedt alle angegebenen Dateien eines Modells herunter,
// sofern sie nicht bereits im Cache liegen, und gibt den Snapshot-Pfad
// zurueck. progress darf nil sein.
func (d *Downloader) EnsureModel(ctx context.Context, modelID, revision string, files []string, progress func(FileProgress)) (string, error) {
	if revision == "" {
		revision = DefaultRevision
	}

	dir, err := d.cache.EnsureSnapshotDir(modelID, revision)
	if err != nil {
		return "", err
	}

	var missing []string
	for _, f := range files {
		if !d.cache.HasFile(modelID, revision, f) {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return dir, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDownloads)

	for _, filename := range missing {
		g.Go(func() error {
			return d.downloadFile(ctx, modelID, revision, filename, dir, progress)
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return dir, nil
}

// downloadFile holt eine Datei ueber eine .partial-Zwischendatei.
func (d *Downloader) downloadFile(ctx context.Context, modelID, revision, filename, dir string, progress func(FileProgress)) error {
	target := filepath.Join(dir, filename)
	if sub := filepath.Dir(target); sub != dir {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return fmt.Errorf("hub: create subdir: %w", err)
		}
	}

	partial := target + ".partial"
	f, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("hub: create partial file: %w", err)
	}

	var fn ProgressFunc
	if progress != nil {
		fn = func(downloaded, total int64) {
			progress(FileProgress{Filename: filename, Downloaded: downloaded, Total: total})
		}
	}

	if err := d.client.FetchFile(ctx, modelID, revision, filename, f, fn); err != nil {
		f.Close()
		os.Remove(partial)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(partial)
		return fmt.Errorf("hub: close partial file: %w", err)
	}
	return os.Rename(partial, target)
}
