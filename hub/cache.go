// MODUL: cache
// ZWECK: Lokaler Modell-Cache im HuggingFace-Hub-Layout
// INPUT: Modell-ID, Revision, Cache-Verzeichnis aus Environment
// OUTPUT: Snapshot-Pfade, Cache-Status
// NEBENEFFEKTE: Erstellt Verzeichnisse unter dem Cache-Pfad
// ABHAENGIGKEITEN: os, path/filepath (Standard-Library)
// HINWEISE: Layout ist kompatibel zu huggingface_hub (models--org--name)

package hub

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment-Variablen fuer den Cache-Pfad, in Prioritaetsreihenfolge.
const (
	EnvHubCache = "HF_HUB_CACHE"
	EnvHFHome   = "HF_HOME"

	// DefaultRevision wird verwendet wenn keine Revision angegeben ist.
	DefaultRevision = "main"
)

// Cache verwaltet Modell-Snapshots auf der Festplatte.
type Cache struct {
	root string
}

// NewCache erstellt einen Cache. Der Pfad wird aus HF_HUB_CACHE,
// HF_HOME/hub oder ~/.cache/huggingface/hub aufgeloest.
func NewCache() (*Cache, error) {
	root, err := resolveCacheDir()
	if err != nil {
		return nil, err
	}
	return &Cache{root: root}, nil
}

// NewCacheAt erstellt einen Cache an einem expliziten Pfad.
func NewCacheAt(root string) *Cache {
	return &Cache{root: root}
}

// resolveCacheDir loest das Cache-Verzeichnis gemaess Prioritaet auf.
func resolveCacheDir() (string, error) {
	if dir := os.Getenv(EnvHubCache); dir != "" {
		return dir, nil
	}
	if home := os.Getenv(EnvHFHome); home != "" {
		return filepath.Join(home, "hub"), nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("hub: resolve cache dir: %w", err)
	}
	return filepath.Join(userHome, ".cache", "huggingface", "hub"), nil
}

// Root gibt das Cache-Wurzelverzeichnis zurueck.
func (c *Cache) Root() string {
	return c.root
}

// repoDir bildet die Modell-ID auf das Hub-Layout ab:
// "org/name" wird zu "models--org--name".
func (c *Cache) repoDir(modelID string) string {
	escaped := strings.ReplaceAll(modelID, "/", "--")
	return filepath.Join(c.root, "models--"+escaped)
}

// SnapshotDir gibt den Snapshot-Pfad fuer Modell und Revision zurueck.
func (c *Cache) SnapshotDir(modelID, revision string) string {
	if revision == "" {
		revision = DefaultRevision
	}
	return filepath.Join(c.repoDir(modelID), "snapshots", revision)
}

// HasFile prueft ob eine Datei im Snapshot vorhanden und nicht leer ist.
func (c *Cache) HasFile(modelID, revision, filename string) bool {
	info, err := os.Stat(filepath.Join(c.SnapshotDir(modelID, revision), filename))
	return err == nil && !info.IsDir() && info.Size() > 0
}

// EnsureSnapshotDir legt das Snapshot-Verzeichnis an falls es fehlt.
func (c *Cache) EnsureSnapshotDir(modelID, revision string) (string, error) {
	dir := c.SnapshotDir(modelID, revision)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("hub: create snapshot dir: %w", err)
	}
	return dir, nil
}
