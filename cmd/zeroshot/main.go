// MODUL: main
// ZWECK: Einstiegspunkt der zeroshot CLI
// INPUT: Kommandozeile, Environment (ZEROSHOT_DEBUG)
// OUTPUT: Exit-Code
// NEBENEFFEKTE: Konfiguriert den globalen slog-Logger
// ABHAENGIGKEITEN: root.go (Kommandos), log/slog
// HINWEISE: Debug-Logging via ZEROSHOT_DEBUG=1

package main

import (
	"log/slog"
	"os"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("ZEROSHOT_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
