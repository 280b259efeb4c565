// MODUL: pull
// ZWECK: pull-Subkommando: Modell-Snapshots vorab in den Cache laden
// INPUT: Backbone-Name oder --multilingual
// OUTPUT: Fortschritt auf stderr, Snapshot-Pfad auf stdout
// NEBENEFFEKTE: Downloads in den Modell-Cache
// ABHAENGIGKEITEN: hub, golang.org/x/term (TTY-Erkennung)
// HINWEISE: Ohne TTY wird der Fortschritt nicht gerendert

package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/7blacky7/zeroshot/hub"
)

// newPullCommand baut das pull-Subkommando.
func newPullCommand() *cobra.Command {
	var multilingual bool

	cmd := &cobra.Command{
		Use:   "pull [BACKBONE]",
		Short: "Laedt Modell-Gewichte vorab in den Cache",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := hub.NewCache()
			if err != nil {
				return err
			}
			d := hub.NewDownloader(hub.NewClient(), cache)
			progress := newProgressPrinter()

			if multilingual {
				pair := hub.MultilingualPair
				if _, err := d.EnsureModel(cmd.Context(), pair.ImageRepo, "",
					[]string{"onnx/visual.onnx"}, progress); err != nil {
					return err
				}
				dir, err := d.EnsureModel(cmd.Context(), pair.TextRepo, "",
					[]string{"onnx/model.onnx", "vocab.txt"}, progress)
				if err != nil {
					return err
				}
				fmt.Println(dir)
				return nil
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			backbone, err := hub.LookupBackbone(name)
			if err != nil {
				return err
			}

			dir, err := d.EnsureModel(cmd.Context(), backbone.Repo, "", backbone.Files(), progress)
			if err != nil {
				return err
			}
			fmt.Println(dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&multilingual, "multilingual", false, "laedt das multilinguale Encoder-Paar")
	return cmd
}

// newProgressPrinter rendert Download-Fortschritt auf einem TTY.
// Ohne TTY (Pipes, CI) bleibt die Ausgabe still.
func newProgressPrinter() func(hub.FileProgress) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}

	var mu sync.Mutex
	return func(p hub.FileProgress) {
		mu.Lock()
		defer mu.Unlock()

		if p.Total > 0 {
			fmt.Fprintf(os.Stderr, "\r%s: %3d%% (%d/%d bytes)",
				p.Filename, p.Downloaded*100/p.Total, p.Downloaded, p.Total)
		} else {
			fmt.Fprintf(os.Stderr, "\r%s: %d bytes", p.Filename, p.Downloaded)
		}
		if p.Total > 0 && p.Downloaded >= p.Total {
			fmt.Fprintln(os.Stderr)
		}
	}
}
