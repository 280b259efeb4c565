// MODUL: convert
// ZWECK: convert-Subkommando: Checkpoint-Verzeichnis zu GGUF konvertieren
// INPUT: Snapshot-Verzeichnis, Ziel-Pfad, optionale Flags
// OUTPUT: GGUF-Datei
// NEBENEFFEKTE: Liest Checkpoint, schreibt Zieldatei
// ABHAENGIGKEITEN: convert
// HINWEISE: --f16 halbiert die Gewichts-Groesse, Bias bleibt F32

package main

import (
	"github.com/spf13/cobra"

	"github.com/7blacky7/zeroshot/convert"
)

// newConvertCommand baut das convert-Subkommando.
func newConvertCommand() *cobra.Command {
	var (
		f16  bool
		name string
	)

	cmd := &cobra.Command{
		Use:   "convert SNAPSHOT_DIR OUTPUT.gguf",
		Short: "Konvertiert einen CLIP-Checkpoint zu GGUF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := convert.KindF32
			if f16 {
				kind = convert.KindF16
			}
			return convert.ConvertFile(args[0], args[1], convert.Options{
				OutputKind: kind,
				Name:       name,
			})
		},
	}

	cmd.Flags().BoolVar(&f16, "f16", false, "Gewichte in halber Praezision ablegen")
	cmd.Flags().StringVar(&name, "name", "", "Modell-Name fuer die GGUF-Metadaten")
	return cmd
}
