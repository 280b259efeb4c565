// MODUL: root
// ZWECK: Wurzel-Kommando und Registrierung der Subkommandos
// INPUT: Kommandozeilen-Argumente
// OUTPUT: Konfigurierter cobra-Baum
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: github.com/spf13/cobra
// HINWEISE: SilenceUsage, Fehler gehen einmal an stderr

package main

import (
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// newRootCommand baut den Kommando-Baum.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "zeroshot",
		Short:        "Zero-Shot Bildklassifikation mit CLIP-Embeddings",
		Version:      version,
		SilenceUsage: true,
	}

	root.AddCommand(
		newClassifyCommand(),
		newPullCommand(),
		newConvertCommand(),
		newLanguagesCommand(),
		newModelsCommand(),
	)
	return root
}
