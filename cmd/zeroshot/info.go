// MODUL: info
// ZWECK: languages- und models-Subkommandos: Katalog-Auskunft
// INPUT: Keine
// OUTPUT: Tabellen auf stdout
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: classifier, hub, github.com/olekukonko/tablewriter
// HINWEISE: Keine Netzwerkzugriffe

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/7blacky7/zeroshot/classifier"
	"github.com/7blacky7/zeroshot/hub"
)

// newLanguagesCommand listet die unterstuetzten Sprachcodes.
func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "Listet die unterstuetzten Label-Sprachen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, code := range classifier.AvailableLanguages() {
				fmt.Println(code)
			}
			return nil
		},
	}
}

// newModelsCommand listet den Backbone-Katalog mit Parametern.
func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Listet die verfuegbaren Vision-Backbones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Backbone", "Embedding", "Image Size"})

			for _, name := range hub.BackboneNames() {
				b, err := hub.LookupBackbone(name)
				if err != nil {
					return err
				}
				table.Append([]string{
					b.Name,
					strconv.Itoa(b.EmbeddingDim),
					strconv.Itoa(b.ImageSize),
				})
			}
			table.Render()

			fmt.Printf("\ndefault: %s (multilingual pair is fixed to %s)\n",
				hub.DefaultBackbone, hub.MultilingualPair.ImageRepo)
			return nil
		},
	}
}
