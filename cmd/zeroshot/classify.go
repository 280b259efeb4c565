// MODUL: classify
// ZWECK: classify-Subkommando: Bild gegen Kandidaten-Labels klassifizieren
// INPUT: Bild-Referenz (URL/Pfad), Labels, optionale Flags
// OUTPUT: Ergebnis-Tabelle auf stdout
// NEBENEFFEKTE: Modell-Download beim ersten Aufruf
// ABHAENGIGKEITEN: classifier, github.com/olekukonko/tablewriter
// HINWEISE: ONNX-Encoder registrieren sich ueber den Blank-Import

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/7blacky7/zeroshot/classifier"
	_ "github.com/7blacky7/zeroshot/encoder/ggml"
	_ "github.com/7blacky7/zeroshot/encoder/onnx"
)

// newClassifyCommand baut das classify-Subkommando.
func newClassifyCommand() *cobra.Command {
	var (
		lang     string
		model    string
		labels   string
		template string
		topK     int
	)

	cmd := &cobra.Command{
		Use:   "classify IMAGE --labels LABEL[,LABEL...]",
		Short: "Klassifiziert ein Bild gegen frei waehlbare Labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := classifier.New(cmd.Context(), classifier.Config{
				Lang:  lang,
				Model: model,
			})
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.Classify(cmd.Context(), classifier.Request{
				Image:              args[0],
				Labels:             labels,
				HypothesisTemplate: template,
				TopK:               topK,
			})
			if err != nil {
				return err
			}

			printResult(res, labels)
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "en", "Sprachcode der Labels")
	cmd.Flags().StringVar(&model, "model", "", "Vision-Backbone (nur en, Standard ViT-B/32)")
	cmd.Flags().StringVar(&labels, "labels", "", "Kandidaten-Labels, kommagetrennt")
	cmd.Flags().StringVar(&template, "template", "", "Hypothesen-Template mit {} Platzhalter")
	cmd.Flags().IntVar(&topK, "top-k", 0, "wird angenommen, kuerzt die Ausgabe nicht")
	cmd.MarkFlagRequired("labels")

	return cmd
}

// printResult rendert Scores und Fuzzy-Matches als Tabelle.
func printResult(res *classifier.Result, rawLabels string) {
	labels := splitDisplayLabels(rawLabels, len(res.Scores))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Label", "Score", "Fuzzy Match"})
	for i, score := range res.Scores {
		table.Append([]string{
			labels[i],
			fmt.Sprintf("%.4f", score),
			res.FuzzyMatchedLabels[i],
		})
	}
	table.Render()

	fmt.Printf("highest score:       %.4f\n", res.HighestScore)
	if res.HighestFuzzyLabel != "" {
		fmt.Printf("highest fuzzy label: %s\n", res.HighestFuzzyLabel)
	}
}

// splitDisplayLabels rekonstruiert die Anzeige-Labels aus dem Flag.
func splitDisplayLabels(raw string, want int) []string {
	labels := splitTrim(raw)
	for len(labels) < want {
		labels = append(labels, "")
	}
	return labels
}

// splitTrim trennt kommagetrennte Eingaben und verwirft leere Eintraege.
func splitTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
