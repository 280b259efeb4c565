//go:build cgo

// MODUL: onnx/register
// ZWECK: Registrierung der ONNX-Encoder in der Default-Registry
// INPUT: Keine (init)
// OUTPUT: Registry-Eintraege "clip-onnx", "clip-visual-onnx", "mclip-onnx"
// NEBENEFFEKTE: Schreibt in encoder.DefaultRegistry
// ABHAENGIGKEITEN: encoder (Registry)
// HINWEISE: Import des Pakets genuegt zur Aktivierung

package onnx

import "github.com/7blacky7/zeroshot/encoder"

func init() {
	encoder.DefaultRegistry.RegisterJoint("clip-onnx",
		func(modelPath string, opts encoder.LoadOptions) (encoder.JointEncoder, error) {
			return NewClipEncoder(modelPath, ClipOptions{}, opts)
		})

	encoder.DefaultRegistry.RegisterImage("clip-visual-onnx",
		func(modelPath string, opts encoder.LoadOptions) (encoder.ImageEncoder, error) {
			return NewVisualEncoder(modelPath, ClipOptions{}, opts)
		})

	encoder.DefaultRegistry.RegisterText("mclip-onnx",
		func(modelPath string, opts encoder.LoadOptions) (encoder.TextEncoder, error) {
			return NewMClipTextEncoder(modelPath, opts)
		})
}
