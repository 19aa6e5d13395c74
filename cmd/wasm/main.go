//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/RichardBrown384/riscos-artworks-viewer/internal/document"
	"github.com/RichardBrown384/riscos-artworks-viewer/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.New(engine.DefaultViewportWidth)

	artworksEngine := js.Global().Get("Object").New()

	artworksEngine.Set("extractShaded", js.FuncOf(extractShaded))
	artworksEngine.Set("extractOutlines", js.FuncOf(extractOutlines))
	artworksEngine.Set("sample", js.FuncOf(sample))
	artworksEngine.Set("viewportWidth", js.ValueOf(eng.ViewportWidth()))

	js.Global().Set("artworksEngine", artworksEngine)

	// Signal that WASM is ready
	js.Global().Set("artworksWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// extractShaded(loaderJSON) returns the shaded scene as a JSON string.
func extractShaded(this js.Value, args []js.Value) interface{} {
	return extract(args, engine.ModeShaded)
}

// extractOutlines(loaderJSON) returns the outline scene as a JSON string.
func extractOutlines(this js.Value, args []js.Value) interface{} {
	return extract(args, engine.ModeOutline)
}

// sample() returns the shaded scene of the built-in sample document.
func sample(this js.Value, args []js.Value) interface{} {
	return render(document.NewSampleDocument(), engine.ModeShaded)
}

func extract(args []js.Value, mode engine.Mode) interface{} {
	if len(args) < 1 {
		return errorValue("missing document JSON")
	}

	doc, err := document.Decode([]byte(args[0].String()))
	if err != nil {
		return errorValue(err.Error())
	}
	return render(doc, mode)
}

func render(doc *document.Document, mode engine.Mode) interface{} {
	scene, err := eng.Render(doc, mode)
	if err != nil {
		return errorValue(err.Error())
	}

	out, err := engine.ToJSON(scene)
	if err != nil {
		return errorValue(err.Error())
	}
	return js.ValueOf(out)
}

func errorValue(msg string) js.Value {
	return js.ValueOf(map[string]interface{}{"error": msg})
}
