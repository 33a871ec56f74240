/*
Package lilfast is a sketch-to-image canvas engine. The user draws freehand on a
512x512 canvas, optionally over a background image, and the composited drawing is
submitted together with a text prompt to a remote image generation service.

The canvas keeps the pen strokes on their own transparent layer, separate from
the background image. After every change the visible surface is repainted from
scratch: white backdrop, then the background scaled to fit and centered, then
the strokes on top.

The package provides a command line interface and a Gio window. To check the
supported commands type:

	$ lilfast --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"os"

		"github.com/lilfast/lilfast"
	)

	func main() {
		c := lilfast.NewCanvas(lilfast.CanvasSize, lilfast.CanvasSize)
		pen := lilfast.DefaultStyle()

		c.HandlePointer(lilfast.PointerEvent{Type: lilfast.PointerDown, Client: lilfast.Pt(10, 10)}, pen)
		c.HandlePointer(lilfast.PointerEvent{Type: lilfast.PointerMove, Client: lilfast.Pt(50, 50)}, pen)
		c.HandlePointer(lilfast.PointerEvent{Type: lilfast.PointerUp}, pen)

		c.Export(os.Stdout)
	}
*/
package lilfast
