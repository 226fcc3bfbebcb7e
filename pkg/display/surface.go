// Package display defines where annotated frames and age labels end up.
package display

import "image"

// Surface shows the live preview and the current age label.
// Implementations must not retain img beyond the next ShowFrame call
// unless they copy it; the capture loop never writes to it after handing it over.
type Surface interface {
	// ShowFrame replaces the preview with img
	ShowFrame(img *image.RGBA)

	// ShowAge replaces the age label. An empty label clears it.
	ShowAge(label string)
}

// Multi fans every update out to several surfaces, in order.
type Multi []Surface

// ShowFrame implements Surface.
func (m Multi) ShowFrame(img *image.RGBA) {
	for _, s := range m {
		s.ShowFrame(img)
	}
}

// ShowAge implements Surface.
func (m Multi) ShowAge(label string) {
	for _, s := range m {
		s.ShowAge(label)
	}
}

// Discard is a Surface that drops everything.
var Discard Surface = discard{}

type discard struct{}

func (discard) ShowFrame(*image.RGBA) {}
func (discard) ShowAge(string)        {}
