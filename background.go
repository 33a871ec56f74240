package lilfast

import "image"

// Background holds at most one decoded image used as the canvas backdrop.
// Every Set or Clear bumps the generation, which lets the compositor
// cache the scaled copy of the current image.
type Background struct {
	img image.Image
	gen uint64
}

// Set replaces the current image. The previous one is dropped.
func (b *Background) Set(img image.Image) {
	b.img = img
	b.gen++
}

// Clear removes the current image.
func (b *Background) Clear() {
	b.img = nil
	b.gen++
}

// Get returns the current image and whether one is present.
func (b *Background) Get() (image.Image, bool) {
	return b.img, b.img != nil
}

// Generation returns a counter that changes whenever the held image changes.
func (b *Background) Generation() uint64 {
	return b.gen
}
