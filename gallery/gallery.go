// Package gallery holds the image cursor of an open detail view. The state
// is ephemeral: it is created when a detail opens and dropped when it closes.
package gallery

type Gallery struct {
	images []string
	idx    int
}

func New(images []string) Gallery {
	return Gallery{images: images}
}

// Len counts navigable slots. An event with no images still has one implicit
// placeholder slot.
func (g Gallery) Len() int {
	if len(g.images) == 0 {
		return 1
	}
	return len(g.images)
}

// Show moves the cursor to idx, wrapping at both ends: one step past the last
// image lands on the first and vice versa.
func (g *Gallery) Show(idx int) {
	if idx < 0 {
		idx = g.Len() - 1
	}
	if idx >= g.Len() {
		idx = 0
	}
	g.idx = idx
}

func (g *Gallery) Next() { g.Show(g.idx + 1) }
func (g *Gallery) Prev() { g.Show(g.idx - 1) }

func (g Gallery) Index() int { return g.idx }

// Current returns the image URL under the cursor. ok is false on the
// placeholder slot of an imageless event.
func (g Gallery) Current() (string, bool) {
	if len(g.images) == 0 {
		return "", false
	}
	return g.images[g.idx], true
}

func (g Gallery) Images() []string { return g.images }
