package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"grocli/internal/anim"
	"grocli/internal/cart"
)

// StickyBar is the floating cart summary pinned above the footer. Whether it
// is drawn at all is the visibility signal's call; the bar itself only knows
// how to measure and render.
type StickyBar struct {
	styles Styles
	store  *cart.Store
	coord  *anim.Coordinator

	width, height int
}

// NewStickyBar wires the bar to the shared store and the transfer
// coordinator it reports the cart icon position to.
func NewStickyBar(styles Styles, store *cart.Store, coord *anim.Coordinator) StickyBar {
	return StickyBar{styles: styles, store: store, coord: coord}
}

// SetSize records the window size and re-registers the cart icon target.
// Registration happens on every resize regardless of visibility so a fly
// transfer launched before the bar has ever been shown still lands somewhere
// sensible; the coordinator coalesces sub-threshold jitter.
func (b *StickyBar) SetSize(w, h int) {
	b.width = w
	b.height = h
	b.coord.RegisterTargetRect(b.iconRect())
}

// iconRect is the cart glyph's cell rectangle: right-aligned on the bar row,
// one row above the footer.
func (b *StickyBar) iconRect() anim.Rect {
	x := float64(b.width - 6)
	if x < 0 {
		x = 0
	}
	return anim.Rect{X: x, Y: float64(b.height - 3), W: 2, H: 1}
}

// View renders the bar line. Callers draw it only while the signal says
// Shown.
func (b StickyBar) View() string {
	totals := b.store.Totals()
	noun := "items"
	if totals.Units == 1 {
		noun = "item"
	}
	label := fmt.Sprintf("🛒 %d %s · %s · press b to view basket",
		totals.Units, noun, totals.Total.Rupees())

	bar := b.styles.StickyBar.Render(label)
	pad := b.width - lipgloss.Width(bar)
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad/2) + bar
}
