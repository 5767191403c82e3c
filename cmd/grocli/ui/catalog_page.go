package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"grocli/internal/anim"
	"grocli/internal/api"
	"grocli/internal/types"
)

// catalogMode is which level of the catalog is on screen.
type catalogMode int

const (
	modeCategories catalogMode = iota
	modeProducts
	modeDetail
)

// categoryItem adapts a category for the bubbles list.
type categoryItem struct {
	category types.Category
}

func (i categoryItem) Title() string       { return i.category.Name }
func (i categoryItem) Description() string { return "browse " + i.category.Name }
func (i categoryItem) FilterValue() string { return i.category.Name }

// openCategoryMsg asks the app to fetch a category's products.
type openCategoryMsg struct {
	name string
}

// openProductMsg tells the app a product detail view opened, so the route
// (and with it the visibility signal) tracks the screen change.
type openProductMsg struct {
	product types.Product
}

// leaveProductMsg tells the app the detail view closed back to the listing.
type leaveProductMsg struct{}

// addToCartMsg asks the app to add a product and start the fly transfer
// from the given row rectangle.
type addToCartMsg struct {
	product types.Product
	rowRect anim.Rect
}

// CatalogPage renders the storefront: category list, featured strip, and
// per-category product rows.
type CatalogPage struct {
	styles Styles

	mode       catalogMode
	categories list.Model
	featured   []types.Product

	categoryName string
	products     []types.Product
	cursor       int
	detail       types.Product

	spin    spinner.Model
	loading bool

	width, height int
}

// NewCatalogPage creates an empty catalog page.
func NewCatalogPage(styles Styles) CatalogPage {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(styles.Theme.Primary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(styles.Theme.Muted)

	categories := list.New(nil, delegate, 40, 14)
	categories.Title = "Shop by category"
	categories.SetShowStatusBar(false)
	categories.SetFilteringEnabled(true)

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = spin.Style.Foreground(styles.Theme.Primary)

	return CatalogPage{
		styles:     styles,
		categories: categories,
		spin:       spin,
		loading:    true,
	}
}

// Init starts the loading spinner.
func (p CatalogPage) Init() tea.Cmd {
	return p.spin.Tick
}

// SetSize updates layout dimensions.
func (p *CatalogPage) SetSize(w, h int) {
	p.width = w
	p.height = h
	p.categories.SetSize(w-4, h-8)
}

// SetStorefront installs the home payload.
func (p *CatalogPage) SetStorefront(sf *api.Storefront) {
	items := make([]list.Item, 0, len(sf.Categories))
	for _, c := range sf.Categories {
		items = append(items, categoryItem{category: c})
	}
	p.categories.SetItems(items)
	p.featured = sf.Featured
	p.mode = modeCategories
	p.loading = false
}

// SetProducts switches to the product listing for a category.
func (p *CatalogPage) SetProducts(category string, products []types.Product) {
	p.categoryName = category
	p.products = products
	p.cursor = 0
	p.mode = modeProducts
}

// rowRect approximates the cursor row's screen rectangle, the fly
// transfer's launch point. Rows start below the header and category title.
func (p *CatalogPage) rowRect() anim.Rect {
	return anim.Rect{X: 4, Y: float64(4 + p.cursor), W: 24, H: 1}
}

// Update handles keys for the active mode.
func (p CatalogPage) Update(msg tea.Msg) (CatalogPage, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		if !p.loading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(tick)
		return p, cmd
	}

	switch p.mode {
	case modeCategories:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
			if item, ok := p.categories.SelectedItem().(categoryItem); ok {
				name := item.category.Name
				return p, func() tea.Msg { return openCategoryMsg{name: name} }
			}
			return p, nil
		}
		var cmd tea.Cmd
		p.categories, cmd = p.categories.Update(msg)
		return p, cmd

	case modeProducts:
		key, ok := msg.(tea.KeyMsg)
		if !ok {
			return p, nil
		}
		switch key.String() {
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.products)-1 {
				p.cursor++
			}
		case "left", "esc":
			p.mode = modeCategories
		case "right", "d":
			if p.cursor < len(p.products) {
				p.detail = p.products[p.cursor]
				p.mode = modeDetail
				product := p.detail
				return p, func() tea.Msg { return openProductMsg{product: product} }
			}
		case "a", "enter", " ":
			if p.cursor < len(p.products) {
				product := p.products[p.cursor]
				rect := p.rowRect()
				return p, func() tea.Msg { return addToCartMsg{product: product, rowRect: rect} }
			}
		}

	case modeDetail:
		key, ok := msg.(tea.KeyMsg)
		if !ok {
			return p, nil
		}
		switch key.String() {
		case "left", "esc":
			p.mode = modeProducts
			return p, func() tea.Msg { return leaveProductMsg{} }
		case "a", "enter", " ":
			product := p.detail
			// launch from the detail card's image slot
			rect := anim.Rect{X: 4, Y: 5, W: 24, H: 1}
			return p, func() tea.Msg { return addToCartMsg{product: product, rowRect: rect} }
		}
	}
	return p, nil
}

// View renders the active mode.
func (p CatalogPage) View() string {
	switch p.mode {
	case modeProducts:
		return p.viewProducts()
	case modeDetail:
		return p.viewDetail()
	}
	if p.loading {
		return p.spin.View() + " " + p.styles.Muted.Render("Loading the store...")
	}
	return p.viewCategories()
}

func (p CatalogPage) viewDetail() string {
	var sb strings.Builder
	prod := p.detail
	sb.WriteString(p.styles.Title.Render(prod.Name))
	sb.WriteString("\n")
	sb.WriteString("  " + p.styles.Price.Render(prod.Price.Rupees()))
	if prod.MRP > prod.Price {
		sb.WriteString(" " + p.styles.Strike.Render(prod.MRP.Rupees()))
	}
	if prod.Unit != "" {
		sb.WriteString("  " + p.styles.Muted.Render(prod.Unit))
	}
	sb.WriteString("\n\n")
	if prod.Description != "" {
		sb.WriteString("  " + prod.Description + "\n\n")
	}
	if !prod.InStock {
		sb.WriteString(p.styles.Error.Render("  Out of stock") + "\n\n")
		sb.WriteString(p.styles.Muted.Render("  esc back"))
		return sb.String()
	}
	if max := prod.EffectiveMaxQuantity(); max > 0 {
		sb.WriteString(p.styles.Muted.Render(fmt.Sprintf("  Limit %d per order", max)))
		sb.WriteString("\n\n")
	}
	sb.WriteString(p.styles.Muted.Render("  a/enter add to basket · esc back"))
	return sb.String()
}

func (p CatalogPage) viewCategories() string {
	var sb strings.Builder
	sb.WriteString(p.categories.View())

	if len(p.featured) > 0 {
		sb.WriteString("\n")
		sb.WriteString(p.styles.Subtitle.Render("Featured today"))
		sb.WriteString("\n")
		for i, prod := range p.featured {
			if i >= 3 {
				break
			}
			sb.WriteString(fmt.Sprintf("  %s %s\n",
				prod.Name, p.styles.Price.Render(prod.Price.Rupees())))
		}
	}
	return sb.String()
}

func (p CatalogPage) viewProducts() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render(p.categoryName))
	sb.WriteString("\n")

	if len(p.products) == 0 {
		sb.WriteString(p.styles.Muted.Render("Nothing in this aisle right now."))
		return sb.String()
	}

	for i, prod := range p.products {
		line := fmt.Sprintf("%-28s %-8s %s", truncate(prod.Name, 28), prod.Unit, prod.Price.Rupees())
		if prod.MRP > prod.Price {
			line += " " + p.styles.Strike.Render(prod.MRP.Rupees())
		}
		if !prod.InStock {
			line += " " + p.styles.Error.Render("out of stock")
		}
		if i == p.cursor {
			line = p.styles.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(p.styles.Muted.Render("a/enter add to basket · esc back"))
	return sb.String()
}

func truncate(s string, l int) string {
	runes := []rune(s)
	if len(runes) > l {
		return string(runes[:l-3]) + "..."
	}
	return s
}
