package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"event-catalog-cli/catalog"
	"event-catalog-cli/ledger"
	"event-catalog-cli/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	faintStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("63")).Padding(0, 1)
	soldOutStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	priceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	selectedStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.HiddenBorder()).Padding(0, 1)
	panelStyle    = lipgloss.NewStyle().Padding(1, 3).Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("63")).MarginTop(1)
)

func hint(text string) string {
	return faintStyle.Render(text)
}

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateLoading:
		return header + "\n\n" + fmt.Sprintf("%s Loading events\n\n%s", m.spinner.View(), hint("Fetching the catalog..."))
	case stateLoadFailed:
		return header + "\n\n" + m.loadFailedView()
	case stateCatalog:
		return header + "\n\n" + m.catalogView()
	case stateDetail:
		return header + "\n\n" + m.detailView()
	case stateCartView:
		return header + "\n\n" + m.cartView()
	case stateCartForm:
		return header + "\n\n" + m.formView()
	case stateCartConfirmed:
		return header + "\n\n" + m.confirmedView()
	default:
		return header
	}
}

func (m appModel) headerView() string {
	title := titleStyle.Render("Eventos")

	var sub []string
	if m.query != "" {
		sub = append(sub, fmt.Sprintf("Search: %s", m.query))
	}
	if m.state == stateCatalog {
		sub = append(sub, fmt.Sprintf("View: %s", m.view))
	}
	if n := len(m.cart); n > 0 {
		sub = append(sub, fmt.Sprintf("Cart: %d", n))
	}
	meta := strings.Join(sub, " • ")
	if meta != "" {
		meta = "\n" + faintStyle.Render(meta)
	}

	hints := "ctrl+c quit"
	switch m.state {
	case stateCatalog:
		hints = "type to search • ↑↓ select • ←→ page • enter detail • tab grid/list • ctrl+f favorite • ctrl+b cart • ctrl+c quit"
	case stateDetail:
		hints = "←→ gallery • 1-9 thumbnail • +/- qty • a add to cart • f favorite • s share • o map • ctrl+b cart • esc back"
	case stateCartView:
		hints = "↑↓ select • x remove • enter checkout • esc close"
	case stateCartForm:
		hints = "tab next field • enter confirm • esc back"
	case stateCartConfirmed:
		hints = "c copy code • enter close"
	}

	noticeLine := ""
	if m.notice != "" {
		noticeLine = "\n" + errorStyle.Render(m.notice)
	}
	return title + meta + noticeLine + "\n" + hint(hints)
}

func (m appModel) loadFailedView() string {
	return errorStyle.Render("Could not load events.") + "\n" +
		hint(fmt.Sprintf("Source: %s", m.repo.Source())) + "\n" +
		hint("Details: "+m.err.Error()) + "\n\n" +
		hint("Press q to quit.")
}

func (m appModel) catalogView() string {
	if len(m.filtered) == 0 {
		return "No events match your search.\n\n" + hint("Press esc to clear the filter.")
	}

	page := catalog.Paginate(m.filtered, m.page, catalog.PerPage)

	var body string
	if m.view == model.ViewGrid {
		body = m.gridView(page.Items)
	} else {
		body = m.listView(page.Items)
	}

	// One or zero pages suppresses the pagination line.
	footer := ""
	if page.TotalPages > 1 {
		footer = "\n" + hint(fmt.Sprintf("Page %d / %d", catalog.ClampPage(m.page, page.TotalPages), page.TotalPages))
	}
	return body + footer
}

func (m appModel) gridView(items []model.EventRecord) string {
	cols := 2
	var rows []string
	for i := 0; i < len(items); i += cols {
		var cells []string
		for j := i; j < min(i+cols, len(items)); j++ {
			cells = append(cells, m.renderCard(items[j], j == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func (m appModel) listView(items []model.EventRecord) string {
	var lines []string
	for i, ev := range items {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		fav := ""
		if m.favorites[ev.Id] {
			fav = " ♥"
		}
		sold := ""
		if ev.SoldOut {
			sold = " " + soldOutStyle.Render("SOLD OUT")
		}
		line := fmt.Sprintf("%s%s%s • %s • %s • %s%s",
			marker, ev.Title, fav, ev.City, ev.Datetime.Format("Mon 02 Jan 15:04"), formatPrice(ev), sold)
		if i == m.cursor {
			line = titleStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m appModel) renderCard(ev model.EventRecord, selected bool) string {
	fav := ""
	if m.favorites[ev.Id] {
		fav = " ♥"
	}
	sold := ""
	if ev.SoldOut {
		sold = "\n" + soldOutStyle.Render("SOLD OUT")
	}
	content := titleStyle.Render(ev.Title+fav) + "\n" +
		faintStyle.Render(fmt.Sprintf("%s • %s", ev.City, ev.Datetime.Format("02 Jan 15:04"))) + "\n" +
		priceStyle.Render(formatPrice(ev)) + sold

	w := 36
	if m.width > 0 {
		w = max(24, m.width/2-4)
	}
	if selected {
		return selectedStyle.Width(w).Render(content)
	}
	return cardStyle.Width(w).Render(content)
}

func (m appModel) detailView() string {
	ev := m.current

	var b strings.Builder
	b.WriteString(titleStyle.Render(ev.Title))
	b.WriteString("\n")

	if cats := ev.CategoryList(); len(cats) > 0 {
		var badges []string
		for _, c := range cats {
			badges = append(badges, badgeStyle.Render(c))
		}
		b.WriteString(strings.Join(badges, " "))
		b.WriteString("\n")
	}

	meta := []string{}
	if len(ev.Artists) > 0 {
		meta = append(meta, strings.Join(ev.Artists, ", "))
	}
	if ev.Venue != "" {
		meta = append(meta, ev.Venue)
	}
	meta = append(meta, ev.City)
	b.WriteString(faintStyle.Render(strings.Join(meta, " • ")))
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(ev.Datetime.Format("Monday, 02 Jan 2006 15:04")))
	if ev.SoldOut {
		b.WriteString(" " + soldOutStyle.Render("SOLD OUT"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.galleryView())
	b.WriteString("\n")

	if ev.Description != "" {
		b.WriteString(ev.Description)
		b.WriteString("\n\n")
	}

	age, refund := "-", "-"
	if ev.Policies != nil {
		if ev.Policies.Age != "" {
			age = ev.Policies.Age
		}
		if ev.Policies.Refund != "" {
			refund = ev.Policies.Refund
		}
	}
	b.WriteString(hint(fmt.Sprintf("Policies — Age: %s • Refund: %s", age, refund)))
	b.WriteString("\n")

	if url := ev.Map.URL(); url != "" {
		b.WriteString(hint("Map: " + url + " (press o to open)"))
		b.WriteString("\n")
	}

	fav := "♡ not a favorite (f to add)"
	if m.favorites[ev.Id] {
		fav = "♥ favorite (f to remove)"
	}
	b.WriteString(hint(fav))
	b.WriteString("\n\n")

	b.WriteString(priceStyle.Render(formatPrice(ev)))
	if ev.SoldOut || ev.Stock < 1 {
		b.WriteString("  " + soldOutStyle.Render("No tickets available"))
	} else {
		b.WriteString(fmt.Sprintf("  Qty: %d  (stock %d)", m.qty, ev.Stock))
	}
	return b.String()
}

func (m appModel) galleryView() string {
	current, ok := m.gal.Current()
	if !ok {
		return faintStyle.Render("[ no images ]") + "\n"
	}

	var thumbs []string
	for i := range m.gal.Images() {
		if i == m.gal.Index() {
			thumbs = append(thumbs, fmt.Sprintf("[%d]", i+1))
		} else {
			thumbs = append(thumbs, fmt.Sprintf(" %d ", i+1))
		}
	}
	return fmt.Sprintf("Image %d/%d: %s\n%s\n",
		m.gal.Index()+1, m.gal.Len(), current, faintStyle.Render(strings.Join(thumbs, " ")))
}

func (m appModel) cartView() string {
	items := ledger.Resolve(m.cart, m.events)
	if len(items) == 0 {
		return titleStyle.Render("Cart") + "\n\nNo items in the cart.\n\n" + hint("Press esc to close.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Cart"))
	b.WriteString("\n\n")
	for i, item := range items {
		marker := "  "
		if i == m.cartIndex {
			marker = "> "
		}
		line := fmt.Sprintf("%s%s (x%d) — %s %s", marker, item.Event.Title, item.Qty, item.Event.Currency, item.Subtotal.StringFixed(2))
		if i == m.cartIndex {
			line = titleStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	total := ledger.ComputeTotal(m.cart, m.events)
	b.WriteString("\n")
	b.WriteString(priceStyle.Render(fmt.Sprintf("Total: %s", total.StringFixed(2))))
	b.WriteString("\n\n")
	b.WriteString(hint("Press enter to checkout."))
	return b.String()
}

func (m appModel) formView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Checkout"))
	b.WriteString("\n\n")
	for i := range m.form {
		b.WriteString(m.form[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(priceStyle.Render(fmt.Sprintf("Total: %s", ledger.ComputeTotal(m.cart, m.events).StringFixed(2))))
	return b.String()
}

func (m appModel) confirmedView() string {
	content := strings.Join([]string{
		titleStyle.Render("Purchase complete!"),
		"",
		"Confirmation code:",
		titleStyle.Render(m.lastOrder.Code),
		"",
		hint(fmt.Sprintf("Total %s • %s", m.lastOrder.Total.StringFixed(2), m.lastOrder.Date.Format("2006-01-02 15:04"))),
	}, "\n")

	panel := panelStyle.Render(content)
	if m.width > 0 {
		panel = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, panel)
	}
	return panel
}

func formatPrice(ev model.EventRecord) string {
	if ev.Free() {
		return "Gratis"
	}
	return fmt.Sprintf("Desde %s %s", ev.Currency, ev.PriceFrom.StringFixed(2))
}
