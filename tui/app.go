package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"event-catalog-cli/catalog"
	"event-catalog-cli/gallery"
	"event-catalog-cli/ledger"
	"event-catalog-cli/model"
	"event-catalog-cli/route"
	"event-catalog-cli/service"
	"event-catalog-cli/store"
)

type appState int

const (
	stateLoading appState = iota
	stateCatalog
	stateDetail
	stateCartView
	stateCartForm
	stateCartConfirmed
	stateLoadFailed
)

const (
	formName = iota
	formEmail
	formPhone
	formDocument
	formFieldCount
)

type appModel struct {
	repo  *service.Repository
	store *store.Store

	state  appState
	err    error
	notice string

	width  int
	height int

	events   []model.EventRecord
	filtered []model.EventRecord

	query  string
	view   model.ViewMode
	page   int
	cursor int

	favorites map[string]bool

	current model.EventRecord
	gal     gallery.Gallery
	qty     int

	cart            []model.CartLine
	cartIndex       int
	cartReturnState appState
	lastOrder       model.OrderRecord

	form      []textinput.Model
	formFocus int

	startFragment string
	shareBase     string

	spinner spinner.Model
}

type eventsMsg struct {
	events []model.EventRecord
	err    error
}

type clipboardMsg struct {
	text string
	err  error
}

type noticeMsg struct {
	text string
}

// Options wires the app's collaborators.
type Options struct {
	Repo  *service.Repository
	Store *store.Store

	// Fragment is an optional startup deep link, e.g. "#/event/ev-1".
	Fragment string

	// ShareBase, when set, prefixes shared deep links with a web URL so they
	// open in the original catalog too.
	ShareBase string
}

func New(opts Options) tea.Model {
	m := appModel{
		repo:          opts.Repo,
		store:         opts.Store,
		state:         stateLoading,
		page:          1,
		qty:           1,
		startFragment: opts.Fragment,
		shareBase:     opts.ShareBase,
	}

	m.view = m.store.ViewMode()
	m.cart = m.store.Cart()
	m.favorites = m.store.Favorites()
	m.form = newCheckoutForm()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.fetchEventsCmd(), m.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeForm()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state == stateLoading {
			return m, cmd
		}
		return m, nil

	case eventsMsg:
		if msg.err != nil {
			// Terminal for the session: the catalog is not re-fetched.
			m.err = msg.err
			m.state = stateLoadFailed
			return m, nil
		}
		m.events = msg.events
		m.applyFilter(m.query)
		m.state = stateCatalog
		if m.startFragment != "" {
			m.applyFragment(m.startFragment)
			m.startFragment = ""
		}
		return m, nil

	case noticeMsg:
		m.notice = msg.text
		return m, nil

	case favoriteMsg:
		if msg.on {
			m.favorites[msg.id] = true
		} else {
			delete(m.favorites, msg.id)
		}
		m.notice = msg.text
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.notice = "Clipboard unavailable, copy manually: " + msg.text
		} else {
			m.notice = "Copied: " + msg.text
		}
		return m, nil

	case tea.KeyMsg:
		m.notice = ""
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.state == stateCartForm {
			return m.updateForm(msg)
		}
		if m.state == stateCatalog && m.handleSearchInput(msg) {
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m, nil
}

// applyFilter recomputes the filtered list for query. A filter change always
// returns to page 1; view toggles and page moves leave the query alone.
func (m *appModel) applyFilter(query string) {
	m.query = query
	m.filtered = catalog.Apply(m.events, query)
	m.page = 1
	m.cursor = 0
}

// applyFragment re-derives the visible view from a fragment. The route is the
// single source of truth for which view is showing; an id that matches no
// loaded event falls back to the catalog with a notice.
func (m *appModel) applyFragment(fragment string) {
	r := route.FromFragment(fragment)
	if r.Kind != route.Detail {
		m.closeDetail()
		return
	}
	if !m.openDetail(r.EventId) {
		m.state = stateCatalog
		m.notice = fmt.Sprintf("Event %q not found", r.EventId)
	}
}

func (m *appModel) openDetail(eventId string) bool {
	for _, ev := range m.events {
		if ev.Id == eventId {
			m.current = ev
			m.gal = gallery.New(ev.Images)
			m.qty = 1
			m.state = stateDetail
			return true
		}
	}
	return false
}

// closeDetail drops the ephemeral gallery state and returns to the catalog.
// The fragment goes back to the bare form, so the detail does not reopen.
func (m *appModel) closeDetail() {
	m.gal = gallery.Gallery{}
	m.state = stateCatalog
}

// fragment renders the canonical fragment for the current view.
func (m appModel) fragment() string {
	if m.state == stateDetail {
		return route.ToFragment(route.Route{Kind: route.Detail, EventId: m.current.Id})
	}
	return ""
}

func (m *appModel) handleSearchInput(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		m.applyFilter(m.query + string(msg.Runes))
		return true
	case tea.KeySpace:
		m.applyFilter(m.query + " ")
		return true
	case tea.KeyBackspace, tea.KeyDelete:
		if m.query == "" {
			return false
		}
		m.applyFilter(trimLastRune(m.query))
		return true
	default:
		return false
	}
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateCatalog:
		return m.handleCatalogKey(msg)
	case stateDetail:
		return m.handleDetailKey(msg)
	case stateCartView:
		return m.handleCartKey(msg)
	case stateCartConfirmed:
		return m.handleConfirmedKey(msg)
	case stateLoadFailed:
		if msg.String() == "q" || msg.String() == "esc" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m appModel) handleCatalogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := catalog.Paginate(m.filtered, m.page, catalog.PerPage)

	switch msg.String() {
	case "esc":
		if m.query != "" {
			m.applyFilter("")
		}
		return m, nil
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down":
		if m.cursor < len(page.Items)-1 {
			m.cursor++
		}
		return m, nil
	case "left":
		m.page = catalog.ClampPage(m.page-1, page.TotalPages)
		m.cursor = 0
		return m, nil
	case "right":
		m.page = catalog.ClampPage(m.page+1, page.TotalPages)
		m.cursor = 0
		return m, nil
	case "tab":
		m.view = m.view.Toggle()
		if err := m.store.SaveViewMode(m.view); err != nil {
			m.notice = "Could not save view preference: " + err.Error()
		}
		return m, nil
	case "ctrl+b":
		m.openCart(stateCatalog)
		return m, nil
	case "ctrl+f":
		if ev, ok := m.selectedEvent(); ok {
			return m, m.toggleFavoriteCmd(ev)
		}
		return m, nil
	case "enter":
		if ev, ok := m.selectedEvent(); ok {
			m.applyFragment(route.ToFragment(route.Route{Kind: route.Detail, EventId: ev.Id}))
		}
		return m, nil
	}
	return m, nil
}

func (m appModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		idx := int(key[0] - '1')
		if idx < m.gal.Len() {
			m.gal.Show(idx)
		}
		return m, nil
	}

	switch key {
	case "esc":
		m.closeDetail()
		return m, nil
	case "left":
		m.gal.Prev()
		return m, nil
	case "right":
		m.gal.Next()
		return m, nil
	case "+", "=":
		m.qty++
		return m, nil
	case "-":
		if m.qty > 1 {
			m.qty--
		}
		return m, nil
	case "f":
		return m, m.toggleFavoriteCmd(m.current)
	case "s":
		return m, m.copyCmd(m.shareLink(m.current.Id))
	case "o":
		if url := m.current.Map.URL(); url != "" {
			return m, openURLCmd(url)
		}
		m.notice = "No map available for this event"
		return m, nil
	case "ctrl+b":
		m.openCart(stateDetail)
		return m, nil
	case "a", "enter":
		return m.addToCart()
	}
	return m, nil
}

func (m appModel) addToCart() (tea.Model, tea.Cmd) {
	if m.current.SoldOut || m.current.Stock < 1 {
		m.notice = "Sold out"
		return m, nil
	}
	next, err := ledger.AddItem(m.cart, m.current.Id, m.qty, m.current.Stock)
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.cart = next
	if err := m.store.SaveCart(m.cart); err != nil {
		m.notice = "Could not save cart: " + err.Error()
		return m, nil
	}
	m.notice = fmt.Sprintf("Added %d x %s to cart", m.qty, m.current.Title)
	return m, nil
}

func (m *appModel) openCart(returnState appState) {
	m.cartReturnState = returnState
	m.cartIndex = 0
	m.state = stateCartView
}

func (m *appModel) closeCart() {
	m.state = m.cartReturnState
	if m.state == stateDetail && m.current.Id == "" {
		m.state = stateCatalog
	}
}

func (m appModel) handleCartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := ledger.Resolve(m.cart, m.events)

	switch msg.String() {
	case "esc":
		m.closeCart()
		return m, nil
	case "up":
		if m.cartIndex > 0 {
			m.cartIndex--
		}
		return m, nil
	case "down":
		if m.cartIndex < len(items)-1 {
			m.cartIndex++
		}
		return m, nil
	case "x", "backspace", "delete":
		if m.cartIndex < len(items) {
			m.cart = ledger.RemoveItem(m.cart, items[m.cartIndex].Event.Id)
			if err := m.store.SaveCart(m.cart); err != nil {
				m.notice = "Could not save cart: " + err.Error()
			}
			if m.cartIndex > 0 {
				m.cartIndex--
			}
		}
		return m, nil
	case "enter":
		// An empty cart offers no checkout transition.
		if len(items) == 0 {
			m.notice = "Cart is empty"
			return m, nil
		}
		m.form = newCheckoutForm()
		m.formFocus = formName
		m.form[formName].Focus()
		m.resizeForm()
		m.state = stateCartForm
		return m, nil
	}
	return m, nil
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateCartView
		return m, nil
	case "tab", "down":
		m.focusFormField((m.formFocus + 1) % formFieldCount)
		return m, nil
	case "shift+tab", "up":
		m.focusFormField((m.formFocus + formFieldCount - 1) % formFieldCount)
		return m, nil
	case "enter":
		if m.formFocus < formFieldCount-1 {
			m.focusFormField(m.formFocus + 1)
			return m, nil
		}
		return m.submitCheckout()
	}

	var cmd tea.Cmd
	m.form[m.formFocus], cmd = m.form[m.formFocus].Update(msg)
	return m, cmd
}

func (m *appModel) focusFormField(idx int) {
	m.form[m.formFocus].Blur()
	m.formFocus = idx
	m.form[m.formFocus].Focus()
}

func (m appModel) submitCheckout() (tea.Model, tea.Cmd) {
	buyer := model.Buyer{
		Name:     strings.TrimSpace(m.form[formName].Value()),
		Email:    strings.TrimSpace(m.form[formEmail].Value()),
		Phone:    strings.TrimSpace(m.form[formPhone].Value()),
		Document: strings.TrimSpace(m.form[formDocument].Value()),
	}
	if buyer.Name == "" || buyer.Email == "" || buyer.Phone == "" || buyer.Document == "" {
		m.notice = "All fields are required"
		return m, nil
	}
	if !strings.Contains(buyer.Email, "@") {
		m.notice = "Enter a valid email address"
		return m, nil
	}

	order, emptied := ledger.Checkout(m.cart, m.events, time.Now())
	if err := m.store.AppendOrder(order); err != nil {
		m.notice = "Could not record order: " + err.Error()
		return m, nil
	}
	m.cart = emptied
	if err := m.store.SaveCart(m.cart); err != nil {
		m.notice = "Could not save cart: " + err.Error()
	}
	m.lastOrder = order
	m.state = stateCartConfirmed
	return m, nil
}

func (m appModel) handleConfirmedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		return m, m.copyCmd(m.lastOrder.Code)
	case "esc", "enter":
		// Confirmed only transitions to closed.
		m.closeCart()
		return m, nil
	}
	return m, nil
}

func (m appModel) selectedEvent() (model.EventRecord, bool) {
	page := catalog.Paginate(m.filtered, m.page, catalog.PerPage)
	if m.cursor < 0 || m.cursor >= len(page.Items) {
		return model.EventRecord{}, false
	}
	return page.Items[m.cursor], true
}

func (m appModel) shareLink(eventId string) string {
	if m.shareBase != "" {
		return route.ShareURL(m.shareBase, eventId)
	}
	return route.ToFragment(route.Route{Kind: route.Detail, EventId: eventId})
}

func (m appModel) toggleFavoriteCmd(ev model.EventRecord) tea.Cmd {
	st := m.store
	return func() tea.Msg {
		on, err := st.ToggleFavorite(ev.Id)
		if err != nil {
			return noticeMsg{text: "Could not save favorite: " + err.Error()}
		}
		if on {
			return favoriteMsg{id: ev.Id, on: true, text: "Added " + ev.Title + " to favorites"}
		}
		return favoriteMsg{id: ev.Id, on: false, text: "Removed " + ev.Title + " from favorites"}
	}
}

type favoriteMsg struct {
	id   string
	on   bool
	text string
}

func (m appModel) fetchEventsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		events, err := m.repo.FetchAll(ctx)
		return eventsMsg{events: events, err: err}
	}
}

func (m appModel) copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{text: text, err: clipboard.WriteAll(text)}
	}
}

func openURLCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := openURL(url); err != nil {
			return noticeMsg{text: "Could not open browser: " + err.Error()}
		}
		return nil
	}
}

func openURL(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return fmt.Errorf("unsupported OS for opening browser: %s", runtime.GOOS)
	}
}

func newCheckoutForm() []textinput.Model {
	placeholders := [formFieldCount]string{
		formName:     "Full name",
		formEmail:    "Email",
		formPhone:    "Phone",
		formDocument: "Document id",
	}

	inputs := make([]textinput.Model, formFieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 80
		in.Width = 40
		inputs[i] = in
	}
	return inputs
}

func (m *appModel) resizeForm() {
	if m.width == 0 {
		return
	}
	w := min(48, m.width-6)
	if w < 20 {
		w = 20
	}
	for i := range m.form {
		m.form[i].Width = w
	}
}

func trimLastRune(value string) string {
	runes := []rune(value)
	if len(runes) <= 1 {
		return ""
	}
	return string(runes[:len(runes)-1])
}
