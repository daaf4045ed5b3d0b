package ui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flix/internal/favorites"
	"github.com/desertthunder/flix/internal/formatter"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PopularView ViewState = iota
	FavoritesView
	DetailView
)

const popularPageSize = 20

const loginHint = "Sign in with `flix auth login` to manage favorites"

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	previous  ViewState
	catalog   services.Catalog
	favorites *favorites.Controller
	width     int
	height    int
	popular   list.Model
	favList   list.Model
	movies    []models.Movie
	snapshot  *favorites.Snapshot
	detail    *models.MovieDetail
	notice    string
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, catalog services.Catalog, ctrl *favorites.Controller) *Model {
	popular := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	popular.Title = "Most Popular"
	popular.SetShowHelp(false)

	favList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	favList.Title = "Favorites"
	favList.SetShowHelp(false)

	return &Model{
		ctx:       ctx,
		view:      PopularView,
		catalog:   catalog,
		favorites: ctrl,
		popular:   popular,
		favList:   favList,
		snapshot:  ctrl.State(),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init fetches the popular list and picks up the current favorites snapshot.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchPopular(), m.currentFavorites())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.popular.SetSize(msg.Width-4, msg.Height-8)
		m.favList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgMoviesFetched:
		data := msg.data.(moviesFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.movies = data.movies
		return m, m.popular.SetItems(movieItems(m.movies, m.favorites.IsFavorite))

	case MsgFavoritesChanged:
		m.snapshot = msg.data.(*favorites.Snapshot)
		return m, m.refreshItems()

	case MsgToggled:
		data := msg.data.(toggled)
		switch {
		case data.err == nil:
		case shared.IsUnauthorized(data.err):
			m.notice = styles.err.Render(loginHint)
		default:
			m.notice = styles.err.Render(fmt.Sprintf("Could not update favorite #%s: %v", data.id, data.err))
		}
		return m, nil

	case MsgDetailFetched:
		data := msg.data.(detailFetched)
		if data.err != nil {
			m.notice = styles.err.Render(fmt.Sprintf("Could not load movie: %v", data.err))
			return m, nil
		}
		m.detail = data.detail
		if m.view != DetailView {
			m.previous = m.view
		}
		m.view = DetailView
		return m, nil

	case MsgLoginRequired:
		m.notice = styles.warn.Render(loginHint)
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if l := m.activeList(); l != nil && l.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.switchTo):
		if m.view == FavoritesView {
			m.view = PopularView
		} else {
			m.view = FavoritesView
		}
		return m, nil

	case key.Matches(msg, m.keys.refresh):
		m.notice = ""
		return m, tea.Batch(m.fetchPopular(), m.refetchFavorites())

	case key.Matches(msg, m.keys.favorite):
		if movie, ok := m.selected(); ok {
			m.notice = ""
			return m, m.toggle(movie.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.enter):
		if m.view == DetailView {
			return m, nil
		}
		if movie, ok := m.selected(); ok {
			return m, m.fetchDetail(movie.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.back):
		if m.view == DetailView {
			m.view = m.previous
			m.detail = nil
			return m, nil
		}
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.view {
	case PopularView:
		if m.err != nil {
			b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit", m.err)))
		} else {
			b.WriteString(m.popular.View())
		}
	case FavoritesView:
		b.WriteString(m.renderFavorites())
	case DetailView:
		b.WriteString(m.renderDetail())
	}

	if status := m.renderStatus(); status != "" {
		b.WriteString("\n")
		b.WriteString(status)
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) activeList() *list.Model {
	switch m.view {
	case PopularView:
		return &m.popular
	case FavoritesView:
		return &m.favList
	}
	return nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PopularView:
		m.popular, cmd = m.popular.Update(msg)
	case FavoritesView:
		m.favList, cmd = m.favList.Update(msg)
	}
	return m, cmd
}

// selected returns the movie under the cursor, or the open movie in [DetailView].
func (m *Model) selected() (models.Movie, bool) {
	if m.view == DetailView {
		if m.detail == nil {
			return models.Movie{}, false
		}
		return m.detail.Movie, true
	}

	l := m.activeList()
	if l == nil {
		return models.Movie{}, false
	}
	item, ok := l.SelectedItem().(movieItem)
	if !ok {
		return models.Movie{}, false
	}
	return item.movie, true
}

// refreshItems rebuilds both lists so the hearts follow the controller.
func (m *Model) refreshItems() tea.Cmd {
	var entries []models.FavoriteEntry
	if m.snapshot != nil {
		entries = m.snapshot.Favorites
	}
	return tea.Batch(
		m.popular.SetItems(movieItems(m.movies, m.favorites.IsFavorite)),
		m.favList.SetItems(movieItems(formatter.FromFavorites(entries), m.favorites.IsFavorite)),
	)
}

func (m *Model) fetchPopular() tea.Cmd {
	return func() tea.Msg {
		page, err := m.catalog.MostPopular(m.ctx, 1, popularPageSize)
		if err != nil {
			return moviesFetchedMsg(nil, err)
		}
		return moviesFetchedMsg(page.Data, nil)
	}
}

func (m *Model) fetchDetail(id models.MovieID) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.catalog.MovieDetail(m.ctx, id)
		return detailFetchedMsg(detail, err)
	}
}

func (m *Model) currentFavorites() tea.Cmd {
	return func() tea.Msg {
		return FavoritesChangedMsg(m.favorites.State())
	}
}

// refetchFavorites reloads the set. The new snapshot arrives through the controller's subscription.
func (m *Model) refetchFavorites() tea.Cmd {
	return func() tea.Msg {
		m.favorites.Refetch(m.ctx)
		return FavoritesChangedMsg(m.favorites.State())
	}
}

// toggle runs the mutation off the event loop. The optimistic change and any
// rollback reach the model as [MsgFavoritesChanged] before the result does.
func (m *Model) toggle(id models.MovieID) tea.Cmd {
	return func() tea.Msg {
		err := m.favorites.Toggle(m.ctx, id)
		return toggledMsg(id, err)
	}
}

func (m *Model) renderTabs() string {
	tabs := []struct {
		name string
		view ViewState
	}{
		{"Popular", PopularView},
		{"Favorites", FavoritesView},
	}

	active := m.view
	if active == DetailView {
		active = m.previous
	}

	parts := make([]string, len(tabs))
	for i, t := range tabs {
		if t.view == active {
			parts[i] = styles.tab.Render(t.name)
		} else {
			parts[i] = styles.muted.Render(t.name)
		}
	}
	return strings.Join(parts, styles.muted.Render(" │ "))
}

func (m *Model) renderFavorites() string {
	if m.snapshot != nil && len(m.snapshot.Favorites) == 0 && !m.snapshot.Loading {
		return styles.help.Render("No favorites yet. Press f on a movie to add it.")
	}
	return m.favList.View()
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return ""
	}

	heart := "♡"
	if m.favorites.IsFavorite(m.detail.ID) {
		heart = styles.heart.Render("♥")
	}

	title := styles.title.Render(fmt.Sprintf("%s %s", heart, m.detail.DisplayTitle()))
	return fmt.Sprintf("%s\n%s", title, formatter.DetailToText(m.detail))
}

func (m *Model) renderStatus() string {
	var lines []string
	if m.snapshot != nil {
		if m.snapshot.Loading {
			lines = append(lines, styles.help.Render("Syncing favorites..."))
		}
		if m.snapshot.Err != nil {
			lines = append(lines, styles.warn.Render(fmt.Sprintf("Favorites unavailable: %v", m.snapshot.Err)))
		}
	}
	if m.notice != "" {
		lines = append(lines, m.notice)
	}
	return strings.Join(lines, "\n")
}

// Prompt is a [favorites.Redirector] that shows a sign-in notice in the running program.
type Prompt struct {
	program atomic.Pointer[tea.Program]
}

func (p *Prompt) RedirectToLogin() {
	if prog := p.program.Load(); prog != nil {
		prog.Send(loginRequiredMsg())
	}
}

// Run starts the program and blocks until it exits.
//
// Controller changes are pushed into the program with [tea.Program.Send]; prompt may be nil.
func Run(ctx context.Context, m *Model, prompt *Prompt) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	cancel := m.favorites.Subscribe(func(s *favorites.Snapshot) {
		p.Send(FavoritesChangedMsg(s))
	})
	defer cancel()

	if prompt != nil {
		prompt.program.Store(p)
		defer prompt.program.Store(nil)
	}

	_, err := p.Run()
	return err
}
