package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flix/internal/favorites"
	"github.com/desertthunder/flix/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgMoviesFetched MsgKind = iota
	MsgFavoritesChanged
	MsgToggled
	MsgDetailFetched
	MsgLoginRequired
)

type moviesFetched struct {
	movies []models.Movie
	err    error
}

type toggled struct {
	id  models.MovieID
	err error
}

type detailFetched struct {
	detail *models.MovieDetail
	err    error
}

// moviesFetchedMsg is the constructor for [MsgMoviesFetched]
func moviesFetchedMsg(movies []models.Movie, err error) Msg {
	return Msg{kind: MsgMoviesFetched, data: moviesFetched{movies, err}}
}

// FavoritesChangedMsg is the constructor for [MsgFavoritesChanged].
//
// It is exported so the favorites controller's subscription can push snapshots into a running program.
func FavoritesChangedMsg(s *favorites.Snapshot) Msg {
	return Msg{kind: MsgFavoritesChanged, data: s}
}

// toggledMsg is the constructor for [MsgToggled]
func toggledMsg(id models.MovieID, err error) Msg {
	return Msg{kind: MsgToggled, data: toggled{id, err}}
}

// detailFetchedMsg is the constructor for [MsgDetailFetched]
func detailFetchedMsg(detail *models.MovieDetail, err error) Msg {
	return Msg{kind: MsgDetailFetched, data: detailFetched{detail, err}}
}

// loginRequiredMsg is the constructor for [MsgLoginRequired]
func loginRequiredMsg() Msg {
	return Msg{kind: MsgLoginRequired}
}
