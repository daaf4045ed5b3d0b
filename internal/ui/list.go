package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/flix/internal/formatter"
	"github.com/desertthunder/flix/internal/models"
)

var _ list.Item = movieItem{}

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie    models.Movie
	favorite bool
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	if i.favorite {
		return styles.heart.Render("♥") + " " + i.movie.DisplayTitle()
	}
	return "♡ " + i.movie.DisplayTitle()
}
func (i movieItem) Description() string {
	return fmt.Sprintf("★ %s • #%s", formatter.Rating(i.movie.Rate), i.movie.ID)
}

// movieItems builds list items, marking the movies isFavorite reports.
func movieItems(movies []models.Movie, isFavorite func(models.MovieID) bool) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m, favorite: isFavorite(m.ID)}
	}
	return items
}
