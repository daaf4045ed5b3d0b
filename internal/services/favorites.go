package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

const favoritesPath = "/users/me/favorites"

// ListFavorites calls GET /users/me/favorites.
//
// The result is never nil; a response that is not a list yields an empty slice.
func (c *MovieClient) ListFavorites(ctx context.Context) ([]models.FavoriteEntry, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: favoritesPath, auth: true})
	if err != nil {
		return nil, err
	}
	items, _, err := decodeList[models.FavoriteEntry](data)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// AddFavorite calls POST /users/me/favorites with {"movie_id": id}.
func (c *MovieClient) AddFavorite(ctx context.Context, id models.MovieID) error {
	if id.IsZero() {
		return fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	body := map[string]string{"movie_id": id.String()}
	_, err := c.do(ctx, request{method: http.MethodPost, path: favoritesPath, body: body, auth: true})
	return err
}

// RemoveFavorite calls DELETE /users/me/favorites/{id}.
func (c *MovieClient) RemoveFavorite(ctx context.Context, id models.MovieID) error {
	if id.IsZero() {
		return fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	path := favoritesPath + "/" + url.PathEscape(id.String())
	_, err := c.do(ctx, request{method: http.MethodDelete, path: path, auth: true})
	return err
}
