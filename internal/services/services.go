// package services defines the movie API client and the interfaces its consumers depend on
package services

import (
	"context"

	"github.com/desertthunder/flix/internal/models"
)

// Catalog is the read-only, unauthenticated part of the movie API.
type Catalog interface {
	// TopMovies returns the five most popular movies.
	TopMovies(ctx context.Context) ([]models.Movie, error)

	// MostPopular returns one page of the most popular movies.
	MostPopular(ctx context.Context, page, limit int) (*models.Page[models.Movie], error)

	// TopRated returns one page of the best rated movies.
	TopRated(ctx context.Context, page, limit int) (*models.Page[models.Movie], error)

	// SearchMovies searches movies by title.
	SearchMovies(ctx context.Context, title string, page, limit int) (*models.Page[models.Movie], error)

	// MovieDetail returns the full record of one movie.
	MovieDetail(ctx context.Context, id models.MovieID) (*models.MovieDetail, error)

	// MovieReviews returns one page of reviews in the given order.
	MovieReviews(ctx context.Context, id models.MovieID, page, limit int, sort models.ReviewSort) (*models.Page[models.Review], error)

	// PersonDetail returns a cast or crew member with their filmography.
	PersonDetail(ctx context.Context, id models.MovieID) (*models.Person, error)
}

// Accounts covers registration, login and the signed-in user's profile.
type Accounts interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Register(ctx context.Context, reg models.Registration) (string, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.Profile, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.Profile, error)
}

// Favorites is the remote favorites set of the signed-in user.
//
// Every method fails with a [shared.APIError] on a non-2xx response.
type Favorites interface {
	ListFavorites(ctx context.Context) ([]models.FavoriteEntry, error)
	AddFavorite(ctx context.Context, id models.MovieID) error
	RemoveFavorite(ctx context.Context, id models.MovieID) error
}

var (
	_ Catalog   = (*MovieClient)(nil)
	_ Accounts  = (*MovieClient)(nil)
	_ Favorites = (*MovieClient)(nil)
)
