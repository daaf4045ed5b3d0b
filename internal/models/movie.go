package models

// Movie is a movie as it appears in listings and search results.
type Movie struct {
	ID    MovieID  `json:"id"`
	Title string   `json:"title"`
	Year  Year     `json:"year,omitempty"`
	Image string   `json:"image,omitempty"`
	Rate  *float64 `json:"rate,omitempty"`
}

// DisplayTitle returns the title with a "(year)" suffix, or "Untitled" when the title is missing.
func (m Movie) DisplayTitle() string {
	return displayTitle(m.Title, m.Year)
}

// MovieDetail is the full payload of GET /movies/{id}.
type MovieDetail struct {
	Movie
	Runtime   string   `json:"runtime,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	PlotFull  string   `json:"plot_full,omitempty"`
	Awards    string   `json:"awards,omitempty"`
	Directors []Credit `json:"directors,omitempty"`
	Actors    []Credit `json:"actors,omitempty"`
}

// Credit links a person to a movie, in either direction.
//
// In a movie's cast the person fields are set; in a person's filmography the movie fields are.
type Credit struct {
	ID        MovieID `json:"id"`
	Name      string  `json:"name,omitempty"`
	Title     string  `json:"title,omitempty"`
	Image     string  `json:"image,omitempty"`
	Role      string  `json:"role,omitempty"`
	Character string  `json:"character,omitempty"`
}

// Person is the payload of GET /persons/{id}.
type Person struct {
	ID        MovieID  `json:"id"`
	Name      string   `json:"name"`
	Role      string   `json:"role,omitempty"`
	Image     string   `json:"image,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	BirthDate string   `json:"birth_date,omitempty"`
	DeathDate string   `json:"death_date,omitempty"`
	Height    string   `json:"height,omitempty"`
	Awards    string   `json:"awards,omitempty"`
	KnownFor  []Credit `json:"known_for,omitempty"`
}

// Review is a single user review of a movie.
type Review struct {
	ID              MovieID  `json:"id"`
	Username        string   `json:"username"`
	Rate            *float64 `json:"rate,omitempty"`
	Title           string   `json:"title,omitempty"`
	Content         string   `json:"content"`
	Date            string   `json:"date,omitempty"`
	WarningSpoilers bool     `json:"warning_spoilers,omitempty"`
}

// ReviewSort orders review listings.
type ReviewSort string

const (
	SortNewest  ReviewSort = "newest"
	SortOldest  ReviewSort = "oldest"
	SortHighest ReviewSort = "highest"
	SortLowest  ReviewSort = "lowest"
)

// Valid reports whether s is one of the orders the API understands.
func (s ReviewSort) Valid() bool {
	switch s {
	case SortNewest, SortOldest, SortHighest, SortLowest:
		return true
	}
	return false
}

// Pagination is the pagination block of every list response.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
	PageSize    int `json:"page_size"`
}

// HasNext reports whether a page follows the current one.
func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// Page is the {data, pagination} envelope of list endpoints.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// FavoriteEntry is one favorited movie as known to the client.
//
// Only ID is guaranteed; the display fields arrive with the next server refresh.
type FavoriteEntry struct {
	ID    MovieID  `json:"id"`
	Title string   `json:"title,omitempty"`
	Image string   `json:"image,omitempty"`
	Year  Year     `json:"year,omitempty"`
	Rate  *float64 `json:"rate,omitempty"`
}

// DisplayTitle mirrors [Movie.DisplayTitle].
func (f FavoriteEntry) DisplayTitle() string {
	return displayTitle(f.Title, f.Year)
}

func displayTitle(title string, year Year) string {
	if title == "" {
		title = "Untitled"
	}
	if year != "" {
		return title + " (" + string(year) + ")"
	}
	return title
}
