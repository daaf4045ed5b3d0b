// package formatter renders movie data as CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/mozillazg/go-unidecode"
)

// Format is an output format for exports.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts the format names and their common aliases ("md", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension used for f.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".json"
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a title into a file name: transliterated to ASCII, lowercased, words joined by "-".
func Slug(s string) string {
	s = strings.ToLower(unidecode.Unidecode(s))
	s = strings.Trim(nonSlug.ReplaceAllString(s, "-"), "-")
	if s == "" {
		return "untitled"
	}
	return s
}

// Rating formats an optional rating, "-" when absent.
func Rating(rate *float64) string {
	if rate == nil {
		return "-"
	}
	return strconv.FormatFloat(*rate, 'f', 1, 64)
}

// FromFavorites converts favorites to movies so they share the list renderers.
func FromFavorites(entries []models.FavoriteEntry) []models.Movie {
	movies := make([]models.Movie, 0, len(entries))
	for _, e := range entries {
		movies = append(movies, models.Movie{ID: e.ID, Title: e.Title, Year: e.Year, Image: e.Image, Rate: e.Rate})
	}
	return movies
}

// MoviesToCSV converts movies to CSV with columns: ID, Title, Year, Rating, Image
func MoviesToCSV(movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Title", "Year", "Rating", "Image"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range movies {
		rating := ""
		if m.Rate != nil {
			rating = Rating(m.Rate)
		}
		record := []string{m.ID.String(), m.Title, string(m.Year), rating, m.Image}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// MoviesToMarkdown renders movies as a numbered Markdown list under heading.
func MoviesToMarkdown(heading string, movies []models.Movie) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", heading))
	if len(movies) == 0 {
		buf.WriteString("_No movies._\n")
		return buf.Bytes()
	}

	for i, m := range movies {
		buf.WriteString(fmt.Sprintf("%d. **%s** ★ %s `%s`\n", i+1, m.DisplayTitle(), Rating(m.Rate), m.ID))
	}
	return buf.Bytes()
}

// MoviesToText renders movies one per line: position, id, title and rating.
func MoviesToText(movies []models.Movie) []byte {
	var buf bytes.Buffer
	for i, m := range movies {
		buf.WriteString(fmt.Sprintf("%2d. [%s] %s  ★ %s\n", i+1, m.ID, m.DisplayTitle(), Rating(m.Rate)))
	}
	return buf.Bytes()
}

// DetailToMarkdown renders one movie with its credits. poster is an optional relative image path.
func DetailToMarkdown(d *models.MovieDetail, poster string) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", d.DisplayTitle()))
	if poster != "" {
		buf.WriteString(fmt.Sprintf("![Poster](%s)\n\n", poster))
	}

	buf.WriteString(fmt.Sprintf("**Rating**: %s\n", Rating(d.Rate)))
	if d.Runtime != "" {
		buf.WriteString(fmt.Sprintf("**Runtime**: %s\n", d.Runtime))
	}
	if len(d.Genres) > 0 {
		buf.WriteString(fmt.Sprintf("**Genres**: %s\n", strings.Join(d.Genres, ", ")))
	}
	if d.Awards != "" {
		buf.WriteString(fmt.Sprintf("**Awards**: %s\n", d.Awards))
	}
	buf.WriteString("\n")

	if d.PlotFull != "" {
		buf.WriteString("## Plot\n\n")
		buf.WriteString(d.PlotFull + "\n\n")
	}

	writeCredits(&buf, "## Directors", d.Directors)
	writeCredits(&buf, "## Cast", d.Actors)
	return buf.Bytes()
}

func writeCredits(buf *bytes.Buffer, heading string, credits []models.Credit) {
	if len(credits) == 0 {
		return
	}
	buf.WriteString(heading + "\n\n")
	for _, c := range credits {
		if c.Character != "" {
			buf.WriteString(fmt.Sprintf("- %s as %s\n", c.Name, c.Character))
		} else {
			buf.WriteString(fmt.Sprintf("- %s\n", c.Name))
		}
	}
	buf.WriteString("\n")
}

// DetailToText renders one movie for the terminal.
func DetailToText(d *models.MovieDetail) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", d.DisplayTitle()))
	buf.WriteString(fmt.Sprintf("ID: %s  Rating: %s\n", d.ID, Rating(d.Rate)))
	if d.Runtime != "" {
		buf.WriteString(fmt.Sprintf("Runtime: %s\n", d.Runtime))
	}
	if len(d.Genres) > 0 {
		buf.WriteString(fmt.Sprintf("Genres: %s\n", strings.Join(d.Genres, ", ")))
	}
	if names := creditNames(d.Directors); names != "" {
		buf.WriteString(fmt.Sprintf("Directed by: %s\n", names))
	}
	if names := creditNames(d.Actors); names != "" {
		buf.WriteString(fmt.Sprintf("Starring: %s\n", names))
	}
	if d.PlotFull != "" {
		buf.WriteString("\n" + d.PlotFull + "\n")
	}
	return buf.Bytes()
}

func creditNames(credits []models.Credit) string {
	names := make([]string, 0, len(credits))
	for _, c := range credits {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return strings.Join(names, ", ")
}

// ReviewsToText renders a page of reviews, hiding the body of reviews marked as spoilers.
func ReviewsToText(page *models.Page[models.Review]) []byte {
	var buf bytes.Buffer

	for _, r := range page.Data {
		buf.WriteString(fmt.Sprintf("★ %s  %s", Rating(r.Rate), r.Username))
		if r.Date != "" {
			buf.WriteString(fmt.Sprintf("  (%s)", r.Date))
		}
		buf.WriteString("\n")
		if r.Title != "" {
			buf.WriteString(r.Title + "\n")
		}
		if r.WarningSpoilers {
			buf.WriteString("[spoilers hidden]\n\n")
			continue
		}
		buf.WriteString(r.Content + "\n\n")
	}

	p := page.Pagination
	if p.TotalPages > 0 {
		buf.WriteString(fmt.Sprintf("Page %d of %d (%d reviews)\n", p.CurrentPage, p.TotalPages, p.TotalItems))
	}
	return buf.Bytes()
}

// PersonToText renders a cast or crew member with their known works.
func PersonToText(p *models.Person) []byte {
	var buf bytes.Buffer

	buf.WriteString(p.Name + "\n")
	if p.Role != "" {
		buf.WriteString(fmt.Sprintf("Role: %s\n", p.Role))
	}
	if p.BirthDate != "" {
		born := p.BirthDate
		if p.DeathDate != "" {
			born += " - " + p.DeathDate
		}
		buf.WriteString(fmt.Sprintf("Born: %s\n", born))
	}
	if p.Height != "" {
		buf.WriteString(fmt.Sprintf("Height: %s\n", p.Height))
	}
	if p.Awards != "" {
		buf.WriteString(fmt.Sprintf("Awards: %s\n", p.Awards))
	}
	if p.Summary != "" {
		buf.WriteString("\n" + p.Summary + "\n")
	}
	if len(p.KnownFor) > 0 {
		buf.WriteString("\nKnown for:\n")
		for _, c := range p.KnownFor {
			buf.WriteString(fmt.Sprintf("  - [%s] %s\n", c.ID, c.Title))
		}
	}
	return buf.Bytes()
}

// ProfileToText renders the signed-in user's profile.
func ProfileToText(p *models.Profile) []byte {
	var buf bytes.Buffer
	for _, row := range [][2]string{
		{"Username", p.Username},
		{"Email", p.Email},
		{"Phone", p.Phone},
		{"Birthday", p.DOB},
	} {
		if row[1] != "" {
			buf.WriteString(fmt.Sprintf("%-9s %s\n", row[0]+":", row[1]))
		}
	}
	return buf.Bytes()
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteDetailExport writes one movie to dir in format f and returns the files created.
//
// Files are named after [Slug] of the title. Markdown exports get their own
// directory, {slug}/README.md, with the poster saved next to it when withPoster is set
// and the download succeeds.
func WriteDetailExport(d *models.MovieDetail, f Format, dir string, withPoster bool) ([]string, error) {
	base := Slug(d.Title)
	if d.Year != "" {
		base += "-" + string(d.Year)
	}

	switch f {
	case FormatMarkdown:
		return writeMarkdownExport(d, filepath.Join(dir, base), withPoster)
	case FormatCSV:
		data, err := MoviesToCSV([]models.Movie{d.Movie})
		if err != nil {
			return nil, err
		}
		return writeFile(filepath.Join(dir, base+f.Extension()), data)
	case FormatText:
		return writeFile(filepath.Join(dir, base+f.Extension()), DetailToText(d))
	default:
		data, err := shared.MarshalJSON(d, true)
		if err != nil {
			return nil, fmt.Errorf("JSON marshal failed: %w", err)
		}
		return writeFile(filepath.Join(dir, base+FormatJSON.Extension()), data)
	}
}

func writeMarkdownExport(d *models.MovieDetail, dir string, withPoster bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	files := []string{}
	var poster string
	if withPoster && d.Image != "" {
		if data, err := DownloadImage(d.Image); err == nil {
			path := filepath.Join(dir, "poster.jpg")
			if err := os.WriteFile(path, data, 0644); err == nil {
				poster = "poster.jpg"
				files = append(files, path)
			}
		}
	}

	readme, err := writeFile(filepath.Join(dir, "README.md"), DetailToMarkdown(d, poster))
	if err != nil {
		return nil, err
	}
	return append(files, readme...), nil
}

func writeFile(path string, data []byte) ([]string, error) {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return []string{path}, nil
}

// ExportManifest summarizes a favorites export.
type ExportManifest struct {
	Format     Format         `json:"format"`
	ExportedAt time.Time      `json:"exported_at"`
	Total      int            `json:"total"`
	Successful int            `json:"successful"`
	Failed     int            `json:"failed"`
	Directory  string         `json:"directory"`
	Entries    []ManifestItem `json:"entries"`
}

// ManifestItem is one movie of an [ExportManifest].
type ManifestItem struct {
	ID    models.MovieID `json:"id"`
	Title string         `json:"title,omitempty"`
	Files []string       `json:"files,omitempty"`
	Error string         `json:"error,omitempty"`
}

// WriteExportManifest writes m as indented JSON to path.
func WriteExportManifest(m *ExportManifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
