package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL = "http://127.0.0.1:4000/api"
	topMoviesLimit = 5

	appTokenHeader  = "x-app-token"
	requestIDHeader = "X-Request-ID"
)

// ClientOpts configures a [MovieClient].
type ClientOpts struct {
	BaseURL    string
	AppToken   string
	HTTPClient *http.Client
	Tokens     oauth2.TokenSource // Bearer tokens for user endpoints; nil disables them
	Logger     *log.Logger
}

// MovieClient talks to the movie API.
type MovieClient struct {
	baseURL  string
	appToken string
	public   *http.Client
	authed   *http.Client
	logger   *log.Logger
}

// NewMovieClient creates a new client. A nil HTTPClient defaults to [http.DefaultClient].
func NewMovieClient(opts ClientOpts) *MovieClient {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	c := &MovieClient{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		appToken: opts.AppToken,
		public:   opts.HTTPClient,
		logger:   opts.Logger,
	}

	if opts.Tokens != nil {
		c.authed = &http.Client{
			Transport: &oauth2.Transport{Source: opts.Tokens, Base: opts.HTTPClient.Transport},
			Timeout:   opts.HTTPClient.Timeout,
			Jar:       opts.HTTPClient.Jar,
		}
	}

	return c
}

// BaseURL returns the API root requests are sent to.
func (c *MovieClient) BaseURL() string {
	return c.baseURL
}

// request describes one API call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
}

// do sends req and returns the raw body of a 2xx response.
func (c *MovieClient) do(ctx context.Context, req request) ([]byte, error) {
	client := c.public
	if req.auth {
		if c.authed == nil {
			return nil, fmt.Errorf("%w: no session configured", shared.ErrNotAuthenticated)
		}
		client = c.authed
	}

	apiURL := c.baseURL + req.path
	if len(req.query) > 0 {
		apiURL += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, requestID)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.appToken != "" {
		httpReq.Header.Set(appTokenHeader, c.appToken)
	}

	c.logger.Debug("api request", "method", req.method, "path", req.path, "request_id", requestID)

	resp, err := client.Do(httpReq)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return nil, fmt.Errorf("%w: %s %s", shared.ErrNotAuthenticated, req.method, req.path)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &shared.APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &shared.APIError{Status: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("api error", "status", resp.StatusCode, "path", req.path, "request_id", requestID)
		return nil, &shared.APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	return data, nil
}

// getJSON sends req and decodes a 2xx body into out.
func (c *MovieClient) getJSON(ctx context.Context, req request, out any) error {
	data, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage extracts a human readable message from an error body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		for _, s := range []string{body.Message, body.Error, body.Detail} {
			if s != "" {
				return s
			}
		}
	}
	return strings.TrimSpace(string(data))
}

// decodeList decodes either a bare JSON array or the {data, pagination} envelope.
//
// Anything that is not an array decodes as an empty, non-nil list.
func decodeList[T any](data []byte) ([]T, models.Pagination, error) {
	items := []T{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return items, models.Pagination{}, nil
	}

	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, models.Pagination{}, fmt.Errorf("failed to decode list: %w", err)
		}
		return items, models.Pagination{}, nil
	}

	var envelope struct {
		Data       json.RawMessage   `json:"data"`
		Pagination models.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return items, models.Pagination{}, nil
	}

	raw := bytes.TrimSpace(envelope.Data)
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, envelope.Pagination, fmt.Errorf("failed to decode list: %w", err)
		}
	}
	return items, envelope.Pagination, nil
}

func (c *MovieClient) page(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query})
}

func pageQuery(page, limit int) url.Values {
	if page <= 0 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func moviePage(data []byte) (*models.Page[models.Movie], error) {
	items, p, err := decodeList[models.Movie](data)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.Movie]{Data: items, Pagination: p}, nil
}

// TopMovies returns the first five entries of the most popular list.
func (c *MovieClient) TopMovies(ctx context.Context) ([]models.Movie, error) {
	data, err := c.page(ctx, "/movies/most-popular", pageQuery(1, topMoviesLimit))
	if err != nil {
		return nil, err
	}
	items, _, err := decodeList[models.Movie](data)
	if err != nil {
		return nil, err
	}
	if len(items) > topMoviesLimit {
		items = items[:topMoviesLimit]
	}
	return items, nil
}

// MostPopular calls GET /movies/most-popular.
func (c *MovieClient) MostPopular(ctx context.Context, page, limit int) (*models.Page[models.Movie], error) {
	data, err := c.page(ctx, "/movies/most-popular", pageQuery(page, limit))
	if err != nil {
		return nil, err
	}
	return moviePage(data)
}

// TopRated calls GET /movies/top-rated.
func (c *MovieClient) TopRated(ctx context.Context, page, limit int) (*models.Page[models.Movie], error) {
	data, err := c.page(ctx, "/movies/top-rated", pageQuery(page, limit))
	if err != nil {
		return nil, err
	}
	return moviePage(data)
}

// SearchMovies calls GET /movies/search?title=.
func (c *MovieClient) SearchMovies(ctx context.Context, title string, page, limit int) (*models.Page[models.Movie], error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: search title", shared.ErrMissingArgument)
	}

	q := pageQuery(page, limit)
	q.Set("title", title)

	data, err := c.page(ctx, "/movies/search", q)
	if err != nil {
		return nil, err
	}
	return moviePage(data)
}

// MovieDetail calls GET /movies/{id}.
func (c *MovieClient) MovieDetail(ctx context.Context, id models.MovieID) (*models.MovieDetail, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}

	var detail models.MovieDetail
	req := request{method: http.MethodGet, path: "/movies/" + url.PathEscape(id.String())}
	if err := c.getJSON(ctx, req, &detail); err != nil {
		if shared.StatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s: %w", shared.ErrMovieNotFound, id, err)
		}
		return nil, err
	}
	return &detail, nil
}

// MovieReviews calls GET /movies/{id}/reviews.
func (c *MovieClient) MovieReviews(ctx context.Context, id models.MovieID, page, limit int, sort models.ReviewSort) (*models.Page[models.Review], error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	if sort == "" {
		sort = models.SortNewest
	}
	if !sort.Valid() {
		return nil, fmt.Errorf("%w: sort %q", shared.ErrInvalidArgument, sort)
	}

	q := pageQuery(page, limit)
	q.Set("sort", string(sort))

	data, err := c.page(ctx, "/movies/"+url.PathEscape(id.String())+"/reviews", q)
	if err != nil {
		return nil, err
	}

	items, p, err := decodeList[models.Review](data)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.Review]{Data: items, Pagination: p}, nil
}

// PersonDetail calls GET /persons/{id}.
func (c *MovieClient) PersonDetail(ctx context.Context, id models.MovieID) (*models.Person, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: person id", shared.ErrMissingArgument)
	}

	var person models.Person
	req := request{method: http.MethodGet, path: "/persons/" + url.PathEscape(id.String())}
	if err := c.getJSON(ctx, req, &person); err != nil {
		return nil, err
	}
	return &person, nil
}
