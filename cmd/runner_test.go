package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/flix/internal/auth"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/shared"
	tu "github.com/desertthunder/flix/internal/testing"
	"github.com/urfave/cli/v3"
)

const testToken = "test-token"

// apiServer is a small in-memory movie API.
type apiServer struct {
	mu         sync.Mutex
	favorites  []string
	rejectAuth bool
	failAdd    bool
	failLogout bool
	logouts    int
}

func (s *apiServer) authorized(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	reject := s.rejectAuth
	s.mu.Unlock()
	if reject || r.Header.Get("Authorization") != "Bearer "+testToken {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid token"}`))
		return false
	}
	return true
}

func writeBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *apiServer) handler() http.Handler {
	mux := http.NewServeMux()

	moviePage := map[string]any{
		"data": []map[string]any{
			{"id": 1, "title": "Heat", "year": "1995", "rate": 8.3},
			{"id": 2, "title": "Ronin", "year": "1998", "rate": 7.2},
		},
		"pagination": map[string]any{"current_page": 1, "total_pages": 3, "total_items": 6, "page_size": 2},
	}

	mux.HandleFunc("GET /api/movies/most-popular", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, moviePage)
	})
	mux.HandleFunc("GET /api/movies/top-rated", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, moviePage)
	})
	mux.HandleFunc("GET /api/movies/search", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, map[string]any{
			"data":       []map[string]any{{"id": 3, "title": r.URL.Query().Get("title")}},
			"pagination": map[string]any{"current_page": 1, "total_pages": 1, "total_items": 1},
		})
	})
	mux.HandleFunc("GET /api/movies/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "404" {
			writeBody(w, http.StatusNotFound, map[string]string{"message": "Movie not found"})
			return
		}
		writeBody(w, http.StatusOK, map[string]any{
			"id": id, "title": "Movie " + id, "year": "1999", "genres": []string{"Drama"},
		})
	})
	mux.HandleFunc("GET /api/movies/{id}/reviews", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, map[string]any{
			"data": []map[string]any{
				{"id": 1, "username": "critic", "content": "Great heist.", "rate": 9},
			},
			"pagination": map[string]any{"current_page": 1, "total_pages": 1, "total_items": 1},
		})
	})
	mux.HandleFunc("GET /api/persons/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, map[string]any{"id": r.PathValue("id"), "name": "Robert De Niro", "role": "Actor"})
	})

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			writeBody(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeBody(w, http.StatusOK, map[string]any{
			"token": testToken,
			"user":  map[string]any{"id": 9, "username": creds.Username, "email": "alice@example.com"},
		})
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusCreated, map[string]string{"message": "Account created"})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.logouts++
		fail := s.failLogout
		s.mu.Unlock()
		if fail {
			writeBody(w, http.StatusInternalServerError, map[string]string{"message": "logout broke"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(w, r) {
			return
		}
		writeBody(w, http.StatusOK, map[string]string{"username": "alice", "email": "alice@example.com"})
	})
	mux.HandleFunc("PUT /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(w, r) {
			return
		}
		var p models.Profile
		json.NewDecoder(r.Body).Decode(&p)
		p.Username = "alice"
		writeBody(w, http.StatusOK, p)
	})

	mux.HandleFunc("GET /api/users/me/favorites", func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(w, r) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		data := make([]map[string]any, 0, len(s.favorites))
		for _, id := range s.favorites {
			data = append(data, map[string]any{"id": id, "title": "Movie " + id, "year": "1999"})
		}
		writeBody(w, http.StatusOK, map[string]any{"data": data})
	})
	mux.HandleFunc("POST /api/users/me/favorites", func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(w, r) {
			return
		}
		var body struct {
			MovieID models.MovieID `json:"movie_id"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.failAdd {
			writeBody(w, http.StatusInternalServerError, map[string]string{"message": "database is down"})
			return
		}
		if !slices.Contains(s.favorites, body.MovieID.String()) {
			s.favorites = append(s.favorites, body.MovieID.String())
		}
		writeBody(w, http.StatusCreated, map[string]string{"message": "Added"})
	})
	mux.HandleFunc("DELETE /api/users/me/favorites/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(w, r) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.favorites = slices.DeleteFunc(s.favorites, func(id string) bool { return id == r.PathValue("id") })
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

// update changes the server state under its lock.
func (s *apiServer) update(fn func(s *apiServer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (s *apiServer) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.favorites)
}

type testEnv struct {
	server  *apiServer
	runner  *Runner
	session *auth.Session
	out     *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	api := &apiServer{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	logger := shared.NewLogger(io.Discard)
	session := auth.NewSession(nil, logger)
	client := services.NewMovieClient(services.ClientOpts{
		BaseURL: srv.URL + "/api",
		Tokens:  session,
		Logger:  logger,
	})

	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		API:     client,
		Session: session,
		Logger:  logger,
		Output:  out,
	})

	return &testEnv{server: api, runner: runner, session: session, out: out}
}

// run executes the command line args against a fresh command tree.
func (e *testEnv) run(args ...string) error {
	app := &cli.Command{
		Name:     "flix",
		Commands: e.runner.register(),
		Writer:   io.Discard,
	}
	return app.Run(context.Background(), append([]string{"flix"}, args...))
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	if err := e.run("auth", "login", "-u", "alice", "-p", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	e.out.Reset()
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			session := auth.NewSession(nil, logger)
			api := services.NewMovieClient(services.ClientOpts{})

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Session:    session,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.session != session {
				t.Error("expected session to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses configured timeout", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.API.TimeoutSeconds = 7
			runner := NewRunner(RunnerOpts{Config: config})

			if runner.httpClient == nil {
				t.Fatal("expected httpClient to be set")
			}
			if runner.httpClient.Timeout != config.API.Timeout() {
				t.Errorf("expected timeout %v, got %v", config.API.Timeout(), runner.httpClient.Timeout)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := []string{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names = append(names, cmd.Name)
		}

		for _, want := range []string{"setup", "auth", "profile", "movies", "person", "favorites", "tui"} {
			if !slices.Contains(names, want) {
				t.Errorf("expected %q command, got %v", want, names)
			}
		}
	})

	t.Run("check", func(t *testing.T) {
		t.Run("prints a login hint on 401", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.check(&shared.APIError{Status: http.StatusUnauthorized})
			if err == nil {
				t.Fatal("expected error to pass through")
			}
			if !strings.Contains(output.String(), "flix auth login") {
				t.Errorf("expected login hint, got %q", output.String())
			}
		})

		t.Run("stays quiet for other errors", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.check(&shared.APIError{Status: http.StatusInternalServerError})
			if output.Len() != 0 {
				t.Errorf("expected no output, got %q", output.String())
			}
		})
	})
}

func TestMovieCommands(t *testing.T) {
	t.Run("top lists titles", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("movies", "top"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := env.out.String()
		if !strings.Contains(out, "Heat (1995)") || !strings.Contains(out, "Ronin (1998)") {
			t.Errorf("expected titles, got %q", out)
		}
	})

	t.Run("popular prints the page line", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("movies", "popular"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), "Page 1 of 3 (6 movies)") {
			t.Errorf("expected pagination line, got %q", env.out.String())
		}
	})

	t.Run("top-rated as JSON", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("movies", "top-rated", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var page models.Page[models.Movie]
		if err := json.Unmarshal(env.out.Bytes(), &page); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", env.out.String(), err)
		}
		if len(page.Data) != 2 || page.Pagination.TotalPages != 3 {
			t.Errorf("unexpected page: %+v", page)
		}
	})

	t.Run("popular as CSV", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("movies", "popular", "--format", "csv"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(env.out.String(), "ID,Title,Year,Rating,Image") {
			t.Errorf("expected CSV header, got %q", env.out.String())
		}
	})

	t.Run("home prints every section", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("movies", "home"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n := strings.Count(env.out.String(), "Heat (1995)"); n != 3 {
			t.Errorf("expected Heat in 3 sections, got %d", n)
		}
	})

	t.Run("search requires a title", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.run("movies", "search")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("search passes the title", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("movies", "search", "Alien"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), "Alien") {
			t.Errorf("expected search result, got %q", env.out.String())
		}
	})

	t.Run("show renders details", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("movies", "show", "5"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), "Movie 5") {
			t.Errorf("expected detail output, got %q", env.out.String())
		}
	})

	t.Run("show reports a missing movie", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.run("movies", "show", "404")
		if !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
	})

	t.Run("reviews rejects unknown sort", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.run("movies", "reviews", "--sort", "loudest", "1")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("reviews prints content", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("movies", "reviews", "1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), "Great heist.") {
			t.Errorf("expected review, got %q", env.out.String())
		}
	})

	t.Run("person show", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("person", "show", "7"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), "Robert De Niro") {
			t.Errorf("expected person, got %q", env.out.String())
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("status while signed out", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("auth", "status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), "Not signed in") {
			t.Errorf("expected signed out status, got %q", env.out.String())
		}
	})

	t.Run("login then status", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("auth", "login", "-u", "alice", "-p", "secret"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !env.session.IsAuthenticated() {
			t.Fatal("expected session to be authenticated")
		}
		env.out.Reset()

		if err := env.run("auth", "status", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var status authStatus
		if err := json.Unmarshal(env.out.Bytes(), &status); err != nil {
			t.Fatalf("expected JSON, got %q", env.out.String())
		}
		if !status.Authenticated || status.User.Username != "alice" {
			t.Errorf("unexpected status: %+v", status)
		}
	})

	t.Run("login with bad password", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.run("auth", "login", "-u", "alice", "-p", "wrong")
		if !shared.IsUnauthorized(err) {
			t.Errorf("expected 401, got %v", err)
		}
		if env.session.IsAuthenticated() {
			t.Error("expected session to stay signed out")
		}
	})

	t.Run("logout clears the session when the API fails", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)
		env.server.update(func(s *apiServer) { s.failLogout = true })

		if err := env.run("auth", "logout"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.session.IsAuthenticated() {
			t.Error("expected session to be cleared")
		}
		var logouts int
		env.server.update(func(s *apiServer) { logouts = s.logouts })
		if logouts != 1 {
			t.Errorf("expected 1 remote logout, got %d", logouts)
		}
	})

	t.Run("register", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("auth", "register", "-u", "bob", "-e", "bob@example.com", "-p", "hunter22"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), "Account created") {
			t.Errorf("expected server message, got %q", env.out.String())
		}
	})

	t.Run("register validates input", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.run("auth", "register", "-u", "bob", "-e", "not-an-email", "-p", "hunter22")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("profile needs a session", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.run("profile", "show")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if !strings.Contains(env.out.String(), "flix auth login") {
			t.Errorf("expected login hint, got %q", env.out.String())
		}
	})

	t.Run("profile hint on rejected token", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)
		env.server.update(func(s *apiServer) { s.rejectAuth = true })

		err := env.run("profile", "show")
		if !shared.IsUnauthorized(err) {
			t.Errorf("expected 401, got %v", err)
		}
		if !strings.Contains(env.out.String(), "flix auth login") {
			t.Errorf("expected login hint, got %q", env.out.String())
		}
	})

	t.Run("profile update", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)

		if err := env.run("profile", "update", "--email", "new@example.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), "new@example.com") {
			t.Errorf("expected updated email, got %q", env.out.String())
		}
	})
}

func TestFavoritesCommands(t *testing.T) {
	t.Run("list needs a session", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.run("favorites", "list")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if !strings.Contains(env.out.String(), "flix auth login") {
			t.Errorf("expected login hint, got %q", env.out.String())
		}
	})

	t.Run("empty list", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)

		if err := env.run("favorites", "list"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), "No favorites yet") {
			t.Errorf("expected empty message, got %q", env.out.String())
		}
	})

	t.Run("add then list", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)

		if err := env.run("favorites", "add", "42"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), "♥ #42") {
			t.Errorf("expected added message, got %q", env.out.String())
		}
		if ids := env.server.ids(); !slices.Equal(ids, []string{"42"}) {
			t.Errorf("expected server set [42], got %v", ids)
		}

		env.out.Reset()
		if err := env.run("favorites", "list"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), "Movie 42 (1999)") {
			t.Errorf("expected favorite in list, got %q", env.out.String())
		}
	})

	t.Run("toggle twice", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)

		if err := env.run("favorites", "toggle", "7"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := env.run("favorites", "toggle", "7"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ids := env.server.ids(); len(ids) != 0 {
			t.Errorf("expected empty server set, got %v", ids)
		}
		if !strings.Contains(env.out.String(), "♡ #7 is not a favorite") {
			t.Errorf("expected removed message, got %q", env.out.String())
		}
	})

	t.Run("remove as JSON", func(t *testing.T) {
		env := newTestEnv(t)
		env.server.update(func(s *apiServer) { s.favorites = []string{"1", "2"} })
		env.login(t)

		if err := env.run("favorites", "remove", "--json", "1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var change favoriteChange
		if err := json.Unmarshal(env.out.Bytes(), &change); err != nil {
			t.Fatalf("expected JSON, got %q", env.out.String())
		}
		if change.Favorite || len(change.Favorites) != 1 || change.Favorites[0].ID != "2" {
			t.Errorf("unexpected change: %+v", change)
		}
	})

	t.Run("failed add reports the API error", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)
		env.server.update(func(s *apiServer) { s.failAdd = true })

		err := env.run("favorites", "add", "42")
		if shared.StatusCode(err) != http.StatusInternalServerError {
			t.Errorf("expected 500, got %v", err)
		}
		if len(env.server.ids()) != 0 {
			t.Error("expected server set to stay empty")
		}
	})

	t.Run("add requires an id", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)

		err := env.run("favorites", "add")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("export writes a manifest", func(t *testing.T) {
		env := newTestEnv(t)
		env.server.update(func(s *apiServer) { s.favorites = []string{"1", "2"} })
		env.login(t)
		dir := filepath.Join(t.TempDir(), "export")

		if err := env.run("favorites", "export", "--format", "json", "--output", dir, "--rate", "100"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		if !strings.Contains(env.out.String(), "Exported: 2/2") {
			t.Errorf("expected summary, got %q", env.out.String())
		}
	})

	t.Run("export rejects an unknown format", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)

		err := env.run("favorites", "export", "--format", "pdf")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("config writes the template", func(t *testing.T) {
		env := newTestEnv(t)
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := env.run("setup", "config", "-c", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(tu.MustReadFile(t, path), "[api]") {
			t.Error("expected config template")
		}

		if err := env.run("setup", "config", "-c", path); err == nil {
			t.Error("expected error when the file exists")
		}
	})

	t.Run("database runs migrations", func(t *testing.T) {
		env := newTestEnv(t)
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "flix.db")
		path := filepath.Join(dir, "config.toml")
		config := "[database]\npath = \"" + filepath.ToSlash(dbPath) + "\"\n"
		if err := os.WriteFile(path, []byte(config), 0644); err != nil {
			t.Fatal(err)
		}
		t.Setenv(shared.EnvDBPath, "")

		if err := env.run("setup", "database", "-c", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, dbPath)
		if !strings.Contains(env.out.String(), "schema version") {
			t.Errorf("expected version line, got %q", env.out.String())
		}
	})
}
