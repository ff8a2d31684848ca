// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package preview

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verbit/efmt"
	"github.com/verbit/efmt/batch"
)

// Server is a local HTTP dashboard over a batch.Runner's results,
// refreshed on every request.
type Server struct {
	Addr     string
	Runner   *batch.Runner
	Jobs     []batch.Job
	phraseHash string
	sessions *SessionStore
}

// New builds a Server gated behind a generated access phrase and returns
// that phrase; the serve command prints it to stdout before serving, the
// way the teacher's cmdBistreParse prints its listen address.
func New(addr string, runner *batch.Runner, jobs []batch.Job) (*Server, string, error) {
	phrase := GeneratePhrase()
	hash, err := HashPhrase(phrase)
	if err != nil {
		return nil, "", fmt.Errorf("preview: hash access phrase: %w", err)
	}
	return &Server{
		Addr:       addr,
		Runner:     runner,
		Jobs:       jobs,
		phraseHash: hash,
		sessions:   NewSessionStore(),
	}, phrase, nil
}

// ListenAndServe runs the dashboard until ctx is canceled or the
// process receives SIGINT/SIGTERM.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/", s.requireAuth(s.handleIndex))

	server := &http.Server{
		Addr:         s.Addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("preview: listening on %s", s.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
	case <-shutdown:
		log.Printf("preview: shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionFromRequest(r, s.sessions) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		renderLogin(w, "")
		return
	}
	if err := r.ParseForm(); err != nil {
		renderLogin(w, "invalid form submission")
		return
	}
	if !CheckPhrase(r.FormValue("phrase"), s.phraseHash) {
		renderLogin(w, "incorrect access phrase")
		return
	}
	sess := s.sessions.Create()
	setSessionCookie(w, sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// fileRow is one row of the dashboard's results table.
type fileRow struct {
	Path     string
	Changed  bool
	Size     string
	Warnings []*efmt.Diagnostic
	Err      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	results, _ := s.Runner.Run(ctx, s.Jobs)

	rows := make([]fileRow, 0, len(results))
	for _, res := range results {
		row := fileRow{Path: res.Path, Changed: res.Changed, Warnings: res.Warnings}
		if res.Err != nil {
			row.Err = res.Err.Error()
		} else {
			row.Size = humanize.Bytes(uint64(len(res.Formatted)))
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Path < rows[j].Path })

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, indexData{Rows: rows}); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

type indexData struct {
	Rows []fileRow
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>efmt preview</title></head>
<body>
<h1>efmt preview</h1>
<table border="1" cellpadding="4">
<tr><th>file</th><th>changed</th><th>size</th><th>error</th></tr>
{{range .Rows}}
<tr>
  <td>{{.Path}}</td>
  <td>{{if .Err}}-{{else}}{{.Changed}}{{end}}</td>
  <td>{{.Size}}</td>
  <td>{{.Err}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))

func renderLogin(w http.ResponseWriter, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	loginTemplate.Execute(w, loginData{Error: errMsg})
}

type loginData struct {
	Error string
}

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>efmt preview - login</title></head>
<body>
<h1>efmt preview</h1>
{{if .Error}}<p style="color:red">{{.Error}}</p>{{end}}
<form method="POST" action="/login">
  <input type="password" name="phrase" placeholder="access phrase" autofocus>
  <button type="submit">Enter</button>
</form>
</body>
</html>
`))
