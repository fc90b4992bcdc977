// Package fakeapi is an in-memory stand-in for the community API.
//
// It serves the same routes and record shapes as the real service, filled
// with gofakeit data, so the console can be run and tested without a
// backend. Records deliberately vary in shape: some posts and comments
// carry no status, users only carry first/last name and an image.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Options sizes the generated data.
type Options struct {
	Seed     int64 // 0 picks a random seed
	Users    int
	Posts    int
	Comments int
	Log      *zap.Logger
}

// Server holds the fake collections.
type Server struct {
	log *zap.Logger

	mu         sync.Mutex
	users      []map[string]any
	posts      []map[string]any
	comments   []map[string]any
	readFail   int
	writeFail  int
	writeDelay time.Duration
}

var (
	statuses = []string{"approved", "flagged", "rejected"}
	topics   = []string{"Finance", "Investissement", "Crédit", "Épargne", "Assurance", "Banque Digitale", "Conseils", "Cartes Bancaires", "Prêt Immobilier", "Services"}
)

// New generates a data set.
func New(opts Options) *Server {
	if opts.Users <= 0 {
		opts.Users = 25
	}
	if opts.Posts <= 0 {
		opts.Posts = 40
	}
	if opts.Comments <= 0 {
		opts.Comments = 120
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	f := gofakeit.New(opts.Seed)
	s := &Server{log: opts.Log}
	now := time.Now().UTC()

	names := make([]string, opts.Users)
	for i := 0; i < opts.Users; i++ {
		first, last := f.FirstName(), f.LastName()
		names[i] = first + " " + last
		s.users = append(s.users, map[string]any{
			"id":           i + 1,
			"firstName":    first,
			"lastName":     last,
			"profileImage": f.ImageURL(100, 100),
		})
	}

	for i := 0; i < opts.Posts; i++ {
		p := map[string]any{
			"id":       i + 1,
			"title":    strings.TrimSuffix(f.Sentence(f.Number(4, 9)), "."),
			"author":   map[string]any{"name": names[f.Number(0, len(names)-1)], "avatar": f.ImageURL(100, 100)},
			"content":  f.Paragraph(1, 3, 12, " "),
			"tags":     pickTags(f),
			"date":     f.DateRange(now.AddDate(0, -6, 0), now).Format("2006-01-02"),
			"views":    f.Number(0, 5000),
			"comments": f.Number(0, 80),
			"likes":    f.Number(0, 300),
		}
		if f.Bool() {
			p["status"] = f.RandomString(statuses)
		}
		s.posts = append(s.posts, p)
	}

	for i := 0; i < opts.Comments; i++ {
		post := s.posts[f.Number(0, len(s.posts)-1)]
		c := map[string]any{
			"id":           i + 1,
			"content":      f.Sentence(f.Number(5, 20)),
			"author":       names[f.Number(0, len(names)-1)],
			"profileImage": f.ImageURL(100, 100),
			"postId":       post["id"],
			"postTitle":    post["title"],
			"date":         f.DateRange(now.AddDate(0, -6, 0), now).Format(time.RFC3339),
			"likesCount":   f.Number(0, 50),
		}
		if f.Bool() {
			c["status"] = f.RandomString(statuses)
		}
		s.comments = append(s.comments, c)
	}
	return s
}

func pickTags(f *gofakeit.Faker) []string {
	n := f.Number(1, 3)
	out := make([]string, 0, n)
	for len(out) < n {
		t := f.RandomString(topics)
		dup := false
		for _, have := range out {
			if have == t {
				dup = true
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	return out
}

// FailReads makes list endpoints answer status until reset with 0.
func (s *Server) FailReads(status int) {
	s.mu.Lock()
	s.readFail = status
	s.mu.Unlock()
}

// FailWrites makes PUT and DELETE answer status until reset with 0.
func (s *Server) FailWrites(status int) {
	s.mu.Lock()
	s.writeFail = status
	s.mu.Unlock()
}

// DelayWrites holds PUT and DELETE for d before answering.
func (s *Server) DelayWrites(d time.Duration) {
	s.mu.Lock()
	s.writeDelay = d
	s.mu.Unlock()
}

// CommentContent returns the stored content of comment id.
func (s *Server) CommentContent(id int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.comments, id); i >= 0 {
		c, _ := s.comments[i]["content"].(string)
		return c, true
	}
	return "", false
}

// Len returns the size of a collection ("users", "posts", "comments").
func (s *Server) Len(resource string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch resource {
	case "users":
		return len(s.users)
	case "posts":
		return len(s.posts)
	case "comments":
		return len(s.comments)
	}
	return 0
}

// Handler returns the API router, mounted under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(api chi.Router) {
		api.Get("/users", s.list(func() []map[string]any { return s.users }))
		api.Head("/users", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		api.Get("/posts", s.list(func() []map[string]any { return s.posts }))
		api.Get("/comments", s.list(func() []map[string]any { return s.comments }))
		api.Put("/comments/{id}", s.updateComment)
		api.Delete("/comments/{id}", s.deleteComment)
	})
	return r
}

func (s *Server) list(get func() []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		if s.readFail != 0 {
			status := s.readFail
			s.mu.Unlock()
			http.Error(w, http.StatusText(status), status)
			return
		}
		src := get()
		out := make([]map[string]any, len(src))
		for i, rec := range src {
			out[i] = copyRecord(rec)
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) writeGate(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	status, delay := s.writeFail, s.writeDelay
	s.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return false
		}
	}
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return false
	}
	return true
}

func (s *Server) updateComment(w http.ResponseWriter, r *http.Request) {
	if !s.writeGate(w, r) {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	i := indexOf(s.comments, id)
	if i < 0 {
		s.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	s.comments[i]["content"] = body.Content
	out := copyRecord(s.comments[i])
	s.mu.Unlock()

	s.log.Debug("fake api comment updated", zap.Int("id", id))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	if !s.writeGate(w, r) {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	i := indexOf(s.comments, id)
	if i < 0 {
		s.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	s.comments = append(s.comments[:i], s.comments[i+1:]...)
	s.mu.Unlock()

	s.log.Debug("fake api comment deleted", zap.Int("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func indexOf(recs []map[string]any, id int) int {
	for i, rec := range recs {
		if fmt.Sprint(rec["id"]) == strconv.Itoa(id) {
			return i
		}
	}
	return -1
}

func copyRecord(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
