// Package testutil provides an in-memory stand-in for the deployed resume
// site and its counting service.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const (
	CountingPath = "/lambda"
	SiteName     = "Vernell Mangum"
)

const SitePage = `<!DOCTYPE html>
<html>
<head><title>Resume</title></head>
<body>
  <h1>` + SiteName + `</h1>
  <h3></h3>
</body>
</html>`

type VisitRequest struct {
	ContentType string
	Body        []byte
}

// CountingService behaves like the deployed counting service: every POST
// increments the count of the posted user and returns it.
type CountingService struct {
	Server *httptest.Server

	lock     sync.Mutex
	counts   map[string]int64
	requests []VisitRequest
	override http.HandlerFunc
	page     string
}

// NewCountingService starts a counting service that is closed when the test ends.
func NewCountingService(t testing.TB) *CountingService {
	s := &CountingService{
		counts: map[string]int64{},
		page:   SitePage,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(CountingPath, s.handleVisit)
	mux.HandleFunc("/", s.handlePage)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Server.Close)

	return s
}

func (s *CountingService) Endpoint() string {
	return s.Server.URL + CountingPath
}

func (s *CountingService) SiteURL() string {
	return s.Server.URL + "/"
}

// Seed sets the stored count of a user.
func (s *CountingService) Seed(user string, count int64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.counts[user] = count
}

func (s *CountingService) Count(user string) int64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.counts[user]
}

// Override replaces the counting handler, the request is still recorded.
func (s *CountingService) Override(handler http.HandlerFunc) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.override = handler
}

// RespondWith makes the counting service answer every visit with a fixed status and body.
func (s *CountingService) RespondWith(status int, body string) {
	s.Override(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	})
}

// SetPage replaces the html served at the site root.
func (s *CountingService) SetPage(html string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.page = html
}

func (s *CountingService) Requests() []VisitRequest {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]VisitRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *CountingService) handleVisit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.lock.Lock()
	s.requests = append(s.requests, VisitRequest{
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	override := s.override
	s.lock.Unlock()

	if override != nil {
		override(w, r)
		return
	}

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		User string `json:"user"`
	}
	err = json.Unmarshal(body, &req)
	if err != nil || req.User == "" {
		http.Error(w, "expected a body of {\"user\": \"...\"}", http.StatusBadRequest)
		return
	}

	s.lock.Lock()
	s.counts[req.User]++
	count := s.counts[req.User]
	s.lock.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message": fmt.Sprintf("Hello %s! You have visited this page %d times.", req.User, count),
		"count":   count,
	})
}

func (s *CountingService) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.lock.Lock()
	page := s.page
	s.lock.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, page)
}
