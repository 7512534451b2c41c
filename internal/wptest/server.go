// Package wptest provides a fake WordPress REST API server for tests.
package wptest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Response describes a canned response for a single route.
type Response struct {
	StatusCode int
	Body       interface{}
	Headers    map[string]string
	Delay      time.Duration
}

// Server is a WordPress REST API stand-in backed by httptest.
// Routes are keyed by method and path; unmatched requests get the
// rest_no_route envelope a real site returns.
type Server struct {
	mu         sync.Mutex
	server     *httptest.Server
	responses  map[string]Response
	requests   int
	paths      []string
	username   string
	password   string
	failures   int
	failStatus int
}

// New creates a started server seeded with the discovery document,
// the current-user route, and an empty posts collection.
func New() *Server {
	s := &Server{
		responses: make(map[string]Response),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))

	s.Handle(http.MethodGet, "/wp-json", Response{
		StatusCode: http.StatusOK,
		Body: map[string]interface{}{
			"name":        "Test Site",
			"description": "Just another WordPress site",
			"url":         s.server.URL,
			"namespaces":  []string{"wp/v2"},
		},
	})
	s.Handle(http.MethodGet, "/wp-json/wp/v2/users/me", Response{
		StatusCode: http.StatusOK,
		Body:       User(1, "admin", "administrator"),
	})
	s.Handle(http.MethodGet, "/wp-json/wp/v2/posts", Response{
		StatusCode: http.StatusOK,
		Body:       []interface{}{},
	})
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts down the server.
func (s *Server) Close() {
	s.server.Close()
}

// Handle sets the canned response for a method and path.
func (s *Server) Handle(method, path string, resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responses[method+" "+path] = resp
}

// RequireBasicAuth makes the handler reject requests that do not carry
// the given basic credentials with a rest_forbidden envelope.
func (s *Server) RequireBasicAuth(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.username = username
	s.password = password
}

// FailNext makes the next n requests answer with the given status
// before normal routing resumes. Useful for retry tests.
func (s *Server) FailNext(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = n
	s.failStatus = status
}

// Requests returns the number of requests received so far.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.requests
}

// Paths returns the request paths seen so far, in order.
func (s *Server) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// ResetRequests clears the request counter and path log.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = 0
	s.paths = nil
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests++
	s.paths = append(s.paths, r.URL.Path)

	if s.failures > 0 {
		s.failures--
		status := s.failStatus
		s.mu.Unlock()
		writeJSON(w, status, Error("rest_unavailable", "simulated failure", status))
		return
	}

	username, password := s.username, s.password
	response, ok := s.responses[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	// The discovery index is public on a real site.
	if username != "" && r.URL.Path != "/wp-json" {
		u, p, hasAuth := r.BasicAuth()
		if !hasAuth || u != username || p != password {
			writeJSON(w, http.StatusUnauthorized,
				Error("rest_forbidden", "Sorry, you are not allowed to do that.", http.StatusUnauthorized))
			return
		}
	}

	if !ok {
		writeJSON(w, http.StatusNotFound,
			Error("rest_no_route", fmt.Sprintf("No route was found matching the URL %s", r.URL.Path), http.StatusNotFound))
		return
	}

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	status := response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	if response.Body == nil {
		w.WriteHeader(status)
		return
	}

	switch v := response.Body.(type) {
	case string:
		w.WriteHeader(status)
		_, _ = w.Write([]byte(v))
	case []byte:
		w.WriteHeader(status)
		_, _ = w.Write(v)
	default:
		writeJSON(w, status, v)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Post creates a post object in the REST API shape.
func Post(id int, title, status string) map[string]interface{} {
	return map[string]interface{}{
		"id":     id,
		"date":   "2026-01-15T10:00:00",
		"slug":   fmt.Sprintf("post-%d", id),
		"status": status,
		"type":   "post",
		"link":   fmt.Sprintf("https://example.com/?p=%d", id),
		"title": map[string]interface{}{
			"rendered": title,
		},
		"content": map[string]interface{}{
			"rendered":  fmt.Sprintf("<p>Body of %s</p>", title),
			"protected": false,
		},
		"author":     1,
		"categories": []int{1},
		"tags":       []int{},
	}
}

// User creates a user object in the REST API shape.
func User(id int, name string, roles ...string) map[string]interface{} {
	if len(roles) == 0 {
		roles = []string{"subscriber"}
	}
	return map[string]interface{}{
		"id":    id,
		"name":  name,
		"slug":  name,
		"roles": roles,
		"capabilities": map[string]interface{}{
			"read": true,
		},
	}
}

// Error creates the REST API error envelope.
func Error(code, message string, status int) map[string]interface{} {
	return map[string]interface{}{
		"code":    code,
		"message": message,
		"data": map[string]interface{}{
			"status": status,
		},
	}
}
