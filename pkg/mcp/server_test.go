package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"presshq/pressgate/pkg/cache"
	"presshq/pressgate/pkg/config"
	"presshq/pressgate/pkg/sitefactory"
	"presshq/pressgate/pkg/telemetry/logging"
)

// answerProbe lets the credential probe succeed and hands everything
// else to next.
func answerProbe(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json/wp/v2/users/me" && r.URL.RawQuery == "" {
			w.Write([]byte(`{"id":1,"name":"admin"}`))
			return
		}
		if next != nil {
			next(w, r)
			return
		}
		http.NotFound(w, r)
	}
}

func testSite(id, baseURL string) config.SiteConfig {
	return config.SiteConfig{
		ID:      id,
		BaseURL: baseURL,
		Auth: config.AuthConfig{
			Method: "api-key",
			APIKey: "test-key",
		},
		Timeout: 5 * time.Second,
	}
}

// newTestServer wires one stub-backed site into an MCP server. The
// returned cache manager is shared with the site client.
func newTestServer(t *testing.T, handler http.HandlerFunc) (*Server, *cache.Manager) {
	t.Helper()

	stub := httptest.NewServer(answerProbe(handler))
	t.Cleanup(stub.Close)

	cacheMgr := cache.NewManager(cache.Config{Enabled: true, MaxEntries: 100}, logging.Discard().Slog(), nil)
	t.Cleanup(func() { cacheMgr.Close() })

	deps := sitefactory.Deps{Cache: cacheMgr, Logger: logging.Discard()}
	manager := sitefactory.NewManager(deps)
	if err := manager.Add(testSite("primary", stub.URL)); err != nil {
		t.Fatalf("add site: %v", err)
	}
	t.Cleanup(func() { manager.CloseAll() })

	return New(manager, cacheMgr, logging.Discard(), "pressgate-test", "0.0.0"), cacheMgr
}

func sendAndReceive(t *testing.T, srv *Server, req Request) Response {
	t.Helper()
	line, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	line = append(line, '\n')

	var out bytes.Buffer
	if err := srv.Run(context.Background(), bytes.NewReader(line), &out); err != nil {
		t.Fatal(err)
	}

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, out.String())
	}
	return resp
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) ToolCallResult {
	t.Helper()

	var rawArgs json.RawMessage
	if args != nil {
		var err error
		rawArgs, err = json.Marshal(args)
		if err != nil {
			t.Fatal(err)
		}
	}
	params, err := json.Marshal(ToolCallParams{Name: name, Arguments: rawArgs})
	if err != nil {
		t.Fatal(err)
	}

	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "tools/call",
		Params:  params,
	})
	if resp.Error != nil {
		t.Fatalf("unexpected protocol error: %+v", resp.Error)
	}

	data, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatal(err)
	}
	var result ToolCallResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	return result
}

func TestInitialize(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "initialize",
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result InitializeResult
	json.Unmarshal(data, &result)

	if result.ProtocolVersion != "2024-11-05" {
		t.Errorf("protocol version = %s, want 2024-11-05", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "pressgate-test" {
		t.Errorf("server name = %s, want pressgate-test", result.ServerInfo.Name)
	}
	if result.ServerInfo.Version != "0.0.0" {
		t.Errorf("server version = %s, want 0.0.0", result.ServerInfo.Version)
	}
}

func TestToolsList(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`2`),
		Method:  "tools/list",
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result ToolsListResult
	json.Unmarshal(data, &result)

	if len(result.Tools) != len(allTools) {
		t.Errorf("got %d tools, want %d", len(result.Tools), len(allTools))
	}

	names := make(map[string]bool)
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"wp_posts_list", "wp_posts_create", "wp_media_delete", "wp_settings_update", "wp_auth_test", "wp_cache_warm", "wp_stats_reset"} {
		if !names[want] {
			t.Errorf("missing tool: %s", want)
		}
	}
}

func TestToolCatalogueMatchesHandlers(t *testing.T) {
	if len(allTools) != len(toolHandlers) {
		t.Errorf("catalogue has %d tools, registry has %d handlers", len(allTools), len(toolHandlers))
	}

	seen := make(map[string]bool)
	for _, tool := range allTools {
		if seen[tool.Name] {
			t.Errorf("duplicate tool definition: %s", tool.Name)
		}
		seen[tool.Name] = true

		if _, ok := toolHandlers[tool.Name]; !ok {
			t.Errorf("tool %s has no handler", tool.Name)
		}
		if tool.Description == "" {
			t.Errorf("tool %s has no description", tool.Name)
		}
		if tool.InputSchema == nil {
			t.Errorf("tool %s has no input schema", tool.Name)
		}
	}

	for name := range toolHandlers {
		if !seen[name] {
			t.Errorf("handler %s is missing from the catalogue", name)
		}
	}
}

func TestUnknownMethod(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`3`),
		Method:  "resources/list",
	})

	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != CodeMethodNotFound {
		t.Errorf("error code = %d, want %d", resp.Error.Code, CodeMethodNotFound)
	}
}

func TestNotificationNoResponse(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	line, _ := json.Marshal(Request{
		JSONRPC: "2.0",
		Method:  "notifications/initialized",
	})
	line = append(line, '\n')

	var out bytes.Buffer
	if err := srv.Run(context.Background(), bytes.NewReader(line), &out); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output for notification, got: %s", out.String())
	}
}

func TestParseError(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var out bytes.Buffer
	if err := srv.Run(context.Background(), strings.NewReader("{not json}\n"), &out); err != nil {
		t.Fatal(err)
	}

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != CodeParseError {
		t.Errorf("expected parse error response, got %+v", resp)
	}
}

func TestToolsCall_InvalidParams(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`4`),
		Method:  "tools/call",
		Params:  json.RawMessage(`"bare string"`),
	})

	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Errorf("expected invalid params error, got %+v", resp)
	}
}

func TestToolsCall_UnknownTool(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	result := callTool(t, srv, "wp_nonexistent", nil)

	if !result.IsError {
		t.Error("expected isError for unknown tool")
	}
	if !strings.Contains(result.Content[0].Text, "unknown tool") {
		t.Errorf("unexpected message: %s", result.Content[0].Text)
	}
}

func TestToolsCall_ArgumentsMustBeObject(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	params, _ := json.Marshal(ToolCallParams{Name: "wp_posts_list", Arguments: json.RawMessage(`"nope"`)})
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`5`),
		Method:  "tools/call",
		Params:  params,
	})

	data, _ := json.Marshal(resp.Result)
	var result ToolCallResult
	json.Unmarshal(data, &result)

	if !result.IsError {
		t.Error("expected isError for non-object arguments")
	}
}

func TestPostsList(t *testing.T) {
	var gotQuery atomic.Value
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json/wp/v2/posts" && r.Method == http.MethodGet {
			gotQuery.Store(r.URL.RawQuery)
			w.Write([]byte(`[{"id":7,"title":{"rendered":"Hello"}}]`))
			return
		}
		http.NotFound(w, r)
	})

	result := callTool(t, srv, "wp_posts_list", map[string]any{
		"page":     2,
		"per_page": 5,
		"status":   "draft",
	})

	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	if !strings.Contains(result.Content[0].Text, `"id":7`) {
		t.Errorf("expected post payload, got: %s", result.Content[0].Text)
	}
	if q, _ := gotQuery.Load().(string); q != "page=2&per_page=5&status=draft" {
		t.Errorf("query = %q, want page=2&per_page=5&status=draft", q)
	}
}

func TestPostsList_BadPerPage(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	result := callTool(t, srv, "wp_posts_list", map[string]any{"per_page": 500})

	if !result.IsError {
		t.Fatal("expected isError for per_page out of range")
	}
	if !strings.Contains(result.Content[0].Text, "per_page") {
		t.Errorf("error should name the field, got: %s", result.Content[0].Text)
	}
}

func TestPostsGet_MissingID(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	result := callTool(t, srv, "wp_posts_get", nil)

	if !result.IsError {
		t.Fatal("expected isError for missing id")
	}
	if !strings.Contains(result.Content[0].Text, "id") {
		t.Errorf("error should name the field, got: %s", result.Content[0].Text)
	}
}

func TestPostsCreate(t *testing.T) {
	var gotBody atomic.Value
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json/wp/v2/posts" && r.Method == http.MethodPost {
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			gotBody.Store(body)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":11,"status":"draft"}`))
			return
		}
		http.NotFound(w, r)
	})

	result := callTool(t, srv, "wp_posts_create", map[string]any{
		"title":   "Hello",
		"content": "<p>First</p>",
		"status":  "draft",
	})

	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	if !strings.Contains(result.Content[0].Text, `"id":11`) {
		t.Errorf("expected created post, got: %s", result.Content[0].Text)
	}

	body, _ := gotBody.Load().(map[string]any)
	if body["title"] != "Hello" || body["content"] != "<p>First</p>" || body["status"] != "draft" {
		t.Errorf("request body = %v", body)
	}
}

func TestPostsCreate_MissingTitle(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	result := callTool(t, srv, "wp_posts_create", map[string]any{"content": "text"})

	if !result.IsError {
		t.Fatal("expected isError for missing title")
	}
}

func TestPostsUpdate_NoFields(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	result := callTool(t, srv, "wp_posts_update", map[string]any{"id": 3})

	if !result.IsError {
		t.Fatal("expected isError when no fields are supplied")
	}
	if !strings.Contains(result.Content[0].Text, "nothing to update") {
		t.Errorf("unexpected message: %s", result.Content[0].Text)
	}
}

func TestMediaDelete_AlwaysForced(t *testing.T) {
	var gotQuery atomic.Value
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json/wp/v2/media/9" && r.Method == http.MethodDelete {
			gotQuery.Store(r.URL.RawQuery)
			w.Write([]byte(`{"deleted":true}`))
			return
		}
		http.NotFound(w, r)
	})

	result := callTool(t, srv, "wp_media_delete", map[string]any{"id": 9})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	if q, _ := gotQuery.Load().(string); q != "force=true" {
		t.Errorf("query = %q, media deletes must be forced", q)
	}
}

func TestCommentsApprove(t *testing.T) {
	var gotBody atomic.Value
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json/wp/v2/comments/5" && r.Method == http.MethodPost {
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			gotBody.Store(body)
			w.Write([]byte(`{"id":5,"status":"approved"}`))
			return
		}
		http.NotFound(w, r)
	})

	result := callTool(t, srv, "wp_comments_approve", map[string]any{"id": 5})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}

	body, _ := gotBody.Load().(map[string]any)
	if body["status"] != "approve" {
		t.Errorf("body = %v, want status approve", body)
	}
}

func TestSearch(t *testing.T) {
	var gotQuery atomic.Value
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json/wp/v2/search" {
			gotQuery.Store(r.URL.RawQuery)
			w.Write([]byte(`[]`))
			return
		}
		http.NotFound(w, r)
	})

	result := callTool(t, srv, "wp_search", map[string]any{"term": "hello world", "subtype": "post"})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	if q, _ := gotQuery.Load().(string); q != "search=hello+world&subtype=post" {
		t.Errorf("query = %q", q)
	}
}

func TestSiteResolution_UnknownSite(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	result := callTool(t, srv, "wp_posts_list", map[string]any{"site": "wiki"})

	if !result.IsError {
		t.Fatal("expected isError for unknown site")
	}
	if !strings.Contains(result.Content[0].Text, "primary") {
		t.Errorf("error should list configured sites, got: %s", result.Content[0].Text)
	}
}

func TestAuthStatus(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	result := callTool(t, srv, "wp_auth_status", nil)

	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	text := result.Content[0].Text
	if !strings.Contains(text, "api-key") {
		t.Errorf("expected auth method in output, got: %s", text)
	}
}

func TestAuthTest(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json" {
			w.Write([]byte(`{"name":"stub"}`))
			return
		}
		http.NotFound(w, r)
	})

	result := callTool(t, srv, "wp_auth_test", nil)
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	text := result.Content[0].Text
	if !strings.Contains(text, `"reachable": true`) || !strings.Contains(text, `"authenticated": true`) {
		t.Errorf("unexpected check output: %s", text)
	}
}

func TestCacheStats_NotConfigured(t *testing.T) {
	stub := httptest.NewServer(answerProbe(nil))
	t.Cleanup(stub.Close)

	manager := sitefactory.NewManager(sitefactory.Deps{Logger: logging.Discard()})
	if err := manager.Add(testSite("primary", stub.URL)); err != nil {
		t.Fatalf("add site: %v", err)
	}
	t.Cleanup(func() { manager.CloseAll() })

	srv := New(manager, nil, logging.Discard(), "pressgate-test", "0.0.0")
	result := callTool(t, srv, "wp_cache_stats", nil)

	if !strings.Contains(result.Content[0].Text, "not configured") {
		t.Errorf("expected 'not configured', got: %s", result.Content[0].Text)
	}
}

func TestCacheFlow(t *testing.T) {
	var calls atomic.Int32
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json/wp/v2/posts" {
			calls.Add(1)
			w.Write([]byte(`[{"id":1}]`))
			return
		}
		http.NotFound(w, r)
	})

	// Two list calls: the second is served from cache.
	for i := 0; i < 2; i++ {
		if result := callTool(t, srv, "wp_posts_list", nil); result.IsError {
			t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("origin calls = %d, want 1 (second read cached)", calls.Load())
	}

	stats := callTool(t, srv, "wp_cache_stats", nil)
	if !strings.Contains(stats.Content[0].Text, `"hits": 1`) {
		t.Errorf("expected one cache hit, got: %s", stats.Content[0].Text)
	}

	clear := callTool(t, srv, "wp_cache_clear", nil)
	if clear.IsError {
		t.Fatalf("unexpected tool error: %s", clear.Content[0].Text)
	}
	if !strings.Contains(clear.Content[0].Text, `"removed": 1`) {
		t.Errorf("expected one removed entry, got: %s", clear.Content[0].Text)
	}

	if result := callTool(t, srv, "wp_posts_list", nil); result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	if calls.Load() != 2 {
		t.Errorf("origin calls = %d, want 2 after clear", calls.Load())
	}
}

func TestCacheWarm(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Write([]byte(`[]`))
	})

	result := callTool(t, srv, "wp_cache_warm", map[string]any{
		"endpoints": []any{"wp/v2/posts", "wp/v2/categories"},
	})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	if !strings.Contains(result.Content[0].Text, "wp/v2/posts") {
		t.Errorf("expected warmed endpoints in output, got: %s", result.Content[0].Text)
	}

	mu.Lock()
	defer mu.Unlock()
	var warmed int
	for _, p := range paths {
		if p == "/wp-json/wp/v2/posts" || p == "/wp-json/wp/v2/categories" {
			warmed++
		}
	}
	if warmed != 2 {
		t.Errorf("origin saw %d warm fetches, want 2 (paths: %v)", warmed, paths)
	}
}

func TestStatsGetAndReset(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json/wp/v2/posts" {
			w.Write([]byte(`[]`))
			return
		}
		http.NotFound(w, r)
	})

	if result := callTool(t, srv, "wp_posts_list", nil); result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}

	stats := callTool(t, srv, "wp_stats_get", nil)
	if !strings.Contains(stats.Content[0].Text, `"total_requests": 1`) {
		t.Errorf("expected one counted request, got: %s", stats.Content[0].Text)
	}
	if !strings.Contains(stats.Content[0].Text, `"site": "primary"`) {
		t.Errorf("expected site id in output, got: %s", stats.Content[0].Text)
	}

	reset := callTool(t, srv, "wp_stats_reset", nil)
	if !strings.Contains(reset.Content[0].Text, "primary") {
		t.Errorf("expected site id in reset confirmation, got: %s", reset.Content[0].Text)
	}

	stats = callTool(t, srv, "wp_stats_get", nil)
	if !strings.Contains(stats.Content[0].Text, `"total_requests": 0`) {
		t.Errorf("expected zeroed counters, got: %s", stats.Content[0].Text)
	}
}

func TestSettingsUpdate_PassthroughBody(t *testing.T) {
	var gotBody atomic.Value
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json/wp/v2/settings" && r.Method == http.MethodPost {
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			gotBody.Store(body)
			w.Write([]byte(`{"title":"New Title"}`))
			return
		}
		http.NotFound(w, r)
	})

	result := callTool(t, srv, "wp_settings_update", map[string]any{
		"site":  "primary",
		"title": "New Title",
	})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}

	body, _ := gotBody.Load().(map[string]any)
	if body["title"] != "New Title" {
		t.Errorf("body = %v, want title passthrough", body)
	}
	if _, ok := body["site"]; ok {
		t.Error("site argument must not leak into the request body")
	}
}
