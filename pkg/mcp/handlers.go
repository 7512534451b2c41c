package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"presshq/pressgate/pkg/client"
	"presshq/pressgate/pkg/sitefactory"
	"presshq/pressgate/pkg/wordpress"
)

// resolveSite picks the client for the optional "site" argument.
func (s *Server) resolveSite(args map[string]any) (*client.Client, error) {
	siteID, _, err := wordpress.OptionalString(args, "site")
	if err != nil {
		return nil, err
	}
	return s.sites.Resolve(strings.TrimSpace(siteID))
}

// listParams assembles the pagination and search query parameters
// shared by the list tools.
func listParams(args map[string]any) (map[string]string, error) {
	params := map[string]string{}

	page, ok, err := wordpress.OptionalPage(args)
	if err != nil {
		return nil, err
	}
	if ok {
		params["page"] = strconv.Itoa(page)
	}

	perPage, ok, err := wordpress.OptionalPerPage(args)
	if err != nil {
		return nil, err
	}
	if ok {
		params["per_page"] = strconv.Itoa(perPage)
	}

	search, ok, err := wordpress.OptionalString(args, "search")
	if err != nil {
		return nil, err
	}
	if ok && strings.TrimSpace(search) != "" {
		params["search"] = search
	}

	return params, nil
}

func setEnumParam(params map[string]string, args map[string]any, field string, allowed []string) error {
	v, ok, err := wordpress.OptionalEnum(args, field, allowed)
	if err != nil {
		return err
	}
	if ok {
		params[field] = v
	}
	return nil
}

func setIntParam(params map[string]string, args map[string]any, field string) error {
	n, ok, err := wordpress.OptionalInt(args, field)
	if err != nil {
		return err
	}
	if ok {
		params[field] = strconv.Itoa(n)
	}
	return nil
}

// textField copies an optional string argument into a request body.
func textField(body, args map[string]any, field string) error {
	v, ok, err := wordpress.OptionalString(args, field)
	if err != nil {
		return err
	}
	if ok {
		body[field] = v
	}
	return nil
}

func enumField(body, args map[string]any, field string, allowed []string) error {
	v, ok, err := wordpress.OptionalEnum(args, field, allowed)
	if err != nil {
		return err
	}
	if ok {
		body[field] = v
	}
	return nil
}

func intField(body, args map[string]any, field string) error {
	n, ok, err := wordpress.OptionalInt(args, field)
	if err != nil {
		return err
	}
	if ok {
		body[field] = n
	}
	return nil
}

// Posts.

func handlePostsList(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	params, err := listParams(args)
	if err != nil {
		return errorResult(err.Error())
	}
	if err := setEnumParam(params, args, "status", postStatusValues); err != nil {
		return errorResult(err.Error())
	}
	if err := setIntParam(params, args, "author"); err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.Posts(), &client.RequestOptions{Params: params})
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handlePostsGet(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	id, err := wordpress.RequireID(args, "id")
	if err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.Post(id), nil)
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handlePostsCreate(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	title, err := wordpress.RequireString(args, "title")
	if err != nil {
		return errorResult(err.Error())
	}

	body := map[string]any{"title": title}
	if err := textField(body, args, "content"); err != nil {
		return errorResult(err.Error())
	}
	if err := textField(body, args, "excerpt"); err != nil {
		return errorResult(err.Error())
	}
	if err := enumField(body, args, "status", postStatusValues); err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Post(ctx, wordpress.Posts(), body, nil)
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handlePostsUpdate(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	id, err := wordpress.RequireID(args, "id")
	if err != nil {
		return errorResult(err.Error())
	}

	body := map[string]any{}
	for _, field := range []string{"title", "content", "excerpt"} {
		if err := textField(body, args, field); err != nil {
			return errorResult(err.Error())
		}
	}
	if err := enumField(body, args, "status", postStatusValues); err != nil {
		return errorResult(err.Error())
	}
	if len(body) == 0 {
		return errorResult("nothing to update: supply at least one of title, content, excerpt, status")
	}

	res, err := c.Post(ctx, wordpress.Post(id), body, nil)
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handlePostsDelete(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	id, err := wordpress.RequireID(args, "id")
	if err != nil {
		return errorResult(err.Error())
	}

	params := map[string]string{}
	force, ok, err := wordpress.OptionalBool(args, "force")
	if err != nil {
		return errorResult(err.Error())
	}
	if ok && force {
		params["force"] = "true"
	}

	res, err := c.Delete(ctx, wordpress.Post(id), &client.RequestOptions{Params: params})
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

// Pages.

func handlePagesList(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	params, err := listParams(args)
	if err != nil {
		return errorResult(err.Error())
	}
	if err := setEnumParam(params, args, "status", postStatusValues); err != nil {
		return errorResult(err.Error())
	}
	if err := setIntParam(params, args, "parent"); err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.Pages(), &client.RequestOptions{Params: params})
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handlePagesGet(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	id, err := wordpress.RequireID(args, "id")
	if err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.Page(id), nil)
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handlePagesCreate(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	title, err := wordpress.RequireString(args, "title")
	if err != nil {
		return errorResult(err.Error())
	}

	body := map[string]any{"title": title}
	if err := textField(body, args, "content"); err != nil {
		return errorResult(err.Error())
	}
	if err := intField(body, args, "parent"); err != nil {
		return errorResult(err.Error())
	}
	if err := enumField(body, args, "status", postStatusValues); err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Post(ctx, wordpress.Pages(), body, nil)
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handlePagesUpdate(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	id, err := wordpress.RequireID(args, "id")
	if err != nil {
		return errorResult(err.Error())
	}

	body := map[string]any{}
	for _, field := range []string{"title", "content"} {
		if err := textField(body, args, field); err != nil {
			return errorResult(err.Error())
		}
	}
	if err := intField(body, args, "parent"); err != nil {
		return errorResult(err.Error())
	}
	if err := enumField(body, args, "status", postStatusValues); err != nil {
		return errorResult(err.Error())
	}
	if len(body) == 0 {
		return errorResult("nothing to update: supply at least one of title, content, parent, status")
	}

	res, err := c.Post(ctx, wordpress.Page(id), body, nil)
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handlePagesDelete(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	id, err := wordpress.RequireID(args, "id")
	if err != nil {
		return errorResult(err.Error())
	}

	params := map[string]string{}
	force, ok, err := wordpress.OptionalBool(args, "force")
	if err != nil {
		return errorResult(err.Error())
	}
	if ok && force {
		params["force"] = "true"
	}

	res, err := c.Delete(ctx, wordpress.Page(id), &client.RequestOptions{Params: params})
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

// Media.

func handleMediaList(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	params, err := listParams(args)
	if err != nil {
		return errorResult(err.Error())
	}
	if err := setEnumParam(params, args, "media_type", mediaTypeValues); err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.Media(), &client.RequestOptions{Params: params})
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handleMediaGet(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	id, err := wordpress.RequireID(args, "id")
	if err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.MediaItem(id), nil)
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handleMediaDelete(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	id, err := wordpress.RequireID(args, "id")
	if err != nil {
		return errorResult(err.Error())
	}

	// Attachments cannot be trashed; the API only accepts forced
	// deletes.
	res, err := c.Delete(ctx, wordpress.MediaItem(id), &client.RequestOptions{
		Params: map[string]string{"force": "true"},
	})
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

// Users.

func handleUsersList(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	params, err := listParams(args)
	if err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.Users(), &client.RequestOptions{Params: params})
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handleUsersGet(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	id, err := wordpress.RequireID(args, "id")
	if err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.User(id), nil)
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handleUsersMe(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.Me(), &client.RequestOptions{
		Params: map[string]string{"context": "edit"},
	})
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

// Comments.

func handleCommentsList(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	params, err := listParams(args)
	if err != nil {
		return errorResult(err.Error())
	}
	if err := setIntParam(params, args, "post"); err != nil {
		return errorResult(err.Error())
	}
	if err := setEnumParam(params, args, "status", commentStatusValues); err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.Comments(), &client.RequestOptions{Params: params})
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handleCommentsGet(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	id, err := wordpress.RequireID(args, "id")
	if err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.Comment(id), nil)
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handleCommentsCreate(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	post, err := wordpress.RequireID(args, "post")
	if err != nil {
		return errorResult(err.Error())
	}
	content, err := wordpress.RequireString(args, "content")
	if err != nil {
		return errorResult(err.Error())
	}

	body := map[string]any{"post": post, "content": content}
	if err := textField(body, args, "author_name"); err != nil {
		return errorResult(err.Error())
	}
	if err := textField(body, args, "author_email"); err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Post(ctx, wordpress.Comments(), body, nil)
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func setCommentStatus(ctx context.Context, s *Server, args map[string]any, status string) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	id, err := wordpress.RequireID(args, "id")
	if err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Post(ctx, wordpress.Comment(id), map[string]any{"status": status}, nil)
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handleCommentsApprove(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	return setCommentStatus(ctx, s, args, "approve")
}

func handleCommentsSpam(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	return setCommentStatus(ctx, s, args, "spam")
}

// Taxonomies.

func handleCategoriesList(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	params, err := listParams(args)
	if err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.Categories(), &client.RequestOptions{Params: params})
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handleTagsList(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	params, err := listParams(args)
	if err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.Tags(), &client.RequestOptions{Params: params})
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

// Site settings and search.

func handleSettingsGet(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.Settings(), nil)
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handleSettingsUpdate(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}

	// Settings fields pass through as-is; the site decides what it
	// accepts.
	body := make(map[string]any, len(args))
	for k, v := range args {
		if k == "site" {
			continue
		}
		body[k] = v
	}
	if len(body) == 0 {
		return errorResult("nothing to update: supply at least one settings field")
	}

	res, err := c.Post(ctx, wordpress.Settings(), body, nil)
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

func handleSearch(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	term, err := wordpress.RequireString(args, "term")
	if err != nil {
		return errorResult(err.Error())
	}

	params, err := listParams(args)
	if err != nil {
		return errorResult(err.Error())
	}
	params["search"] = term
	if err := setEnumParam(params, args, "subtype", searchSubtypeValues); err != nil {
		return errorResult(err.Error())
	}

	res, err := c.Get(ctx, wordpress.Search(), &client.RequestOptions{Params: params})
	if err != nil {
		return errorResult(err.Error())
	}
	return rawResult(res)
}

// Authentication.

func handleAuthStatus(_ context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(c.AuthStatus())
}

func handleAuthTest(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(sitefactory.Check(ctx, c))
}

// Cache management.

func handleCacheStats(ctx context.Context, s *Server, _ map[string]any) ToolCallResult {
	if s.cache == nil {
		return textResult("Cache is not configured.")
	}
	return jsonResult(s.cache.Stats(ctx))
}

func handleCacheInfo(ctx context.Context, s *Server, _ map[string]any) ToolCallResult {
	if s.cache == nil {
		return textResult("Cache is not configured.")
	}
	return jsonResult(s.cache.Info(ctx))
}

func handleCacheClear(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	if s.cache == nil {
		return textResult("Cache is not configured.")
	}

	pattern, ok, err := wordpress.OptionalString(args, "pattern")
	if err != nil {
		return errorResult(err.Error())
	}
	if ok && strings.TrimSpace(pattern) != "" {
		removed := s.cache.Clear(ctx, pattern)
		return jsonResult(map[string]any{"pattern": pattern, "removed": removed})
	}

	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	removed := c.CacheClear(ctx)
	return jsonResult(map[string]any{"site": c.Profile().ID, "removed": removed})
}

func handleCacheWarm(ctx context.Context, s *Server, args map[string]any) ToolCallResult {
	if s.cache == nil {
		return textResult("Cache is not configured.")
	}

	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}

	endpoints, ok, err := wordpress.OptionalStringSlice(args, "endpoints")
	if err != nil {
		return errorResult(err.Error())
	}
	if !ok || len(endpoints) == 0 {
		endpoints = defaultWarmEndpoints()
	}

	if err := c.CacheWarm(ctx, endpoints); err != nil {
		return errorResult("cache warm incomplete: " + err.Error())
	}
	return jsonResult(map[string]any{"site": c.Profile().ID, "warmed": endpoints})
}

// defaultWarmEndpoints is the warm set when the caller names none: the
// content routes a site browse touches first.
func defaultWarmEndpoints() []string {
	return []string{
		wordpress.Posts(),
		wordpress.Pages(),
		wordpress.Categories(),
		wordpress.Tags(),
	}
}

// Request statistics.

func handleStatsGet(_ context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}

	return jsonResult(struct {
		Site string `json:"site"`
		client.RequestStats
	}{c.Profile().ID, c.Stats()})
}

func handleStatsReset(_ context.Context, s *Server, args map[string]any) ToolCallResult {
	c, err := s.resolveSite(args)
	if err != nil {
		return errorResult(err.Error())
	}
	c.ResetStats()
	return textResult(fmt.Sprintf("Request statistics reset for site %q.", c.Profile().ID))
}
