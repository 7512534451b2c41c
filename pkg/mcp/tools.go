package mcp

import (
	"context"
	"strings"

	"presshq/pressgate/pkg/wordpress"
)

// toolHandler handles one tool call. Arguments arrive pre-decoded from
// the JSON-RPC envelope; failures are reported through the result's
// IsError flag, never as protocol errors.
type toolHandler func(ctx context.Context, s *Server, args map[string]any) ToolCallResult

// toolHandlers maps tool names to their handlers. Every entry has a
// matching definition in allTools.
var toolHandlers = map[string]toolHandler{
	"wp_posts_list":       handlePostsList,
	"wp_posts_get":        handlePostsGet,
	"wp_posts_create":     handlePostsCreate,
	"wp_posts_update":     handlePostsUpdate,
	"wp_posts_delete":     handlePostsDelete,
	"wp_pages_list":       handlePagesList,
	"wp_pages_get":        handlePagesGet,
	"wp_pages_create":     handlePagesCreate,
	"wp_pages_update":     handlePagesUpdate,
	"wp_pages_delete":     handlePagesDelete,
	"wp_media_list":       handleMediaList,
	"wp_media_get":        handleMediaGet,
	"wp_media_delete":     handleMediaDelete,
	"wp_users_list":       handleUsersList,
	"wp_users_get":        handleUsersGet,
	"wp_users_me":         handleUsersMe,
	"wp_comments_list":    handleCommentsList,
	"wp_comments_get":     handleCommentsGet,
	"wp_comments_create":  handleCommentsCreate,
	"wp_comments_approve": handleCommentsApprove,
	"wp_comments_spam":    handleCommentsSpam,
	"wp_categories_list":  handleCategoriesList,
	"wp_tags_list":        handleTagsList,
	"wp_settings_get":     handleSettingsGet,
	"wp_settings_update":  handleSettingsUpdate,
	"wp_search":           handleSearch,
	"wp_auth_status":      handleAuthStatus,
	"wp_auth_test":        handleAuthTest,
	"wp_cache_stats":      handleCacheStats,
	"wp_cache_clear":      handleCacheClear,
	"wp_cache_warm":       handleCacheWarm,
	"wp_cache_info":       handleCacheInfo,
	"wp_stats_get":        handleStatsGet,
	"wp_stats_reset":      handleStatsReset,
}

// Schema fragments shared across tool definitions.

func schema(props map[string]any, required ...string) map[string]any {
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func enumProp(desc string, values []string) map[string]any {
	return map[string]any{
		"type":        "string",
		"description": desc + " (one of: " + strings.Join(values, ", ") + ")",
		"enum":        values,
	}
}

func siteProp() map[string]any {
	return prop("string", "Site id; may be omitted when only one site is configured")
}

func idProp(what string) map[string]any {
	return prop("integer", "The "+what+" id")
}

func listProps(extra map[string]any) map[string]any {
	props := map[string]any{
		"site":     siteProp(),
		"page":     prop("integer", "Result page, starting at 1"),
		"per_page": prop("integer", "Results per page, 1 to 100"),
		"search":   prop("string", "Limit results to those matching this term"),
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

var (
	postStatusValues    = wordpress.PostStatuses
	commentStatusValues = wordpress.CommentStatuses
	mediaTypeValues     = wordpress.MediaTypes
	searchSubtypeValues = wordpress.SearchSubtypes
)

// allTools is the catalogue served by tools/list.
var allTools = []ToolDefinition{
	{
		Name:        "wp_posts_list",
		Description: "List posts, with optional pagination, status, author, and search filters.",
		InputSchema: schema(listProps(map[string]any{
			"status": enumProp("Filter by post status", postStatusValues),
			"author": prop("integer", "Filter by author user id"),
		})),
	},
	{
		Name:        "wp_posts_get",
		Description: "Fetch one post by id.",
		InputSchema: schema(map[string]any{"site": siteProp(), "id": idProp("post")}, "id"),
	},
	{
		Name:        "wp_posts_create",
		Description: "Create a post. New posts default to draft status unless a status is given.",
		InputSchema: schema(map[string]any{
			"site":    siteProp(),
			"title":   prop("string", "Post title"),
			"content": prop("string", "Post body, HTML or block markup"),
			"excerpt": prop("string", "Post excerpt"),
			"status":  enumProp("Post status", postStatusValues),
		}, "title"),
	},
	{
		Name:        "wp_posts_update",
		Description: "Update fields of an existing post. Only the supplied fields change.",
		InputSchema: schema(map[string]any{
			"site":    siteProp(),
			"id":      idProp("post"),
			"title":   prop("string", "New title"),
			"content": prop("string", "New body"),
			"excerpt": prop("string", "New excerpt"),
			"status":  enumProp("New status", postStatusValues),
		}, "id"),
	},
	{
		Name:        "wp_posts_delete",
		Description: "Delete a post. Moves it to trash unless force is true.",
		InputSchema: schema(map[string]any{
			"site":  siteProp(),
			"id":    idProp("post"),
			"force": prop("boolean", "Bypass trash and delete permanently"),
		}, "id"),
	},
	{
		Name:        "wp_pages_list",
		Description: "List pages, with optional pagination, status, and search filters.",
		InputSchema: schema(listProps(map[string]any{
			"status": enumProp("Filter by page status", postStatusValues),
			"parent": prop("integer", "Filter by parent page id"),
		})),
	},
	{
		Name:        "wp_pages_get",
		Description: "Fetch one page by id.",
		InputSchema: schema(map[string]any{"site": siteProp(), "id": idProp("page")}, "id"),
	},
	{
		Name:        "wp_pages_create",
		Description: "Create a page. New pages default to draft status unless a status is given.",
		InputSchema: schema(map[string]any{
			"site":    siteProp(),
			"title":   prop("string", "Page title"),
			"content": prop("string", "Page body, HTML or block markup"),
			"parent":  prop("integer", "Parent page id for hierarchical placement"),
			"status":  enumProp("Page status", postStatusValues),
		}, "title"),
	},
	{
		Name:        "wp_pages_update",
		Description: "Update fields of an existing page. Only the supplied fields change.",
		InputSchema: schema(map[string]any{
			"site":    siteProp(),
			"id":      idProp("page"),
			"title":   prop("string", "New title"),
			"content": prop("string", "New body"),
			"parent":  prop("integer", "New parent page id"),
			"status":  enumProp("New status", postStatusValues),
		}, "id"),
	},
	{
		Name:        "wp_pages_delete",
		Description: "Delete a page. Moves it to trash unless force is true.",
		InputSchema: schema(map[string]any{
			"site":  siteProp(),
			"id":    idProp("page"),
			"force": prop("boolean", "Bypass trash and delete permanently"),
		}, "id"),
	},
	{
		Name:        "wp_media_list",
		Description: "List media library items, with optional pagination and type filters.",
		InputSchema: schema(listProps(map[string]any{
			"media_type": enumProp("Filter by media type", mediaTypeValues),
		})),
	},
	{
		Name:        "wp_media_get",
		Description: "Fetch one media item by id, including source URLs and sizes.",
		InputSchema: schema(map[string]any{"site": siteProp(), "id": idProp("media item")}, "id"),
	},
	{
		Name:        "wp_media_delete",
		Description: "Delete a media item permanently. The media library has no trash, so this cannot be undone.",
		InputSchema: schema(map[string]any{"site": siteProp(), "id": idProp("media item")}, "id"),
	},
	{
		Name:        "wp_users_list",
		Description: "List users visible to the authenticated account.",
		InputSchema: schema(listProps(nil)),
	},
	{
		Name:        "wp_users_get",
		Description: "Fetch one user by id.",
		InputSchema: schema(map[string]any{"site": siteProp(), "id": idProp("user")}, "id"),
	},
	{
		Name:        "wp_users_me",
		Description: "Fetch the account the server is authenticated as, including its roles and capabilities.",
		InputSchema: schema(map[string]any{"site": siteProp()}),
	},
	{
		Name:        "wp_comments_list",
		Description: "List comments, optionally scoped to one post or filtered by status.",
		InputSchema: schema(listProps(map[string]any{
			"post":   prop("integer", "Only comments on this post id"),
			"status": enumProp("Filter by comment status", commentStatusValues),
		})),
	},
	{
		Name:        "wp_comments_get",
		Description: "Fetch one comment by id.",
		InputSchema: schema(map[string]any{"site": siteProp(), "id": idProp("comment")}, "id"),
	},
	{
		Name:        "wp_comments_create",
		Description: "Create a comment on a post.",
		InputSchema: schema(map[string]any{
			"site":         siteProp(),
			"post":         prop("integer", "The post id to comment on"),
			"content":      prop("string", "Comment text"),
			"author_name":  prop("string", "Display name for an unauthenticated author"),
			"author_email": prop("string", "Email for an unauthenticated author"),
		}, "post", "content"),
	},
	{
		Name:        "wp_comments_approve",
		Description: "Approve a held comment so it becomes publicly visible.",
		InputSchema: schema(map[string]any{"site": siteProp(), "id": idProp("comment")}, "id"),
	},
	{
		Name:        "wp_comments_spam",
		Description: "Mark a comment as spam.",
		InputSchema: schema(map[string]any{"site": siteProp(), "id": idProp("comment")}, "id"),
	},
	{
		Name:        "wp_categories_list",
		Description: "List post categories.",
		InputSchema: schema(listProps(nil)),
	},
	{
		Name:        "wp_tags_list",
		Description: "List post tags.",
		InputSchema: schema(listProps(nil)),
	},
	{
		Name:        "wp_settings_get",
		Description: "Read the site settings (title, tagline, timezone, discussion defaults, and so on). Requires an administrator account.",
		InputSchema: schema(map[string]any{"site": siteProp()}),
	},
	{
		Name:        "wp_settings_update",
		Description: "Update site settings. Pass the setting fields to change, for example title or description. Requires an administrator account.",
		InputSchema: schema(map[string]any{
			"site":        siteProp(),
			"title":       prop("string", "Site title"),
			"description": prop("string", "Site tagline"),
		}),
	},
	{
		Name:        "wp_search",
		Description: "Search across the site's content.",
		InputSchema: schema(map[string]any{
			"site":     siteProp(),
			"term":     prop("string", "Search term"),
			"subtype":  enumProp("Restrict results to a content type", searchSubtypeValues),
			"page":     prop("integer", "Result page, starting at 1"),
			"per_page": prop("integer", "Results per page, 1 to 100"),
		}, "term"),
	},
	{
		Name:        "wp_auth_status",
		Description: "Show the authentication session state for a site without making any network calls.",
		InputSchema: schema(map[string]any{"site": siteProp()}),
	},
	{
		Name:        "wp_auth_test",
		Description: "Probe a site: is its REST API reachable, and are the configured credentials accepted.",
		InputSchema: schema(map[string]any{"site": siteProp()}),
	},
	{
		Name:        "wp_cache_stats",
		Description: "Show response cache counters: hits, misses, hit rate, entries, and evictions.",
		InputSchema: schema(map[string]any{}),
	},
	{
		Name:        "wp_cache_clear",
		Description: "Clear cached responses. With a pattern, removes entries whose request matches it across all sites; otherwise clears one site's entries.",
		InputSchema: schema(map[string]any{
			"site":    siteProp(),
			"pattern": prop("string", "Substring matched against cached request descriptors"),
		}),
	},
	{
		Name:        "wp_cache_warm",
		Description: "Pre-fetch GET endpoints so their responses are cached before real traffic needs them.",
		InputSchema: schema(map[string]any{
			"site": siteProp(),
			"endpoints": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "REST routes relative to wp-json, for example wp/v2/posts. Defaults to the core content routes.",
			},
		}),
	},
	{
		Name:        "wp_cache_info",
		Description: "Show the cache configuration: layer sizes, TTL sweep interval, and the disk layer if enabled.",
		InputSchema: schema(map[string]any{}),
	},
	{
		Name:        "wp_stats_get",
		Description: "Show request counters for a site: totals, failures, and average response time.",
		InputSchema: schema(map[string]any{"site": siteProp()}),
	},
	{
		Name:        "wp_stats_reset",
		Description: "Zero the request counters for a site.",
		InputSchema: schema(map[string]any{"site": siteProp()}),
	},
}
