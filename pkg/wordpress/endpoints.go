package wordpress

import (
	"fmt"
	"strings"
)

// ResourceType categorizes a REST route for cache scoping. Cache
// invalidation after a write removes every cached entry sharing the
// written route's resource type within the same site.
type ResourceType string

const (
	ResourcePosts      ResourceType = "posts"
	ResourcePages      ResourceType = "pages"
	ResourceMedia      ResourceType = "media"
	ResourceUsers      ResourceType = "users"
	ResourceComments   ResourceType = "comments"
	ResourceTaxonomies ResourceType = "taxonomies"
	ResourceSettings   ResourceType = "settings"
	ResourceSearch     ResourceType = "search"
	ResourceOther      ResourceType = "other"
)

// TTLClass buckets resource types by how often their content changes.
// The client maps each class to a configured cache TTL.
type TTLClass int

const (
	// TTLDynamic covers content that changes with normal editorial
	// activity: posts, pages, comments, search results.
	TTLDynamic TTLClass = iota

	// TTLSemiStatic covers content that changes occasionally: users,
	// media.
	TTLSemiStatic

	// TTLStatic covers content that rarely changes: settings,
	// taxonomies.
	TTLStatic
)

// Class returns the TTL class for the resource type.
func (r ResourceType) Class() TTLClass {
	switch r {
	case ResourceSettings, ResourceTaxonomies:
		return TTLStatic
	case ResourceUsers, ResourceMedia:
		return TTLSemiStatic
	default:
		return TTLDynamic
	}
}

// ResourceTypeFor maps a REST route to its resource type. Routes are
// relative to the wp-json root, e.g. "wp/v2/posts/42". Unrecognized
// routes map to ResourceOther.
func ResourceTypeFor(endpoint string) ResourceType {
	path := strings.TrimPrefix(strings.TrimSpace(endpoint), "/")
	segments := strings.Split(path, "/")
	if len(segments) < 3 || segments[0] != "wp" {
		return ResourceOther
	}

	switch segments[2] {
	case "posts":
		return ResourcePosts
	case "pages":
		return ResourcePages
	case "media":
		return ResourceMedia
	case "users":
		return ResourceUsers
	case "comments":
		return ResourceComments
	case "categories", "tags":
		return ResourceTaxonomies
	case "settings":
		return ResourceSettings
	case "search":
		return ResourceSearch
	default:
		return ResourceOther
	}
}

// Endpoint builders return REST routes relative to the site's wp-json
// root, with no leading slash. The client joins them onto the site's
// base URL.

// Posts returns the posts collection route.
func Posts() string { return "wp/v2/posts" }

// Post returns the route for a single post.
func Post(id int) string { return fmt.Sprintf("wp/v2/posts/%d", id) }

// Pages returns the pages collection route.
func Pages() string { return "wp/v2/pages" }

// Page returns the route for a single page.
func Page(id int) string { return fmt.Sprintf("wp/v2/pages/%d", id) }

// Media returns the media collection route.
func Media() string { return "wp/v2/media" }

// MediaItem returns the route for a single media item.
func MediaItem(id int) string { return fmt.Sprintf("wp/v2/media/%d", id) }

// Users returns the users collection route.
func Users() string { return "wp/v2/users" }

// User returns the route for a single user.
func User(id int) string { return fmt.Sprintf("wp/v2/users/%d", id) }

// Me returns the route for the authenticated user. It doubles as the
// credential probe during authentication.
func Me() string { return "wp/v2/users/me" }

// Comments returns the comments collection route.
func Comments() string { return "wp/v2/comments" }

// Comment returns the route for a single comment.
func Comment(id int) string { return fmt.Sprintf("wp/v2/comments/%d", id) }

// Categories returns the categories collection route.
func Categories() string { return "wp/v2/categories" }

// Category returns the route for a single category.
func Category(id int) string { return fmt.Sprintf("wp/v2/categories/%d", id) }

// Tags returns the tags collection route.
func Tags() string { return "wp/v2/tags" }

// Tag returns the route for a single tag.
func Tag(id int) string { return fmt.Sprintf("wp/v2/tags/%d", id) }

// Settings returns the site settings route.
func Settings() string { return "wp/v2/settings" }

// Search returns the site-wide search route.
func Search() string { return "wp/v2/search" }
