package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blogserver/internal/domain"
)

// Access classifies who may reach a route.
type Access int

const (
	// Public routes need no identity at all.
	Public Access = iota
	// AuthenticatedAny requires an identity but no particular role.
	AuthenticatedAny
	// RequireRoles requires an identity whose role is in the rule's set.
	RequireRoles
)

// Rule maps one method and path pattern to an access requirement. Patterns
// are segment-based: ":name" matches any single segment, a trailing "**"
// matches any remainder. Method "*" matches every method.
type Rule struct {
	Method  string
	Pattern string
	Access  Access
	Roles   []domain.Role
}

// Policy is a static route-authorization table. Rule order does not matter:
// the most specific matching pattern wins.
type Policy struct {
	rules []Rule
}

func NewPolicy(rules []Rule) *Policy {
	return &Policy{rules: rules}
}

// DefaultPolicy is the route table for the blog API, mirroring one rule per
// route family. Broad patterns (e.g. the comments catch-all) coexist with
// narrower ones; precedence resolves the overlap.
func DefaultPolicy() *Policy {
	admin := []domain.Role{domain.RoleAdmin}
	return NewPolicy([]Rule{
		{Method: "POST", Pattern: "/api/auth/login", Access: Public},
		{Method: "POST", Pattern: "/api/auth/register", Access: Public},
		{Method: "GET", Pattern: "/metrics", Access: Public},
		{Method: "GET", Pattern: "/api/health", Access: Public},

		{Method: "POST", Pattern: "/api/users/create-user", Access: RequireRoles, Roles: admin},
		{Method: "GET", Pattern: "/api/users/all-users", Access: RequireRoles, Roles: admin},
		{Method: "GET", Pattern: "/api/users/one-user", Access: RequireRoles, Roles: admin},
		{Method: "PUT", Pattern: "/api/users/update-user", Access: AuthenticatedAny},
		{Method: "DELETE", Pattern: "/api/users/delete-user/**", Access: RequireRoles, Roles: admin},

		{Method: "POST", Pattern: "/api/categories/add-category", Access: RequireRoles, Roles: admin},
		{Method: "PUT", Pattern: "/api/categories/update-category", Access: RequireRoles, Roles: admin},
		{Method: "DELETE", Pattern: "/api/categories/delete-category/**", Access: RequireRoles, Roles: admin},
		{Method: "GET", Pattern: "/api/categories/all-categories", Access: AuthenticatedAny},
		{Method: "GET", Pattern: "/api/categories/one-category", Access: AuthenticatedAny},

		{Method: "POST", Pattern: "/api/user/:userId/post/:postId/comments", Access: AuthenticatedAny},
		{Method: "*", Pattern: "/api/comments/**", Access: AuthenticatedAny},

		{Method: "POST", Pattern: "/api/user/:userId/category/:categoryId/posts", Access: AuthenticatedAny},
		{Method: "GET", Pattern: "/api/posts", Access: AuthenticatedAny},
		{Method: "GET", Pattern: "/api/posts/**", Access: AuthenticatedAny},
		{Method: "GET", Pattern: "/api/category/:categoryId/posts", Access: AuthenticatedAny},
		{Method: "GET", Pattern: "/api/user/:userId/posts", Access: AuthenticatedAny},
		{Method: "PUT", Pattern: "/api/posts/update-post", Access: AuthenticatedAny},
		{Method: "DELETE", Pattern: "/api/posts/delete-post/**", Access: AuthenticatedAny},
		{Method: "POST", Pattern: "/api/posts/image/upload/:postId", Access: AuthenticatedAny},
		{Method: "GET", Pattern: "/api/post/image/:imageName", Access: AuthenticatedAny},
	})
}

// Evaluate returns the access requirement for the request. Unmatched paths
// require an authenticated identity.
func (p *Policy) Evaluate(method, path string) Rule {
	segments := splitPath(path)

	best := Rule{Access: AuthenticatedAny}
	bestScore := -1
	for _, rule := range p.rules {
		if rule.Method != "*" && rule.Method != method {
			continue
		}
		score, ok := matchScore(rule.Pattern, segments)
		if !ok {
			continue
		}
		if score > bestScore {
			best = rule
			bestScore = score
		}
	}
	return best
}

// matchScore reports whether the pattern matches and how specific the match
// is. Literal segments weigh most, ":param" segments less, and a trailing
// "**" nothing, so /api/user/:id/comments beats /api/comments/** and any
// literal route beats a parameterized sibling.
func matchScore(pattern string, path []string) (int, bool) {
	parts := splitPath(pattern)

	wildcard := len(parts) > 0 && parts[len(parts)-1] == "**"
	if wildcard {
		parts = parts[:len(parts)-1]
		if len(path) < len(parts) {
			return 0, false
		}
	} else if len(path) != len(parts) {
		return 0, false
	}

	score := 0
	for i, part := range parts {
		switch {
		case strings.HasPrefix(part, ":"):
			score += 10
		case part == path[i]:
			score += 100
		default:
			return 0, false
		}
	}
	if !wildcard {
		score++
	}
	return score, true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// authorize enforces the policy table after the authentication gate. Missing
// identity where one is required is 401; an identity with the wrong role is
// 403. The two are deliberately distinct.
func (h *Handler) authorize(policy *Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule := policy.Evaluate(c.Request.Method, c.Request.URL.Path)
		if rule.Access == Public {
			c.Next()
			return
		}

		user, ok := currentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiResponse{
				Message: "authentication required",
				Success: false,
			})
			return
		}

		if rule.Access == RequireRoles {
			allowed := false
			for _, role := range rule.Roles {
				if user.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				c.AbortWithStatusJSON(http.StatusForbidden, apiResponse{
					Message: "insufficient role",
					Success: false,
				})
				return
			}
		}

		c.Next()
	}
}
