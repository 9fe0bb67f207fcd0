package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gobwas/glob"

	"github.com/redmonkez12/go-blog-api/internal/logging"
)

// Access is the outcome of evaluating a route against the policy
type Access int

const (
	RequireAuthenticated Access = iota
	PermitAll
)

func (a Access) String() string {
	if a == PermitAll {
		return "permit_all"
	}
	return "require_authenticated"
}

// Rule grants Access to requests whose method equals Method (any method when
// empty) and whose path matches one of Patterns. In patterns "*" matches
// within one path segment and "**" across segments.
type Rule struct {
	Method   string
	Patterns []string
	Access   Access
}

type compiledRule struct {
	method   string
	patterns []glob.Glob
	access   Access
}

// Policy is an ordered rule table; the first matching rule wins and
// unmatched requests require authentication
type Policy struct {
	rules []compiledRule
}

func NewPolicy(rules []Rule) (*Policy, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, rule := range rules {
		if len(rule.Patterns) == 0 {
			return nil, fmt.Errorf("rule %d has no patterns", i)
		}

		c := compiledRule{method: strings.ToUpper(rule.Method), access: rule.Access}
		for _, pattern := range rule.Patterns {
			g, err := glob.Compile(pattern, '/')
			if err != nil {
				return nil, fmt.Errorf("rule %d: invalid pattern %q: %w", i, pattern, err)
			}
			c.patterns = append(c.patterns, g)
		}
		compiled = append(compiled, c)
	}

	return &Policy{rules: compiled}, nil
}

// Evaluate returns the access granted to method and path
func (p *Policy) Evaluate(method, path string) Access {
	for _, rule := range p.rules {
		if rule.method != "" && rule.method != method {
			continue
		}
		for _, pattern := range rule.patterns {
			if pattern.Match(path) {
				return rule.access
			}
		}
	}
	return RequireAuthenticated
}

// Enforce rejects requests to protected routes that carry no identity.
// It must run after Middleware.Authenticate.
func (p *Policy) Enforce(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p.Evaluate(r.Method, r.URL.Path) == RequireAuthenticated {
			if _, ok := IdentityFromContext(r.Context()); !ok {
				logging.GetLoggerFromContext(r.Context()).Warn("rejected anonymous request to protected route")
				respondUnauthenticated(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// DefaultRules is the blog's route table rooted at basePath
func DefaultRules(basePath string) []Rule {
	under := func(resource string) []string {
		return []string{basePath + resource, basePath + resource + "/**"}
	}

	return []Rule{
		{Method: http.MethodOptions, Patterns: []string{"**"}, Access: PermitAll},
		{Method: http.MethodGet, Patterns: []string{"/health", "/swagger/**"}, Access: PermitAll},
		{Method: http.MethodPost, Patterns: []string{basePath + "/auth/login"}, Access: PermitAll},
		{Method: http.MethodPost, Patterns: []string{basePath + "/auth/signup"}, Access: PermitAll},
		{Method: http.MethodGet, Patterns: []string{basePath + "/posts/drafts"}, Access: RequireAuthenticated},
		{Method: http.MethodGet, Patterns: under("/posts"), Access: PermitAll},
		{Method: http.MethodGet, Patterns: under("/categories"), Access: PermitAll},
		{Method: http.MethodGet, Patterns: under("/tags"), Access: PermitAll},
	}
}
