// Package classify maps free-form request text to domain tags using the
// keyword tables declared on registered handlers. Matching is purely
// lexical and case-insensitive, so classification is deterministic.
package classify

import (
	"sort"
	"strings"

	"github.com/jharlow/dispatch/internal/registry"
)

// HandlerMatch records how strongly one handler matched the request text.
type HandlerMatch struct {
	// Name is the handler name.
	Name string
	// Keywords are the distinct keywords that matched, in declaration order.
	Keywords []string
}

// Specificity is the number of distinct matched keywords. A handler with
// a higher specificity is a more specific match for the same domain.
func (m HandlerMatch) Specificity() int {
	return len(m.Keywords)
}

// Match is one matched domain tag with the handlers that matched for it,
// ordered by specificity (highest first), then by name for determinism.
type Match struct {
	// Domain is the matched domain tag.
	Domain string
	// Handlers are the matching handlers serving this domain.
	Handlers []HandlerMatch
}

// Classification is the ordered set of unique domain tags matched against
// a request. Domain order follows the registry's first-declaration order,
// so the same text and registry always classify identically.
type Classification struct {
	// Matches holds one entry per matched domain.
	Matches []Match
}

// Empty returns true if no domain matched.
func (c Classification) Empty() bool {
	return len(c.Matches) == 0
}

// Domains returns the matched domain tags in order.
func (c Classification) Domains() []string {
	tags := make([]string, 0, len(c.Matches))
	for _, m := range c.Matches {
		tags = append(tags, m.Domain)
	}
	return tags
}

// Classifier matches request text against handler keyword sets.
// It is pure and side-effect free; safe for concurrent use.
type Classifier struct {
	reg *registry.Registry
}

// New creates a Classifier over the given registry.
func New(reg *registry.Registry) *Classifier {
	return &Classifier{reg: reg}
}

// Classify matches requestText against every handler's keyword set and
// returns the matched domains. A request may match multiple domains. If
// nothing matches, the Classification is empty: the router reports an
// unroutable request rather than guessing.
func (c *Classifier) Classify(requestText string) Classification {
	lower := strings.ToLower(requestText)

	// Per-handler matches, computed once.
	matched := make(map[string]HandlerMatch)
	for _, d := range c.reg.Descriptors() {
		keywords := matchedKeywords(lower, d.Keywords)
		if len(keywords) > 0 {
			matched[d.Name] = HandlerMatch{Name: d.Name, Keywords: keywords}
		}
	}

	var cls Classification
	for _, tag := range c.reg.Domains() {
		var handlers []HandlerMatch
		for _, d := range c.reg.ForDomain(tag) {
			if m, ok := matched[d.Name]; ok {
				handlers = append(handlers, m)
			}
		}
		if len(handlers) == 0 {
			continue
		}

		// Most specific match first; name breaks ties deterministically.
		sort.SliceStable(handlers, func(i, j int) bool {
			if handlers[i].Specificity() != handlers[j].Specificity() {
				return handlers[i].Specificity() > handlers[j].Specificity()
			}
			return handlers[i].Name < handlers[j].Name
		})

		cls.Matches = append(cls.Matches, Match{Domain: tag, Handlers: handlers})
	}

	return cls
}

// matchedKeywords returns the distinct keywords contained in the
// lowercased text, in declaration order.
func matchedKeywords(lowerText string, keywords []string) []string {
	var result []string
	seen := make(map[string]bool)
	for _, kw := range keywords {
		lkw := strings.ToLower(kw)
		if seen[lkw] {
			continue
		}
		if strings.Contains(lowerText, lkw) {
			seen[lkw] = true
			result = append(result, kw)
		}
	}
	return result
}
