// Package namefilter screens usernames and nicknames against reserved
// names and banned words before an account is created or renamed.
package namefilter

import (
	"strings"

	"github.com/towerspire/server/internal/config"
)

// Filter rejects names that collide with reserved names or contain a
// banned word. Matching is case-insensitive; reserved names match exactly,
// banned words match as substrings.
type Filter struct {
	enabled  bool
	reserved map[string]struct{}
	banned   []string
}

// New builds a filter from the auth config section. A disabled filter
// allows everything.
func New(cfg config.NameFilterConfig) *Filter {
	f := &Filter{
		enabled:  cfg.Enabled,
		reserved: make(map[string]struct{}, len(cfg.ReservedNames)),
	}
	for _, name := range cfg.ReservedNames {
		if name != "" {
			f.reserved[strings.ToLower(name)] = struct{}{}
		}
	}
	for _, word := range cfg.BannedWords {
		if word != "" {
			f.banned = append(f.banned, strings.ToLower(word))
		}
	}
	return f
}

// Allowed reports whether the name passes the filter.
func (f *Filter) Allowed(name string) bool {
	if !f.enabled {
		return true
	}

	lower := strings.ToLower(name)
	if _, ok := f.reserved[lower]; ok {
		return false
	}
	for _, word := range f.banned {
		if strings.Contains(lower, word) {
			return false
		}
	}
	return true
}

// Enabled reports whether the filter does any screening.
func (f *Filter) Enabled() bool {
	return f.enabled
}
