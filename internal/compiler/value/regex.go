package value

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Regex is the compiled-pattern value tag. Flags are restricted to
// {g,i,m,s}; patterns are always Unicode-aware, since Go's regexp/RE2
// engine operates over the input's UTF-8 rune sequence.
type Regex struct {
	Source string
	Flags  string
	re     *regexp.Regexp
}

// Global reports whether the regex carries the "g" flag (replace all
// occurrences, rather than just the first).
func (r *Regex) Global() bool {
	return strings.ContainsRune(r.Flags, 'g')
}

// Compiled returns the underlying compiled pattern.
func (r *Regex) Compiled() *regexp.Regexp {
	return r.re
}

var (
	regexCacheMu sync.Mutex
	regexCache   = map[string]*regexp.Regexp{}
)

// CompileRegex builds a Regex value from a pattern and flag string,
// rejecting any flag outside {g,i,m,s}. Compiled patterns are cached keyed
// by (source, flags); the cache is never observable in evaluation order (a
// cache miss just compiles once more).
func CompileRegex(pattern, flags string) (*Regex, error) {
	for _, f := range flags {
		switch f {
		case 'g', 'i', 'm', 's':
		default:
			return nil, fmt.Errorf("invalid regex flag %q", string(f))
		}
	}

	key := flags + "\x00" + pattern
	regexCacheMu.Lock()
	compiled, ok := regexCache[key]
	regexCacheMu.Unlock()
	if !ok {
		goPattern := translateFlags(flags) + pattern
		var err error
		compiled, err = regexp.Compile(goPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
		}
		regexCacheMu.Lock()
		regexCache[key] = compiled
		regexCacheMu.Unlock()
	}

	return &Regex{Source: pattern, Flags: normalizeFlags(flags), re: compiled}, nil
}

// translateFlags maps MistQL's {i,m,s} flags onto Go regexp inline flag
// groups; "g" has no compile-time effect, it only changes how the replace
// call site iterates over matches.
func translateFlags(flags string) string {
	var inline []byte
	for _, f := range flags {
		switch f {
		case 'i':
			inline = append(inline, 'i')
		case 'm':
			inline = append(inline, 'm')
		case 's':
			inline = append(inline, 's')
		}
	}
	if len(inline) == 0 {
		return ""
	}
	return "(?" + string(inline) + ")"
}

func normalizeFlags(flags string) string {
	seen := map[rune]bool{}
	for _, f := range flags {
		seen[f] = true
	}
	var out []byte
	for _, f := range []rune{'g', 'i', 'm', 's'} {
		if seen[f] {
			out = append(out, byte(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return string(out)
}
