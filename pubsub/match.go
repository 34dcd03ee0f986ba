package pubsub

import (
	"regexp"
	"strings"
	"sync"
)

const (
	segmentExpr     = `([^.]+)`
	multiSegExpr    = `([^.]+\.?)+`
	patternCacheCap = 1024
)

var patterns = newPatternCache(patternCacheCap)

// Match reports whether the routing key actual satisfies pattern.
//
// Identical strings always match. Otherwise '*' in pattern matches one segment
// (one or more characters other than '.'), '#' matches one or more segments,
// and every other character matches itself. The whole of actual must be
// consumed. Matching is case-sensitive.
func Match(actual, pattern string) bool {
	if actual == pattern {
		return true
	}
	return patterns.get(pattern).MatchString(actual)
}

// compilePattern turns a routing pattern into an anchored expression.
// Literal runs are quoted so '.' and other metacharacters match themselves.
func compilePattern(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteByte('^')

	start := 0
	for i := 0; i < len(pattern); i++ {
		var wild string
		switch pattern[i] {
		case '*':
			wild = segmentExpr
		case '#':
			wild = multiSegExpr
		default:
			continue
		}
		b.WriteString(regexp.QuoteMeta(pattern[start:i]))
		b.WriteString(wild)
		start = i + 1
	}
	b.WriteString(regexp.QuoteMeta(pattern[start:]))
	b.WriteByte('$')

	return regexp.MustCompile(b.String())
}

// patternCache memoises compiled patterns. It is safe for concurrent use and
// is emptied wholesale once it reaches its limit.
type patternCache struct {
	mu    sync.RWMutex
	data  map[string]*regexp.Regexp
	limit int
}

func newPatternCache(limit int) *patternCache {
	return &patternCache{
		data:  make(map[string]*regexp.Regexp),
		limit: limit,
	}
}

func (c *patternCache) get(pattern string) *regexp.Regexp {
	c.mu.RLock()
	re, ok := c.data[pattern]
	c.mu.RUnlock()
	if ok {
		return re
	}

	re = compilePattern(pattern)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.data) >= c.limit {
		clear(c.data)
	}
	c.data[pattern] = re

	return re
}

func (c *patternCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
