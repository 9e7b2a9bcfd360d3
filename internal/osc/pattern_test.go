package osc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func Test_match_literal(t *testing.T) {
	assert.True(t, Match("/foo/bar", "/foo/bar"))
	assert.False(t, Match("/foo/bar", "/foo/baz"))
}

func Test_match_wildcards(t *testing.T) {
	assert.True(t, Match("/foo/*", "/foo/bar"))
	assert.False(t, Match("/foo/*", "/foo/bar/baz"), "'*' must not cross '/'")
	assert.True(t, Match("/foo/?ar", "/foo/bar"))
	assert.True(t, Match("/foo/[bc]ar", "/foo/bar"))
	assert.True(t, Match("/foo/[bc]ar", "/foo/car"))
	assert.False(t, Match("/foo/[bc]ar", "/foo/dar"))
	assert.True(t, Match("/foo/{bar,baz}", "/foo/baz"))
	assert.False(t, Match("/foo/{bar,baz}", "/foo/qux"))
}

func Test_match_malformed_pattern_never_errors(t *testing.T) {
	assert.False(t, Match("/foo/[unclosed", "/foo/x"))
	assert.False(t, Match("/foo/{unclosed", "/foo/x"))
	assert.NotPanics(t, func() { Match("/foo/[", "/foo/x") })
}

func Test_match_determinism_property(t *testing.T) {
	patterns := []string{"/foo/*", "/foo/bar", "/foo/[bc]ar", "/foo/{bar,baz}", "/a/?/c"}
	paths := []string{"/foo/bar", "/foo/baz", "/foo/car", "/foo/bar/baz", "/a/b/c", "/a/bb/c"}

	rapid.Check(t, func(rt *rapid.T) {
		p := patterns[rapid.IntRange(0, len(patterns)-1).Draw(rt, "pattern")]
		s := paths[rapid.IntRange(0, len(paths)-1).Draw(rt, "path")]
		first := Match(p, s)
		for i := 0; i < 5; i++ {
			assert.Equal(rt, first, Match(p, s), "Match must be a pure, deterministic function of its inputs")
		}
	})
}
