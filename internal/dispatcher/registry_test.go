package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscmex/engine/internal/osc"
	"github.com/oscmex/engine/internal/oscerr"
)

func Test_add_method_rejects_unclosed_bracket(t *testing.T) {
	r := NewRegistry()
	_, err := r.AddMethod("/foo/[bar", "", func(osc.Message) {})
	require.Error(t, err)
	oe, ok := err.(*oscerr.Error)
	require.True(t, ok)
	assert.Equal(t, oscerr.PatternError, oe.Kind)
}

func Test_add_method_rejects_pattern_without_leading_slash(t *testing.T) {
	r := NewRegistry()
	_, err := r.AddMethod("foo", "", func(osc.Message) {})
	assert.Error(t, err)
}

func Test_method_ids_never_reused(t *testing.T) {
	r := NewRegistry()
	id1, err := r.AddMethod("/a", "", func(osc.Message) {})
	require.NoError(t, err)
	r.RemoveMethod(id1)
	id2, err := r.AddMethod("/b", "", func(osc.Message) {})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}
