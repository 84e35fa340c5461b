package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedTool(name string) Tool {
	return NewFunctionTool(name, "Test tool",
		func(_ context.Context, _ struct{}) (Result, error) {
			return Result{Content: name}, nil
		})
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry(namedTool("alpha"))
	r.Register(namedTool("beta"))

	got, ok := r.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", got.Name())

	_, ok = r.Get("gamma")
	assert.False(t, ok)

	assert.Equal(t, 2, r.Len())
}

func TestRegistry_RegisterOverwritesByName(t *testing.T) {
	r := NewRegistry(namedTool("alpha"))
	replacement := NewFunctionTool("alpha", "Replacement",
		func(_ context.Context, _ struct{}) (Result, error) {
			return Result{Content: "v2"}, nil
		})
	r.Register(replacement)

	got, ok := r.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "Replacement", got.Description())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ListSortedByName(t *testing.T) {
	r := NewRegistry(namedTool("zeta"), namedTool("alpha"), namedTool("mid"))

	var names []string
	for _, tl := range r.List() {
		names = append(names, tl.Name())
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}
