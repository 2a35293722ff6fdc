package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunc_Parse(t *testing.T) {
	var got Options
	p := Func(func(_ context.Context, source string, opts Options) error {
		got = opts
		if source == "bad" {
			return errors.New("boom")
		}
		return nil
	})

	opts := Options{SourceType: SourceTypeModule, Features: []string{"a"}}
	require.NoError(t, p.Parse(context.Background(), "good", opts))
	assert.Equal(t, opts, got)
	assert.Error(t, p.Parse(context.Background(), "bad", opts))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "tree-sitter/javascript", Describe(NewTreeSitter()))
	assert.Equal(t, "parser.Func", Describe(Func(nil)))
}
