package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFTSQuery(t *testing.T) {
	assert.Equal(t, `"hello" "world"`, BuildFTSQuery("hello world"))
	assert.Equal(t, "", BuildFTSQuery(""))
	assert.Equal(t, "", BuildFTSQuery("   "))
}

func TestBuildFTSQueryStripsQuotes(t *testing.T) {
	got := BuildFTSQuery(`say "hi" there`)
	assert.Equal(t, `"say" "hi" "there"`, got)
}

func TestBuildFTSQueryCollapsesWhitespace(t *testing.T) {
	got := BuildFTSQuery("  foo   bar  ")
	assert.Equal(t, `"foo" "bar"`, got)
}
