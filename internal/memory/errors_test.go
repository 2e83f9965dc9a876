package memory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "type_mismatch", KindTypeMismatch.String())
	assert.Equal(t, "store", KindStore.String())
	assert.Equal(t, "embedding", KindEmbedding.String())
	assert.Equal(t, "concurrency", KindConcurrency.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestErrorUnwrapAndAs(t *testing.T) {
	inner := errors.New("disk full")
	err := storeErr("insert row", inner)

	assert.ErrorIs(t, err, inner)

	var typed *Error
	assert.True(t, errors.As(err, &typed))
	assert.Equal(t, KindStore, typed.Kind)
}

func TestValidationErrFormatsMessage(t *testing.T) {
	err := validationErr("unknown category %q", "bogus")
	assert.Contains(t, err.Error(), "bogus")
	assert.Contains(t, err.Error(), fmt.Sprint(KindValidation))
}
