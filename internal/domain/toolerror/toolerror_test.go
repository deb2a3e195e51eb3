package toolerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("Untyped error becomes internal", func(t *testing.T) {
		err := Normalize(errors.New("boom"))
		assert.Equal(t, KindInternal, err.Kind)
		assert.Equal(t, "boom", err.Error())
	})

	t.Run("Typed error passes through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("convert: %w", InvalidParams("unsupported currency: %s", "XYZ"))
		err := Normalize(wrapped)
		assert.Equal(t, KindInvalidParams, err.Kind)
		assert.Equal(t, "unsupported currency: XYZ", err.Message)
	})

	t.Run("Nil stays nil", func(t *testing.T) {
		assert.Nil(t, Normalize(nil))
		assert.Nil(t, Internal(nil))
	})
}

func TestInternalPreservesCause(t *testing.T) {
	cause := errors.New("both sources failed")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, KindInternal))
	assert.False(t, Is(err, KindInvalidParams))
}

func TestMethodNotFound(t *testing.T) {
	err := MethodNotFound("get_weather")
	assert.Equal(t, KindMethodNotFound, KindOf(err))
	assert.Contains(t, err.Error(), "get_weather")
}
