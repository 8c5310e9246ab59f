package llm

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsOverloaded(t *testing.T) {
	overloaded := statusError("anthropic", StatusOverloaded, "overloaded_error", "Overloaded")
	assert.True(t, IsOverloaded(overloaded))
	assert.True(t, IsOverloaded(errors.Wrap(overloaded, "anthropic completion")))
	assert.True(t, IsOverloaded(fmt.Errorf("outer: %w", overloaded)))
	assert.True(t, IsOverloaded(&StatusError{Provider: "x", StatusCode: StatusOverloaded}))

	assert.False(t, IsOverloaded(nil))
	assert.False(t, IsOverloaded(statusError("anthropic", 500, "", "boom")))
	assert.False(t, IsOverloaded(errors.New("overloaded")))
}

func TestStatusError_Message(t *testing.T) {
	err := statusError("openai", 429, "rate_limit_error", "slow down")
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "slow down")

	var se *StatusError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "openai", se.Provider)
}
