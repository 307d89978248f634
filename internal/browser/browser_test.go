package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNavigationErrorMessageAndUnwrap(t *testing.T) {
	t.Parallel()

	err := &NavigationError{Address: "https://x", StatusCode: 404}
	require.Equal(t, "navigate https://x: status 404", err.Error())
	require.Nil(t, errors.Unwrap(err))

	wrapped := &NavigationError{Address: "https://x", Err: context.DeadlineExceeded}
	require.ErrorIs(t, wrapped, context.DeadlineExceeded)
	require.Contains(t, wrapped.Error(), "deadline exceeded")

	var target *NavigationError
	require.ErrorAs(t, errors.Join(errors.New("outer"), wrapped), &target)
	require.Equal(t, "https://x", target.Address)
}
