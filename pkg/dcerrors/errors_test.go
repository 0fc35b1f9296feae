package dcerrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "None"},
		{"not found", fmt.Errorf("fetching x: %w", ErrNotFound), CategoryNotFound},
		{"rate limited wrapped", fmt.Errorf("%w: status 429", ErrRateLimited), CategoryRateLimited},
		{"retries exhausted", fmt.Errorf("%w: %w", ErrRetriesExhausted, ErrHTTPServer), CategoryRetryExhaust},
		{"invalid url", ErrInvalidURL, CategoryInvalidURL},
		{"not implemented", ErrNotImplemented, CategoryNotImplemented},
		{"unknown", fmt.Errorf("some random failure"), CategoryUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Categorize(tc.err))
		})
	}
}
