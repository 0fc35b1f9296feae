package ruliwebengine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kimjiho/dcrawl/pkg/dcerrors"
)

func TestEngine_StartCrawling_ReturnsNotImplemented(t *testing.T) {
	e := New(Options{ScenarioID: "s1"})
	err := e.StartCrawling(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, dcerrors.ErrNotImplemented))
}
