package dcwalk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kimjiho/dcrawl/pkg/dcmodel"
)

func TestInRunSet_AddIfNew(t *testing.T) {
	s := NewInRunSet()
	require.True(t, s.AddIfNew("DC&G&pro&1"))
	require.False(t, s.AddIfNew("DC&G&pro&1"))
	require.True(t, s.AddIfNew(dcmodel.PlatformPostID("DC&G&pro&2")))
}
