package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	agentcore "github.com/quorumlabs/peerpanel/src/agents/core"
)

func TestStringListRoundTrip(t *testing.T) {
	v, err := StringList{"a", "b"}.Value()
	require.NoError(t, err)
	require.Equal(t, `["a","b"]`, v)

	var out StringList
	require.NoError(t, out.Scan(v))
	require.Equal(t, StringList{"a", "b"}, out)
}

func TestNilListsStoreEmptyArrays(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	require.Equal(t, `[]`, v)

	v, err = PublicationList(nil).Value()
	require.NoError(t, err)
	require.Equal(t, `[]`, v)

	v, err = TraceList(nil).Value()
	require.NoError(t, err)
	require.Equal(t, `[]`, v)
}

func TestScanToleratesLegacyValues(t *testing.T) {
	var out StringList
	require.NoError(t, out.Scan(nil))
	require.Nil(t, out)

	require.NoError(t, out.Scan([]byte(`["x"]`)))
	require.Equal(t, StringList{"x"}, out)

	require.NoError(t, out.Scan(""))
	require.Error(t, out.Scan(42))
}

func TestPublicationAndTraceRoundTrip(t *testing.T) {
	pubs := PublicationList{{Title: "T1", Link: "https://example.org/1"}}
	v, err := pubs.Value()
	require.NoError(t, err)

	var outPubs PublicationList
	require.NoError(t, outPubs.Scan(v))
	require.Equal(t, pubs, outPubs)

	trace := TraceList{{Type: agentcore.StepThought, Content: "hm"}}
	v, err = trace.Value()
	require.NoError(t, err)

	var outTrace TraceList
	require.NoError(t, outTrace.Scan(v))
	require.Equal(t, trace, outTrace)
}
