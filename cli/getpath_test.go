package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/jolokia"
)

func knows(names ...string) func(string) bool {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[name]
		return ok
	}
}

func TestParseGetPath(t *testing.T) {
	cases := []struct {
		name string
		path string
		want getTarget
	}{
		{"bare type", "queues", getTarget{Component: "queues"}},
		{"wildcard", "*", getTarget{Component: "*"}},
		{"type and name", "queue/DLQ", getTarget{Component: "queue", Name: "DLQ"}},
		{"full path", "broker0/queue/DLQ", getTarget{Endpoint: "broker0", Component: "queue", Name: "DLQ"}},
		{"remote endpoint", "@broker0/queues", getTarget{Endpoint: "broker0", Remote: true, Component: "queues"}},
		{"remote full", "@broker0/queue/DLQ", getTarget{Endpoint: "broker0", Remote: true, Component: "queue", Name: "DLQ"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseGetPath(tc.path, knows("broker0"))
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseGetPathTwoElementAmbiguity(t *testing.T) {
	// the first element is an endpoint only when the caller knows it
	got, err := parseGetPath("broker0/queues", knows("broker0"))
	require.NoError(t, err)
	require.Equal(t, getTarget{Endpoint: "broker0", Component: "queues"}, got)

	got, err = parseGetPath("queue/DLQ", knows("broker0"))
	require.NoError(t, err)
	require.Equal(t, getTarget{Component: "queue", Name: "DLQ"}, got)

	// without endpoint knowledge the first element must be a type
	_, err = parseGetPath("broker0/queues", nil)
	require.Error(t, err)
}

func TestParseGetPathErrors(t *testing.T) {
	_, err := parseGetPath("a/b/c/d", nil)
	require.Error(t, err)

	_, err = parseGetPath("@", nil)
	require.Error(t, err)

	_, err = parseGetPath("@broker0", nil)
	require.Error(t, err)

	_, err = parseGetPath("topics", nil)
	require.Error(t, err)

	_, err = parseGetPath("bridges", nil)
	require.ErrorIs(t, err, ErrNotImplemented)
}

func TestResolveComponentType(t *testing.T) {
	for _, spelling := range []string{"queue", "queues"} {
		component, err := resolveComponentType(spelling)
		require.NoError(t, err)
		require.Equal(t, jolokia.ComponentQueue, component)
	}

	component, err := resolveComponentType("")
	require.NoError(t, err)
	require.Equal(t, jolokia.ComponentType(""), component)

	_, err = resolveComponentType("broadcast-group")
	require.ErrorIs(t, err, ErrNotImplemented)
}
