package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/jolokia"
)

// fakeReader records which read the Get dispatch selected.
type fakeReader struct {
	calls     []string
	component jolokia.ComponentType
	name      string
	attrs     []string
}

func (f *fakeReader) record(call string) (json.RawMessage, error) {
	f.calls = append(f.calls, call)
	return json.RawMessage(`{}`), nil
}

func (f *fakeReader) GetBrokers(ctx context.Context) (json.RawMessage, error) {
	return f.record("GetBrokers")
}

func (f *fakeReader) GetBrokerComponents(ctx context.Context) (json.RawMessage, error) {
	return f.record("GetBrokerComponents")
}

func (f *fakeReader) GetComponents(ctx context.Context, component jolokia.ComponentType) (json.RawMessage, error) {
	f.component = component
	return f.record("GetComponents")
}

func (f *fakeReader) ReadBrokerAttributes(ctx context.Context, attrs []string) (json.RawMessage, error) {
	f.attrs = attrs
	return f.record("ReadBrokerAttributes")
}

func (f *fakeReader) ReadComponentAttributes(ctx context.Context, component jolokia.ComponentType, name string, attrs []string) (json.RawMessage, error) {
	f.component, f.name, f.attrs = component, name, attrs
	return f.record("ReadComponentAttributes")
}

func (f *fakeReader) ListComponentOperations(ctx context.Context, component jolokia.ComponentType, name string) (json.RawMessage, error) {
	f.component, f.name = component, name
	f.calls = append(f.calls, "ListComponentOperations")
	return json.RawMessage(`{"browse":{"args":[]},"purge":{"args":[]}}`), nil
}

func newFakeContext() (*fakeReader, *CommandContext) {
	reader := &fakeReader{}
	return reader, &CommandContext{Name: "test", reader: reader}
}

func TestGetBrokerInfo(t *testing.T) {
	reader, cmdCtx := newFakeContext()
	require.NoError(t, cmdCtx.Get(context.Background(), getTarget{}, getOptions{}))
	require.Equal(t, []string{"GetBrokers"}, reader.calls)
}

func TestGetAllComponents(t *testing.T) {
	reader, cmdCtx := newFakeContext()
	require.NoError(t, cmdCtx.Get(context.Background(), getTarget{Component: "*"}, getOptions{}))
	require.Equal(t, []string{"GetBrokerComponents"}, reader.calls)

	err := cmdCtx.Get(context.Background(), getTarget{Component: "*"}, getOptions{attributes: []string{"Version"}})
	require.Error(t, err)
}

func TestGetComponentsByType(t *testing.T) {
	reader, cmdCtx := newFakeContext()
	require.NoError(t, cmdCtx.Get(context.Background(), getTarget{Component: "queues"}, getOptions{}))
	require.Equal(t, []string{"GetComponents"}, reader.calls)
	require.Equal(t, jolokia.ComponentQueue, reader.component)

	// attributes need a named component
	err := cmdCtx.Get(context.Background(), getTarget{Component: "queues"}, getOptions{attributes: []string{"MessageCount"}})
	require.Error(t, err)
}

func TestGetComponentAttributes(t *testing.T) {
	reader, cmdCtx := newFakeContext()
	opts := getOptions{attributes: []string{"MessageCount"}}
	require.NoError(t, cmdCtx.Get(context.Background(), getTarget{Component: "queue", Name: "DLQ"}, opts))
	require.Equal(t, []string{"ReadComponentAttributes"}, reader.calls)
	require.Equal(t, jolokia.ComponentQueue, reader.component)
	require.Equal(t, "DLQ", reader.name)
	require.Equal(t, []string{"MessageCount"}, reader.attrs)

	// "*" selects all attributes
	reader.attrs = []string{"sentinel"}
	require.NoError(t, cmdCtx.Get(context.Background(), getTarget{Component: "queue", Name: "DLQ"}, getOptions{attributes: []string{"*"}}))
	require.Nil(t, reader.attrs)
}

func TestGetBrokerAttributes(t *testing.T) {
	reader, cmdCtx := newFakeContext()
	opts := getOptions{attributes: []string{"Version"}}
	require.NoError(t, cmdCtx.Get(context.Background(), getTarget{Component: "broker"}, opts))
	require.Equal(t, []string{"ReadBrokerAttributes"}, reader.calls)
	require.Equal(t, []string{"Version"}, reader.attrs)
}

func TestGetOperations(t *testing.T) {
	reader, cmdCtx := newFakeContext()
	opts := getOptions{operations: []string{"browse"}}
	require.NoError(t, cmdCtx.Get(context.Background(), getTarget{Component: "queue", Name: "DLQ"}, opts))
	require.Equal(t, []string{"ListComponentOperations"}, reader.calls)
	require.Equal(t, jolokia.ComponentQueue, reader.component)
	require.Equal(t, "DLQ", reader.name)
}

func TestGetFlagSet(t *testing.T) {
	var opts getOptions
	fs := newGetFlagSet(&opts)
	require.NoError(t, fs.Parse([]string{"-a", "MessageCount,Address", "queue/DLQ"}))
	require.Equal(t, []string{"MessageCount", "Address"}, opts.attributes)
	require.Equal(t, 1, fs.NArg())
	require.Equal(t, "queue/DLQ", fs.Arg(0))
}
