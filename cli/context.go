package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/jolokia"
)

// brokerReader is the read surface a command context operates on. A
// *jolokia.Client satisfies it for local direct connections; RemoteReader
// satisfies it for endpoints proxied through the api server.
type brokerReader interface {
	GetBrokers(ctx context.Context) (json.RawMessage, error)
	GetBrokerComponents(ctx context.Context) (json.RawMessage, error)
	GetComponents(ctx context.Context, component jolokia.ComponentType) (json.RawMessage, error)
	ReadBrokerAttributes(ctx context.Context, attrs []string) (json.RawMessage, error)
	ReadComponentAttributes(ctx context.Context, component jolokia.ComponentType, name string, attrs []string) (json.RawMessage, error)
	ListComponentOperations(ctx context.Context, component jolokia.ComponentType, name string) (json.RawMessage, error)
}

var _ brokerReader = (*jolokia.Client)(nil)

// PrintResult writes a command result as indented JSON on stdout.
func PrintResult(result json.RawMessage) {
	var buf any
	if err := json.Unmarshal(result, &buf); err != nil {
		fmt.Println(string(result))
		return
	}
	out, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		fmt.Println(string(result))
		return
	}
	fmt.Println(string(out))
}

// PrintError writes a JSON error envelope on stderr.
func PrintError(message string, detail error) {
	envelope := map[string]string{"message": "Error: " + message}
	if detail != nil {
		envelope["detail"] = detail.Error()
	}
	out, _ := json.Marshal(envelope)
	fmt.Fprintln(os.Stderr, string(out))
}

// CommandContext executes commands against one endpoint, local or remote.
type CommandContext struct {
	// Name is the endpoint name shown in the prompt; remote names carry
	// the @ marker.
	Name string
	// URL is the endpoint location for display.
	URL string

	reader brokerReader
}

// NewLocalContext opens a direct connection to a broker bridge and
// validates the supplied credentials against it. No api server round trip
// occurs; the authenticated connection is the cached session.
func NewLocalContext(ctx context.Context, name, endpointURL, userName, password string) (*CommandContext, error) {
	client, err := jolokia.FromURL(name, endpointURL, userName, password)
	if err != nil {
		return nil, err
	}
	ok, err := client.ValidateUser(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[NewLocalContext] endpoint unreachable")
	}
	if !ok {
		return nil, errors.New("[NewLocalContext] invalid credential")
	}
	return &CommandContext{Name: name, URL: client.BaseURL(), reader: client}, nil
}

// NewRemoteContext wraps a server-side endpoint addressed through the api
// server.
func NewRemoteContext(access *ServerAccess, endpointName string) *CommandContext {
	return &CommandContext{
		Name:   "@" + endpointName,
		URL:    "@" + endpointName,
		reader: access.Remote(endpointName),
	}
}

// getOptions are the parsed flags of a get command.
type getOptions struct {
	attributes []string
	operations []string
}

// newGetFlagSet builds the flag set for get: -a attribute list, -o
// operation list; "*" selects all.
func newGetFlagSet(opts *getOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet("get", pflag.ContinueOnError)
	fs.StringSliceVarP(&opts.attributes, "attributes", "a", nil, "read attributes of the component")
	fs.StringSliceVarP(&opts.operations, "operations", "o", nil, "list operations of the component")
	return fs
}

// all reports whether the selector means "everything".
func all(names []string) bool {
	return len(names) == 1 && names[0] == "*"
}

// Get runs a parsed get target against this context's endpoint.
func (c *CommandContext) Get(ctx context.Context, target getTarget, opts getOptions) error {
	if len(opts.operations) > 0 {
		return c.listOperations(ctx, target, opts.operations)
	}

	switch target.Component {
	case "":
		// broker-level info
		if len(opts.attributes) > 0 {
			return c.readBrokerAttributes(ctx, opts.attributes)
		}
		return c.print(c.reader.GetBrokers(ctx))
	case "*":
		if len(opts.attributes) > 0 {
			return errors.New("cannot specify attributes for all components")
		}
		return c.print(c.reader.GetBrokerComponents(ctx))
	}

	component, err := resolveComponentType(target.Component)
	if err != nil {
		return err
	}
	if component == jolokia.ComponentBroker {
		if len(opts.attributes) > 0 {
			return c.readBrokerAttributes(ctx, opts.attributes)
		}
		return c.print(c.reader.GetBrokers(ctx))
	}
	if target.Name == "" {
		if len(opts.attributes) > 0 {
			return errors.New("need a component name to get attributes of")
		}
		return c.print(c.reader.GetComponents(ctx, component))
	}
	attrs := opts.attributes
	if all(attrs) {
		attrs = nil
	}
	return c.print(c.reader.ReadComponentAttributes(ctx, component, target.Name, attrs))
}

func (c *CommandContext) readBrokerAttributes(ctx context.Context, attributes []string) error {
	if all(attributes) {
		attributes = nil
	}
	return c.print(c.reader.ReadBrokerAttributes(ctx, attributes))
}

func (c *CommandContext) listOperations(ctx context.Context, target getTarget, operations []string) error {
	component, err := resolveComponentType(target.Component)
	if err != nil {
		return err
	}
	if component == "" {
		component = jolokia.ComponentBroker
	}
	value, err := c.reader.ListComponentOperations(ctx, component, target.Name)
	if err != nil {
		return err
	}
	if all(operations) {
		PrintResult(value)
		return nil
	}
	// filter the metadata down to the requested operations
	var ops map[string]json.RawMessage
	if err := json.Unmarshal(value, &ops); err != nil {
		PrintResult(value)
		return nil
	}
	selected := make(map[string]json.RawMessage)
	for _, name := range operations {
		if op, ok := ops[name]; ok {
			selected[name] = op
		}
	}
	out, err := json.Marshal(selected)
	if err != nil {
		return errors.Wrap(err, "[CommandContext.listOperations] marshal selection")
	}
	PrintResult(out)
	return nil
}

func (c *CommandContext) print(value json.RawMessage, err error) error {
	if err != nil {
		return err
	}
	PrintResult(value)
	return nil
}
