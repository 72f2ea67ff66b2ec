package jolokia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// ComponentType identifies a broker component kind addressable over the
// bridge.
type ComponentType string

const (
	ComponentBroker            ComponentType = "broker"
	ComponentQueue             ComponentType = "queue"
	ComponentAddress           ComponentType = "address"
	ComponentAcceptor          ComponentType = "acceptor"
	ComponentClusterConnection ComponentType = "cluster-connection"
)

// Search patterns relative to the broker's object name prefix. Queues live
// under their address, the rest are direct components.
var componentPatterns = map[ComponentType]string{
	ComponentQueue:             `component=addresses,address=*,subcomponent=queues,routing-type=*,queue=*`,
	ComponentAddress:           `component=addresses,address=*`,
	ComponentAcceptor:          `component=acceptors,name=*`,
	ComponentClusterConnection: `component=cluster-connections,name=*`,
}

// GetBrokers returns the object names of the brokers behind the endpoint.
func (c *Client) GetBrokers(ctx context.Context) (json.RawMessage, error) {
	return c.search(ctx, `org.apache.activemq.artemis:broker=*`)
}

// GetBrokerComponents returns every component object name registered under
// the broker.
func (c *Client) GetBrokerComponents(ctx context.Context) (json.RawMessage, error) {
	mbean, err := c.resolveBrokerMBean(ctx)
	if err != nil {
		return nil, err
	}
	return c.search(ctx, mbean+",*")
}

// GetComponents returns the object names of all components of the given
// type.
func (c *Client) GetComponents(ctx context.Context, component ComponentType) (json.RawMessage, error) {
	if component == ComponentBroker {
		return c.GetBrokers(ctx)
	}
	pattern, ok := componentPatterns[component]
	if !ok {
		return nil, errors.Errorf("[Client.GetComponents] unsupported component type %q", component)
	}
	mbean, err := c.resolveBrokerMBean(ctx)
	if err != nil {
		return nil, err
	}
	return c.search(ctx, mbean+","+pattern)
}

// GetQueues returns the queue object names of the broker.
func (c *Client) GetQueues(ctx context.Context) (json.RawMessage, error) {
	return c.GetComponents(ctx, ComponentQueue)
}

// GetAddresses returns the address object names of the broker.
func (c *Client) GetAddresses(ctx context.Context) (json.RawMessage, error) {
	return c.GetComponents(ctx, ComponentAddress)
}

// GetAcceptors returns the acceptor object names of the broker.
func (c *Client) GetAcceptors(ctx context.Context) (json.RawMessage, error) {
	return c.GetComponents(ctx, ComponentAcceptor)
}

// GetClusterConnections returns the cluster connection object names of the
// broker.
func (c *Client) GetClusterConnections(ctx context.Context) (json.RawMessage, error) {
	return c.GetComponents(ctx, ComponentClusterConnection)
}

// ReadBrokerAttributes reads attributes of the broker itself. A nil or
// empty attrs slice reads all attributes.
func (c *Client) ReadBrokerAttributes(ctx context.Context, attrs []string) (json.RawMessage, error) {
	mbean, err := c.resolveBrokerMBean(ctx)
	if err != nil {
		return nil, err
	}
	return c.execute(ctx, bridgeRequest{Type: "read", MBean: mbean, Attribute: attrs})
}

// ReadComponentAttributes reads attributes of a named component. A nil or
// empty attrs slice reads all attributes.
func (c *Client) ReadComponentAttributes(ctx context.Context, component ComponentType, name string, attrs []string) (json.RawMessage, error) {
	mbean, err := c.componentMBean(ctx, component, name)
	if err != nil {
		return nil, err
	}
	return c.execute(ctx, bridgeRequest{Type: "read", MBean: mbean, Attribute: attrs})
}

// ListComponentOperations returns the operation metadata the bridge
// publishes for a named component.
func (c *Client) ListComponentOperations(ctx context.Context, component ComponentType, name string) (json.RawMessage, error) {
	mbean, err := c.componentMBean(ctx, component, name)
	if err != nil {
		return nil, err
	}
	resp, err := c.get(ctx, "/list/"+url.PathEscape(mbeanListPath(mbean)))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.ListComponentOperations] read response")
	}
	var bresp bridgeResponse
	if err := json.Unmarshal(raw, &bresp); err != nil {
		return nil, errors.Wrapf(err, "[Client.ListComponentOperations] unexpected response from %s", c.BaseURL())
	}
	if bresp.Status != http.StatusOK {
		return nil, errors.Errorf("[Client.ListComponentOperations] bridge returned status %d: %s", bresp.Status, bresp.Error)
	}
	var meta struct {
		Op json.RawMessage `json:"op"`
	}
	if err := json.Unmarshal(bresp.Value, &meta); err != nil {
		return nil, errors.Wrap(err, "[Client.ListComponentOperations] parse mbean metadata")
	}
	return meta.Op, nil
}

// componentMBean resolves the full object name of a named component. The
// queue name is matched against the search results since a queue's object
// name also encodes its address and routing type.
func (c *Client) componentMBean(ctx context.Context, component ComponentType, name string) (string, error) {
	mbean, err := c.resolveBrokerMBean(ctx)
	if err != nil {
		return "", err
	}
	switch component {
	case ComponentBroker:
		return mbean, nil
	case ComponentAddress:
		return fmt.Sprintf(`%s,component=addresses,address=%q`, mbean, name), nil
	case ComponentAcceptor:
		return fmt.Sprintf(`%s,component=acceptors,name=%q`, mbean, name), nil
	case ComponentClusterConnection:
		return fmt.Sprintf(`%s,component=cluster-connections,name=%q`, mbean, name), nil
	case ComponentQueue:
		value, err := c.search(ctx, fmt.Sprintf(`%s,component=addresses,address=*,subcomponent=queues,routing-type=*,queue=%q`, mbean, name))
		if err != nil {
			return "", err
		}
		var names []string
		if err := json.Unmarshal(value, &names); err != nil {
			return "", errors.Wrap(err, "[Client.componentMBean] parse queue search result")
		}
		if len(names) == 0 {
			return "", errors.Errorf("[Client.componentMBean] no such queue %q", name)
		}
		return names[0], nil
	}
	return "", errors.Errorf("[Client.componentMBean] unsupported component type %q", component)
}

// mbeanListPath converts an object name into the path form the jolokia
// list endpoint expects (domain/properties).
func mbeanListPath(mbean string) string {
	for i := 0; i < len(mbean); i++ {
		if mbean[i] == ':' {
			return mbean[:i] + "/" + mbean[i+1:]
		}
	}
	return mbean
}
