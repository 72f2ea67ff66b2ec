package cli

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/jolokia"
)

// getTarget is the parsed form of a get command path
// [[@]endpointName/]componentType[/componentName].
type getTarget struct {
	// Endpoint is the addressed endpoint name, empty for the current
	// context.
	Endpoint string
	// Remote marks a target reached through the api server (leading @).
	Remote bool
	// Component is the component type element: "" for broker-level info,
	// "*" for all component types.
	Component string
	// Name is the optional component name.
	Name string
}

// ErrNotImplemented marks component types the CLI recognizes but does not
// support yet.
var ErrNotImplemented = errors.New("not implemented")

// componentTypes maps the accepted type spellings (singular and plural) to
// the bridge component type.
var componentTypes = map[string]jolokia.ComponentType{
	"broker":              jolokia.ComponentBroker,
	"queue":               jolokia.ComponentQueue,
	"queues":              jolokia.ComponentQueue,
	"address":             jolokia.ComponentAddress,
	"addresses":           jolokia.ComponentAddress,
	"acceptor":            jolokia.ComponentAcceptor,
	"acceptors":           jolokia.ComponentAcceptor,
	"cluster-connection":  jolokia.ComponentClusterConnection,
	"cluster-connections": jolokia.ComponentClusterConnection,
}

// recognized but unimplemented component types
var unimplementedTypes = map[string]struct{}{
	"bridge":           {},
	"bridges":          {},
	"broadcast-group":  {},
	"broadcast-groups": {},
}

// resolveComponentType maps a path element to a component type. "" and "*"
// pass through as broker-level and wildcard selectors.
func resolveComponentType(element string) (jolokia.ComponentType, error) {
	if element == "" || element == "*" {
		return jolokia.ComponentType(element), nil
	}
	if component, ok := componentTypes[element]; ok {
		return component, nil
	}
	if _, ok := unimplementedTypes[element]; ok {
		return "", errors.Wrapf(ErrNotImplemented, "%q", element)
	}
	return "", errors.Errorf("component type not supported: %q", element)
}

// parseGetPath splits a get path into its endpoint, type, and name parts.
// knownEndpoint resolves the two-element ambiguity between endpoint/type
// and type/name: the first element is an endpoint when it carries the @
// marker or names an endpoint the caller knows about.
func parseGetPath(path string, knownEndpoint func(string) bool) (getTarget, error) {
	var t getTarget
	elements := strings.Split(path, "/")
	if len(elements) > 3 {
		return t, errors.Errorf("invalid target expression: %q", path)
	}

	head := elements[0]
	if strings.HasPrefix(head, "@") {
		t.Remote = true
		t.Endpoint = strings.TrimPrefix(head, "@")
		if t.Endpoint == "" {
			return t, errors.Errorf("invalid target expression: %q", path)
		}
		if len(elements) == 1 {
			return t, errors.Errorf("missing component type: %q", path)
		}
		elements = elements[1:]
	} else if len(elements) > 1 && head != "" && knownEndpoint != nil && knownEndpoint(head) {
		t.Endpoint = head
		elements = elements[1:]
	} else if len(elements) == 3 {
		// a three element path always starts with an endpoint
		t.Endpoint = head
		elements = elements[1:]
	}

	t.Component = elements[0]
	if len(elements) == 2 {
		t.Name = elements[1]
	}
	if _, err := resolveComponentType(t.Component); err != nil {
		return t, err
	}
	return t, nil
}
