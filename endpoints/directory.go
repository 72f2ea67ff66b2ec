// Package endpoints holds the directory of broker endpoints the server can
// proxy to in multi-broker mode. The directory is loaded once at startup
// from a YAML file and never changes afterwards.
package endpoints

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/jolokia"
)

// Endpoint is one entry of the endpoints file.
type Endpoint struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type endpointList struct {
	Endpoints []Endpoint `yaml:"endpoints"`
}

// ErrNoEndpoint is returned when a request names an endpoint the directory
// does not know.
var ErrNoEndpoint = errors.New("no endpoint found")

// Directory maps logical endpoint names to ready-to-use bridge clients.
// Read-only after Load, so lookups need no synchronization.
type Directory struct {
	clients map[string]*jolokia.Client
}

// Load reads the endpoints file. A missing file yields an empty directory.
func Load(file string) (*Directory, error) {
	d := &Directory{clients: make(map[string]*jolokia.Client)}

	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return nil, errors.Wrapf(err, "[endpoints.Load] read %s", file)
	}
	var list endpointList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, errors.Wrapf(err, "[endpoints.Load] parse %s", file)
	}
	for _, ep := range list.Endpoints {
		client, err := jolokia.FromURL(ep.Name, ep.URL, ep.Username, ep.Password)
		if err != nil {
			return nil, errors.Wrapf(err, "[endpoints.Load] endpoint %q", ep.Name)
		}
		d.clients[ep.Name] = client
	}
	return d, nil
}

// Get returns the client for the named endpoint.
func (d *Directory) Get(name string) (*jolokia.Client, error) {
	client, ok := d.clients[name]
	if !ok {
		return nil, errors.Wrapf(ErrNoEndpoint, "%q", name)
	}
	return client, nil
}

// List returns every registered client.
func (d *Directory) List() []*jolokia.Client {
	clients := make([]*jolokia.Client, 0, len(d.clients))
	for _, c := range d.clients {
		clients = append(clients, c)
	}
	return clients
}
