// Package jolokia is a client for the jolokia HTTP bridge exposed by an
// ActiveMQ Artemis broker console. The api server treats the bridge as an
// external collaborator: send a request, get JSON back or a failure.
package jolokia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const jolokiaBasePath = "/console/jolokia"

// Client talks to a single broker's jolokia endpoint using the broker
// management credentials supplied at construction time.
type Client struct {
	// Name is the logical broker name the client was registered under.
	Name string

	username string
	password string
	scheme   string
	host     string
	port     string

	httpClient *http.Client

	// brokerMBean caches the resolved broker object name after the first
	// successful lookup.
	brokerMBean string
}

// New creates a client for the given connection parameters.
func New(name, username, password, host, scheme, port string) *Client {
	return &Client{
		Name:     name,
		username: username,
		password: password,
		scheme:   scheme,
		host:     host,
		port:     port,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FromURL creates a client from an endpoint URL, defaulting the port from
// the scheme when the URL leaves it out. Credentials embedded in the URL
// take precedence over the explicit arguments.
func FromURL(name, rawURL, username, password string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "[jolokia.FromURL] invalid endpoint url %q", rawURL)
	}
	if u.User != nil {
		username = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			password = pw
		}
	}
	port := u.Port()
	if port == "" {
		if u.Scheme == "http" {
			port = "80"
		} else {
			port = "443"
		}
	}
	return New(name, username, password, u.Hostname(), u.Scheme, port), nil
}

// BaseURL returns the root console URL of the broker.
func (c *Client) BaseURL() string {
	return fmt.Sprintf("%s://%s:%s", c.scheme, c.host, c.port)
}

// jolokia wire types. Every response carries a status; 200 means the
// operation succeeded and Value holds the payload.
type bridgeRequest struct {
	Type      string   `json:"type"`
	MBean     string   `json:"mbean,omitempty"`
	Attribute []string `json:"attribute,omitempty"`
}

type bridgeResponse struct {
	Status int             `json:"status"`
	Value  json.RawMessage `json:"value"`
	Error  string          `json:"error,omitempty"`
}

// ValidateUser checks the configured credentials against the bridge. It
// returns false (not an error) when the broker rejects them, mirroring the
// distinction between "checked and failed" and "could not check".
func (c *Client) ValidateUser(ctx context.Context) (bool, error) {
	resp, err := c.get(ctx, "/version")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, errors.Errorf("[Client.ValidateUser] unexpected status %d from %s", resp.StatusCode, c.BaseURL())
	}
	return true, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+jolokiaBasePath+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.get] build request")
	}
	req.SetBasicAuth(c.username, c.password)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.get] request to %s failed", c.BaseURL())
	}
	return resp, nil
}

func (c *Client) execute(ctx context.Context, breq bridgeRequest) (json.RawMessage, error) {
	body, err := json.Marshal(breq)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.execute] marshal request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+jolokiaBasePath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "[Client.execute] build request")
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.execute] request to %s failed", c.BaseURL())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.execute] read response")
	}
	var bresp bridgeResponse
	if err := json.Unmarshal(raw, &bresp); err != nil {
		return nil, errors.Wrapf(err, "[Client.execute] unexpected response from %s", c.BaseURL())
	}
	if bresp.Status != http.StatusOK {
		return nil, errors.Errorf("[Client.execute] bridge returned status %d: %s", bresp.Status, bresp.Error)
	}
	return bresp.Value, nil
}

func (c *Client) search(ctx context.Context, pattern string) (json.RawMessage, error) {
	resp, err := c.get(ctx, "/search/"+url.PathEscape(pattern))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.search] read response")
	}
	var bresp bridgeResponse
	if err := json.Unmarshal(raw, &bresp); err != nil {
		return nil, errors.Wrapf(err, "[Client.search] unexpected response from %s", c.BaseURL())
	}
	if bresp.Status != http.StatusOK {
		return nil, errors.Errorf("[Client.search] bridge returned status %d: %s", bresp.Status, bresp.Error)
	}
	return bresp.Value, nil
}

// resolveBrokerMBean looks up the broker's object name, caching the result.
func (c *Client) resolveBrokerMBean(ctx context.Context) (string, error) {
	if c.brokerMBean != "" {
		return c.brokerMBean, nil
	}
	value, err := c.search(ctx, `org.apache.activemq.artemis:broker=*`)
	if err != nil {
		return "", err
	}
	var names []string
	if err := json.Unmarshal(value, &names); err != nil {
		return "", errors.Wrap(err, "[Client.resolveBrokerMBean] parse search result")
	}
	if len(names) == 0 {
		return "", errors.Errorf("[Client.resolveBrokerMBean] no broker mbean found at %s", c.BaseURL())
	}
	c.brokerMBean = names[0]
	return c.brokerMBean, nil
}
