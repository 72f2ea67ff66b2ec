// Package cli implements the interactive and one-shot command client for
// the api server. A command either talks to a broker bridge directly
// (local endpoints) or is proxied through the api server (targets
// addressed with a leading @), reusing the session negotiated at startup.
package cli

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/jolokia"
	"github.com/gaohoward/activemq-artemis-jolokia-api-server/security"
)

// ServerAccess is the HTTP client for the api server. After LoginServer
// succeeds the bearer token is attached to every subsequent call.
type ServerAccess struct {
	baseURL     string
	httpClient  *http.Client
	bearerToken string
}

// NewServerAccess creates a client for the api server at apiServerURL.
// Certificate verification is disabled, matching the self-signed setups
// the server typically runs with.
func NewServerAccess(apiServerURL string) *ServerAccess {
	return &ServerAccess{
		baseURL: strings.TrimRight(apiServerURL, "/") + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// CheckAPIServer probes the health info endpoint.
func (sa *ServerAccess) CheckAPIServer(ctx context.Context) bool {
	var info struct {
		Status string `json:"status"`
	}
	if err := sa.getJSON(ctx, "/api-info", nil, &info); err != nil {
		return false
	}
	return info.Status == "successful"
}

// LoginServer authenticates against the api server and stores the bearer
// token for subsequent calls.
func (sa *ServerAccess) LoginServer(ctx context.Context, userName, password string) error {
	body, err := json.Marshal(security.Credential{UserName: userName, Password: password})
	if err != nil {
		return errors.Wrap(err, "[ServerAccess.LoginServer] marshal credential")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sa.baseURL+"/server/login", strings.NewReader(string(body)))
	if err != nil {
		return errors.Wrap(err, "[ServerAccess.LoginServer] build request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := sa.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "[ServerAccess.LoginServer] request failed")
	}
	defer resp.Body.Close()

	var result struct {
		Status      string `json:"status"`
		Message     string `json:"message"`
		BearerToken string `json:"bearerToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.Wrap(err, "[ServerAccess.LoginServer] decode response")
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("[ServerAccess.LoginServer] login failed: %s", result.Message)
	}
	// with security disabled the server issues no token; calls proceed
	// without one
	sa.bearerToken = result.BearerToken
	return nil
}

// EndpointInfo describes one server-side endpoint.
type EndpointInfo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// GetRemoteEndpoints lists the endpoints configured on the server. The
// listing requires admin-role membership.
func (sa *ServerAccess) GetRemoteEndpoints(ctx context.Context) ([]EndpointInfo, error) {
	var result struct {
		Status    string         `json:"status"`
		Endpoints []EndpointInfo `json:"endpoints"`
	}
	if err := sa.getJSON(ctx, "/server/admin/endpoints", nil, &result); err != nil {
		return nil, err
	}
	return result.Endpoints, nil
}

// Remote returns a reader whose calls are proxied through the server to
// the named endpoint.
func (sa *ServerAccess) Remote(endpointName string) *RemoteReader {
	return &RemoteReader{access: sa, endpointName: endpointName}
}

func (sa *ServerAccess) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	raw, err := sa.getRaw(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "[ServerAccess.getJSON] decode %s response", path)
	}
	return nil
}

func (sa *ServerAccess) getRaw(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	u := sa.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[ServerAccess.getRaw] build request")
	}
	if sa.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+sa.bearerToken)
	}
	resp, err := sa.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "[ServerAccess.getRaw] request to %s failed", path)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[ServerAccess.getRaw] read response")
	}
	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &failure)
		return nil, errors.Errorf("[ServerAccess.getRaw] %s returned %d: %s", path, resp.StatusCode, failure.Message)
	}
	return raw, nil
}

// RemoteReader reads broker components through the api server's proxy
// routes, naming the target endpoint on every call.
type RemoteReader struct {
	access       *ServerAccess
	endpointName string
}

var _ brokerReader = (*RemoteReader)(nil)

func (rr *RemoteReader) query(extra url.Values) url.Values {
	q := url.Values{}
	q.Set("targetEndpoint", rr.endpointName)
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return q
}

func (rr *RemoteReader) GetBrokers(ctx context.Context) (json.RawMessage, error) {
	return rr.access.getRaw(ctx, "/brokers", rr.query(nil))
}

func (rr *RemoteReader) GetBrokerComponents(ctx context.Context) (json.RawMessage, error) {
	return rr.access.getRaw(ctx, "/brokerComponents", rr.query(nil))
}

var componentRoutes = map[jolokia.ComponentType]string{
	jolokia.ComponentQueue:             "/queues",
	jolokia.ComponentAddress:           "/addresses",
	jolokia.ComponentAcceptor:          "/acceptors",
	jolokia.ComponentClusterConnection: "/clusterConnections",
}

var componentAttrRoutes = map[jolokia.ComponentType]string{
	jolokia.ComponentQueue:             "/readQueueAttributes",
	jolokia.ComponentAddress:           "/readAddressAttributes",
	jolokia.ComponentAcceptor:          "/readAcceptorAttributes",
	jolokia.ComponentClusterConnection: "/readClusterConnectionAttributes",
}

func (rr *RemoteReader) GetComponents(ctx context.Context, component jolokia.ComponentType) (json.RawMessage, error) {
	if component == jolokia.ComponentBroker {
		return rr.GetBrokers(ctx)
	}
	route, ok := componentRoutes[component]
	if !ok {
		return nil, errors.Errorf("[RemoteReader.GetComponents] unsupported component type %q", component)
	}
	return rr.access.getRaw(ctx, route, rr.query(nil))
}

func (rr *RemoteReader) ReadBrokerAttributes(ctx context.Context, attrs []string) (json.RawMessage, error) {
	extra := url.Values{}
	if len(attrs) > 0 {
		extra.Set("names", strings.Join(attrs, ","))
	}
	return rr.access.getRaw(ctx, "/readBrokerAttributes", rr.query(extra))
}

func (rr *RemoteReader) ReadComponentAttributes(ctx context.Context, component jolokia.ComponentType, name string, attrs []string) (json.RawMessage, error) {
	route, ok := componentAttrRoutes[component]
	if !ok {
		return nil, errors.Errorf("[RemoteReader.ReadComponentAttributes] unsupported component type %q", component)
	}
	extra := url.Values{}
	extra.Set("name", name)
	if len(attrs) > 0 {
		extra.Set("names", strings.Join(attrs, ","))
	}
	return rr.access.getRaw(ctx, route, rr.query(extra))
}

func (rr *RemoteReader) ListComponentOperations(ctx context.Context, component jolokia.ComponentType, name string) (json.RawMessage, error) {
	extra := url.Values{}
	extra.Set("type", string(component))
	extra.Set("name", name)
	return rr.access.getRaw(ctx, "/listComponentOperations", rr.query(extra))
}
