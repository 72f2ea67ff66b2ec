package security

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/jolokia"
)

// BindingStore caches the live broker connection established by a
// successful jolokia login, keyed by the caller-chosen broker name the
// session token is bound to. Entries live until an explicit logout; there
// is no other eviction. Concurrent requests read while logins and logouts
// mutate, so access is lock-guarded. A request racing a logout may still
// succeed with the just-removed binding; that is accepted behavior.
type BindingStore struct {
	mu       sync.RWMutex
	bindings map[string]*jolokia.Client
}

// NewBindingStore creates an empty binding store.
func NewBindingStore() *BindingStore {
	return &BindingStore{
		bindings: make(map[string]*jolokia.Client),
	}
}

// Register adds or replaces the binding for the broker name. Only callers
// that completed a successful bridge credential check may register.
func (b *BindingStore) Register(brokerName string, client *jolokia.Client) error {
	if brokerName == "" {
		return errors.New("[BindingStore.Register] broker name cannot be empty")
	}
	b.mu.Lock()
	b.bindings[brokerName] = client
	b.mu.Unlock()
	return nil
}

// Lookup returns the binding for the broker name, or nil when absent.
func (b *BindingStore) Lookup(brokerName string) *jolokia.Client {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bindings[brokerName]
}

// Remove deletes the binding for the broker name. Removing an absent
// binding is a no-op.
func (b *BindingStore) Remove(brokerName string) {
	b.mu.Lock()
	delete(b.bindings, brokerName)
	b.mu.Unlock()
}

// Names returns the registered broker names.
func (b *BindingStore) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.bindings))
	for name := range b.bindings {
		names = append(names, name)
	}
	return names
}
