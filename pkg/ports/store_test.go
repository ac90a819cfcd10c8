package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/ports"
)

// MockStore is a minimal PreferenceStore used to check the contract suite itself.
type MockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]string)}
}

func (m *MockStore) Save(ctx context.Context, clientID, lang string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[clientID] = lang
	return nil
}

func (m *MockStore) Load(ctx context.Context, clientID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lang, ok := m.data[clientID]
	if !ok {
		return "", domain.ErrPreferenceNotFound
	}
	return lang, nil
}

func (m *MockStore) Delete(ctx context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, clientID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.data))
	for id := range m.data {
		out = append(out, id)
	}
	return out, nil
}

func TestPreferenceStore_Contract(t *testing.T) {
	ports.RunPreferenceStoreContract(t, NewMockStore())
}
