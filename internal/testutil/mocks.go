package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/websocket"
)

// MockDocumentRepository is a mock implementation of domain.DocumentRepository.
// It stores the document as JSON so loads go through the same decoding as real storage.
type MockDocumentRepository struct {
	mu        sync.Mutex
	data      []byte
	SaveCount int
	LoadErr   error
	SaveErr   error
	SaveFn    func(doc *domain.Document) error
}

// NewMockDocumentRepository creates a new MockDocumentRepository
func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{}
}

// SetDocument seeds the stored document
func (m *MockDocumentRepository) SetDocument(doc *domain.Document) {
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	m.SetRaw(data)
}

// SetRaw seeds the stored JSON directly, including malformed content
func (m *MockDocumentRepository) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
}

// Raw returns the last stored JSON
func (m *MockDocumentRepository) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// Saves returns how many times Save succeeded
func (m *MockDocumentRepository) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SaveCount
}

// Load decodes the stored document
func (m *MockDocumentRepository) Load(ctx context.Context) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	doc, _, err := domain.DecodeDocument(m.data)
	return doc, err
}

// Save encodes and stores the document
func (m *MockDocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	if m.SaveFn != nil {
		if err := m.SaveFn(doc); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.data = data
	m.SaveCount++
	return nil
}

// MockPublisher records every published event and the views it was sent to.
// A nil entry in Views means the event went to every view.
type MockPublisher struct {
	mu     sync.Mutex
	Events []websocket.Event
	Views  [][]string
}

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records the event
func (m *MockPublisher) Publish(event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	m.Views = append(m.Views, nil)
}

// PublishTo records the event with its target views
func (m *MockPublisher) PublishTo(views []string, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	m.Views = append(m.Views, append([]string(nil), views...))
}

// ViewsOf returns the target views of the last event of the given type and
// whether such an event was published
func (m *MockPublisher) ViewsOf(eventType string) ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Events) - 1; i >= 0; i-- {
		if m.Events[i].Type == eventType {
			return m.Views[i], true
		}
	}
	return nil, false
}

// Types returns the recorded event types in order
func (m *MockPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.Type)
	}
	return types
}
