package campaign

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store exposes campaign persistence for handlers and the tool invoker.
// The document is re-read on every gating decision, so implementations must
// not cache across calls.
type Store interface {
	Load() (Campaign, bool, error)
	Save(c Campaign) error
	Delete() error
}

// envelope is the on-disk document shape: {"campaign": {...}}.
type envelope struct {
	Campaign json.RawMessage `json:"campaign"`
}

// FileStore keeps the single campaign document in a JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore ensures the data directory and document exist and returns a
// store bound to <dir>/campaign.json.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, "campaign.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(`{"campaign": {}}`), 0o644); err != nil {
			return nil, fmt.Errorf("initialize campaign file: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Load reads the current campaign. The second return value is false when no
// campaign has been stored yet.
func (s *FileStore) Load() (Campaign, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Campaign{}, false, fmt.Errorf("read campaign file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Campaign{}, false, fmt.Errorf("decode campaign file: %w", err)
	}
	if isEmptyDocument(env.Campaign) {
		return Campaign{}, false, nil
	}

	var c Campaign
	if err := json.Unmarshal(env.Campaign, &c); err != nil {
		return Campaign{}, false, fmt.Errorf("decode campaign: %w", err)
	}
	return c, true, nil
}

// Save overwrites the stored campaign document.
func (s *FileStore) Save(c Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(map[string]Campaign{"campaign": c})
}

// Delete clears the stored campaign by writing an empty document.
func (s *FileStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(map[string]struct{}{"campaign": {}})
}

func (s *FileStore) write(doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode campaign: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write campaign file: %w", err)
	}
	return nil
}

func isEmptyDocument(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 ||
		bytes.Equal(trimmed, []byte("null")) ||
		bytes.Equal(trimmed, []byte("{}"))
}
