package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// JSONKV implements KV using a JSON file. The file holds every namespace;
// values must themselves be JSON documents.
type JSONKV struct {
	path      string
	namespace string
	mu        sync.Mutex
}

type jsonFile map[string]map[string]json.RawMessage

// NewJSONKV creates a JSONKV with the given file path and namespace.
func NewJSONKV(path, namespace string) *JSONKV {
	return &JSONKV{path: path, namespace: namespace}
}

// Path returns the storage file path.
func (s *JSONKV) Path() string {
	return s.path
}

// Get implements KV.
func (s *JSONKV) Get(_ context.Context, keys ...string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	ns := data[s.namespace]

	items := make(map[string][]byte)
	if len(keys) == 0 {
		for k, v := range ns {
			items[k] = []byte(v)
		}
		return items, nil
	}
	for _, k := range keys {
		if v, ok := ns[k]; ok {
			items[k] = []byte(v)
		}
	}
	return items, nil
}

// Set implements KV.
func (s *JSONKV) Set(_ context.Context, items map[string][]byte) error {
	for _, v := range items {
		if !json.Valid(v) {
			return ErrInvalidValue
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	ns := data[s.namespace]
	if ns == nil {
		ns = make(map[string]json.RawMessage)
		data[s.namespace] = ns
	}
	for k, v := range items {
		ns[k] = json.RawMessage(v)
	}
	return s.save(data)
}

// Remove implements KV.
func (s *JSONKV) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(data[s.namespace], k)
	}
	return s.save(data)
}

// load reads the JSON file.
// Returns empty data if the file doesn't exist.
func (s *JSONKV) load() (jsonFile, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return jsonFile{}, nil
		}
		return nil, err
	}

	data := jsonFile{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}

	// The file is indented; values come back in the compact form Set stores.
	for _, items := range data {
		for k, v := range items {
			var buf bytes.Buffer
			if err := json.Compact(&buf, v); err != nil {
				return nil, err
			}
			items[k] = buf.Bytes()
		}
	}
	return data, nil
}

// save writes the JSON file.
// Creates the directory if it doesn't exist.
func (s *JSONKV) save(data jsonFile) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, raw, 0644)
}

// DefaultJSONPath returns the default snapshot file path: ~/.config/bmr/snapshots.json
func DefaultJSONPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmr", "snapshots.json"), nil
}
