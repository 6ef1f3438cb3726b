package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"advogados-solidarios/internal/domain/identity"
)

// Persisted es lo que sobrevive a un reinicio: credencial + identidad en caché.
type Persisted struct {
	Credential string            `json:"token"`
	Identity   identity.Identity `json:"user"`
}

type Persister interface {
	// Load devuelve ok=false si no hay nada guardado.
	Load(ctx context.Context) (p Persisted, ok bool, err error)
	Save(ctx context.Context, p Persisted) error
	Clear(ctx context.Context) error
}

// FilePersister guarda la sesión en un archivo JSON (0600).
type FilePersister struct {
	path string
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

func (f *FilePersister) Load(ctx context.Context) (Persisted, bool, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Persisted{}, false, nil
	}
	if err != nil {
		return Persisted{}, false, fmt.Errorf("session file: read: %w", err)
	}

	var p Persisted
	if err := json.Unmarshal(raw, &p); err != nil {
		// archivo corrupto = no hay sesión
		return Persisted{}, false, nil
	}
	return p, p.Credential != "", nil
}

// Save escribe en un temporal y renombra, así nunca queda un archivo a medias.
func (f *FilePersister) Save(ctx context.Context, p Persisted) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("session file: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("session file: temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("session file: write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("session file: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session file: close: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FilePersister) Clear(ctx context.Context) error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session file: remove: %w", err)
	}
	return nil
}

// MemoryPersister es para tests.
type MemoryPersister struct {
	mu sync.Mutex
	p  *Persisted
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (m *MemoryPersister) Load(ctx context.Context) (Persisted, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.p == nil {
		return Persisted{}, false, nil
	}
	return *m.p, true, nil
}

func (m *MemoryPersister) Save(ctx context.Context, p Persisted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p = &p
	return nil
}

func (m *MemoryPersister) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p = nil
	return nil
}
