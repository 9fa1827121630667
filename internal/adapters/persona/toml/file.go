package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/agent-chat-cli/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	personaFileMode = 0o600
	personaDirMode  = 0o700
	tempFilePattern = ".personas-*.toml.tmp"
)

// Persona is the portable part of an agent: what a user types into the
// create form.
type Persona struct {
	Name      string
	Role      string
	Goal      string
	Backstory string
}

// File reads and writes persona files (version = 1, one [[agents]] table per persona).
type File struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("persona file path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve persona file path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &File{path: absPath, mu: lockForPath(absPath)}, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Read(ctx context.Context) ([]Persona, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode persona file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return nil, err
	}

	personas := make([]Persona, 0, len(file.Agents))
	for _, entry := range file.Agents {
		personas = append(personas, Persona{
			Name:      entry.Name,
			Role:      entry.Role,
			Goal:      entry.Goal,
			Backstory: entry.Backstory,
		})
	}

	return personas, nil
}

// Write replaces the file with the given agents.
func (f *File) Write(ctx context.Context, agents []domain.Agent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file := fileSchema{Agents: make([]personaSchema, 0, len(agents))}
	for _, agent := range agents {
		file.Agents = append(file.Agents, toSchema(agent))
	}
	file.applyDefaults()

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.writeSchema(file)
}

func (f *File) writeSchema(file fileSchema) error {
	if err := os.MkdirAll(filepath.Dir(f.path), personaDirMode); err != nil {
		return fmt.Errorf("create persona directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode persona file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(f.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp persona file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp persona file: %w", err)
	}

	if err := tempFile.Chmod(personaFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp persona file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp persona file: %w", err)
	}

	if err := os.Rename(tempName, f.path); err != nil {
		return fmt.Errorf("replace persona file: %w", err)
	}

	cleanup = false
	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(agent domain.Agent) personaSchema {
	createdAt := ""
	if !agent.CreatedAt.IsZero() {
		createdAt = agent.CreatedAt.UTC().Format(time.RFC3339)
	}

	return personaSchema{
		ID:          string(agent.ID),
		Name:        agent.Name,
		Role:        agent.Role,
		Goal:        agent.Goal,
		Backstory:   agent.Backstory,
		AvatarColor: agent.AvatarColor,
		CreatedAt:   createdAt,
	}
}
