package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exports", "personas.toml")
	file, err := NewFile(path)
	require.NoError(t, err)

	agents := []domain.Agent{
		{
			ID:          "a-1",
			Name:        "Ada",
			Role:        "Engineer",
			Goal:        "Explain engines",
			Backstory:   "Worked with Babbage",
			AvatarColor: "#6366f1",
			CreatedAt:   time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC),
		},
		{ID: "a-2", Name: "Grace", Role: "Admiral", Goal: "Debug"},
	}

	require.NoError(t, file.Write(context.Background(), agents))

	personas, err := file.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Persona{
		{Name: "Ada", Role: "Engineer", Goal: "Explain engines", Backstory: "Worked with Babbage"},
		{Name: "Grace", Role: "Admiral", Goal: "Debug"},
	}, personas)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(personaFileMode), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "version = 1")
	assert.Contains(t, string(raw), "[[agents]]")
	assert.Contains(t, string(raw), "2024-03-09T10:30:00Z")
}

func TestFileReadHandWrittenPersonas(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "personas.toml")
	content := `
[[agents]]
name = "Socrates"
role = "Philosopher"
goal = "Ask questions"
backstory = """
Lived in Athens."""
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	file, err := NewFile(path)
	require.NoError(t, err)

	personas, err := file.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, personas, 1)
	assert.Equal(t, "Socrates", personas[0].Name)
	assert.Equal(t, "Lived in Athens.", personas[0].Backstory)
}

func TestFileReadRejectsFutureVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "personas.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 2\n"), 0o600))

	file, err := NewFile(path)
	require.NoError(t, err)

	_, err = file.Read(context.Background())
	require.ErrorContains(t, err, "unsupported persona schema version 2")
}

func TestFileReadRejectsMalformedToml(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "personas.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[agents]\nname = "), 0o600))

	file, err := NewFile(path)
	require.NoError(t, err)

	_, err = file.Read(context.Background())
	require.ErrorContains(t, err, "decode persona file")
}

func TestNewFileSharesLockPerPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "personas.toml")
	first, err := NewFile(path)
	require.NoError(t, err)
	second, err := NewFile(filepath.Join(filepath.Dir(path), ".", "personas.toml"))
	require.NoError(t, err)

	assert.Same(t, first.mu, second.mu)
}
