package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int             `toml:"version"`
	Agents  []personaSchema `toml:"agents"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported persona schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

// personaSchema carries id and timestamps on export for reference; import
// only reads the persona fields.
type personaSchema struct {
	ID          string `toml:"id,omitempty"`
	Name        string `toml:"name"`
	Role        string `toml:"role"`
	Goal        string `toml:"goal"`
	Backstory   string `toml:"backstory,omitempty"`
	AvatarColor string `toml:"avatar_color,omitempty"`
	CreatedAt   string `toml:"created_at,omitempty"`
}
