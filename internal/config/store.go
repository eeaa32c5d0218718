package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/daangn/permalink/internal/version"
)

// ErrExists is returned by Init when the file already exists.
var ErrExists = errors.New("config file already exists")

// FileStore reads and writes the config file at a fixed path.
type FileStore struct {
	path string
}

// NewStore creates a store for path. An empty path uses Path().
func NewStore(path string) *FileStore {
	if path == "" {
		path = Path()
	}
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Exists reports whether the config file is present.
func (s *FileStore) Exists() bool {
	if s.path == "" {
		return false
	}
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the config from disk.
// Returns the defaults if the file doesn't exist.
func (s *FileStore) Load() (*Config, error) {
	cfg := Default()
	if s.path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	return Decode(data, s.path)
}

// Decode parses file contents read from path on top of the defaults.
// The schema version must be present and current.
func Decode(data []byte, path string) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Strict version validation (only if file exists)
	if cfg.PermalinkSchema == "" {
		return nil, version.MissingConfigSchema(path)
	}
	if cfg.PermalinkSchema != version.CurrentConfigSchema() {
		return nil, version.InvalidConfigSchema(path, cfg.PermalinkSchema)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode renders cfg as TOML, stamping the current schema version.
func Encode(cfg *Config) ([]byte, error) {
	cfg.PermalinkSchema = version.CurrentConfigSchema()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes cfg to disk, stamping the current schema version.
func (s *FileStore) Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	return s.write(data)
}

// SaveRaw writes data verbatim after checking that it decodes to a valid
// config, so hand-written comments survive.
func (s *FileStore) SaveRaw(data []byte) (*Config, error) {
	cfg, err := Decode(data, s.path)
	if err != nil {
		return nil, err
	}
	if err := s.write(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *FileStore) write(data []byte) error {
	if s.path == "" {
		return errors.New("no config path: set " + EnvConfigPath + " or HOME")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Init writes the default config. Unless force is set, an existing file is
// left alone and ErrExists returned.
func (s *FileStore) Init(force bool) (*Config, error) {
	if s.Exists() && !force {
		return nil, ErrExists
	}
	cfg := Default()
	if err := s.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
