package sites

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/saudadez21/novel-downloader-sub001/internal/logging"
)

// overlayPattern matches capability record files inside the overlay dir.
const overlayPattern = "**/*.{yaml,yml,json,toml}"

// Seeder loads capability records from an overlay directory. Records
// extend the builtin table; a record reusing a builtin site ID replaces
// that row, which is how deployments patch a site's vector without a
// rebuild.
type Seeder struct {
	dir    string
	logger *logging.Logger
}

// NewSeeder creates a seeder reading from dir.
func NewSeeder(dir string, logger *logging.Logger) *Seeder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Seeder{dir: dir, logger: logger}
}

// Seed builds a registry from base plus everything under the overlay
// directory. A missing directory is not an error; individual bad files
// are logged and skipped so one typo cannot take the service down.
func (s *Seeder) Seed(base []Capabilities) (*Registry, error) {
	records := make(map[string]Capabilities, len(base))
	for _, rec := range base {
		records[rec.SiteID] = rec
	}

	if s.dir == "" {
		return registryFromMap(records)
	}
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		s.logger.Warn("site overlay directory not found", zap.String("dir", s.dir))
		return registryFromMap(records)
	}

	var (
		mu             sync.Mutex // fastwalk runs the callback concurrently
		loaded, failed int
		seen           = make(map[string]string) // site_id -> overlay file that defined it
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(s.dir, p)
		if relErr != nil {
			rel = d.Name()
		}
		if ok, _ := doublestar.Match(overlayPattern, filepath.ToSlash(rel)); !ok {
			return nil
		}

		rec, loadErr := LoadFile(p)

		mu.Lock()
		defer mu.Unlock()

		if loadErr != nil {
			s.logger.Warn("failed to load site overlay",
				zap.String("file", rel), zap.Error(loadErr))
			failed++
			return nil
		}

		if prev, dup := seen[rec.SiteID]; dup {
			s.logger.Warn("duplicate site overlay ignored",
				zap.String("file", rel),
				zap.String("site_id", rec.SiteID),
				zap.String("first_defined_in", prev))
			failed++
			return nil
		}

		seen[rec.SiteID] = rel
		records[rec.SiteID] = rec
		loaded++
		s.logger.Debug("loaded site overlay",
			zap.String("file", rel), zap.String("site_id", rec.SiteID))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking overlay dir: %w", err)
	}

	s.logger.Info("site overlay seeding complete",
		zap.Int("loaded", loaded), zap.Int("failed", failed))
	return registryFromMap(records)
}

// LoadFile decodes one capability record based on file extension.
func LoadFile(path string) (Capabilities, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Capabilities{}, err
	}

	var rec Capabilities
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = sonic.Unmarshal(data, &rec)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &rec)
	case ".toml":
		err = toml.Unmarshal(data, &rec)
	default:
		return Capabilities{}, fmt.Errorf("unsupported overlay format %q", filepath.Ext(path))
	}
	if err != nil {
		return Capabilities{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	if err := rec.Validate(); err != nil {
		return Capabilities{}, err
	}
	return rec, nil
}

func registryFromMap(records map[string]Capabilities) (*Registry, error) {
	list := make([]Capabilities, 0, len(records))
	for _, rec := range records {
		list = append(list, rec)
	}
	return NewRegistry(list)
}
