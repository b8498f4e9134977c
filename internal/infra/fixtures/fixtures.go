// Package fixtures loads the seed venue, catalog and accounts.
package fixtures

import (
	_ "embed"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/venuebox/internal/domain/song"
	"github.com/osa030/venuebox/internal/domain/user"
	"github.com/osa030/venuebox/internal/domain/venue"
)

//go:embed default.yaml
var defaultFixtures []byte

// Fixtures is the seed data of one venue.
type Fixtures struct {
	Venue venue.Venue `yaml:"venue"`
	Songs []song.Song `yaml:"songs" validate:"required,min=1,dive"`
	Users []user.User `yaml:"users" validate:"dive"`
}

// Load reads fixtures from path. An empty path selects the built-in demo venue.
func Load(path string) (*Fixtures, error) {
	if path == "" {
		return Parse(defaultFixtures)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read fixtures file")
	}
	return Parse(data)
}

// Default returns the built-in demo venue.
func Default() *Fixtures {
	f, err := Parse(defaultFixtures)
	if err != nil {
		panic(err)
	}
	return f
}

// Parse decodes and validates fixture YAML.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse fixtures")
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, errors.Wrap(err, "fixtures validation failed")
	}
	return &f, nil
}
