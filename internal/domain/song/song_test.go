package song

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestSong_Duration(t *testing.T) {
	s := Song{DurationSec: 355}
	assert.Equal(t, 5*time.Minute+55*time.Second, s.Duration())
}

func TestSong_Validation(t *testing.T) {
	tests := []struct {
		name  string
		song  Song
		valid bool
	}{
		{
			name: "valid song",
			song: Song{
				ID:          "1",
				Title:       "Bohemian Rhapsody",
				Artist:      "Queen",
				CoverArtURL: "https://images.example.com/cover.jpeg",
				DurationSec: 355,
				Price:       299,
			},
			valid: true,
		},
		{
			name:  "missing title",
			song:  Song{Artist: "Queen", DurationSec: 10},
			valid: false,
		},
		{
			name:  "zero duration",
			song:  Song{Title: "t", Artist: "a"},
			valid: false,
		},
		{
			name:  "negative price",
			song:  Song{Title: "t", Artist: "a", DurationSec: 10, Price: -1},
			valid: false,
		},
		{
			name:  "bad cover art uri",
			song:  Song{Title: "t", Artist: "a", DurationSec: 10, CoverArtURL: "not a url"},
			valid: false,
		},
	}

	validate := validator.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.song)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
