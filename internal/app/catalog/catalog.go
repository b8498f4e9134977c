// Package catalog provides the in-memory song catalog.
package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/osa030/venuebox/internal/domain/failure"
	"github.com/osa030/venuebox/internal/domain/money"
	"github.com/osa030/venuebox/internal/domain/song"
)

var (
	ErrSongNotFound  = failure.Mark("song not found", failure.ErrNotFound)
	ErrDuplicateSong = failure.Mark("song id already exists", failure.ErrInvalidArgument)
)

// Store holds catalog songs keyed by ID, preserving load order.
type Store struct {
	mu       sync.RWMutex
	songs    map[string]*song.Song
	order    []string
	validate *validator.Validate
}

// New creates a catalog loaded with songs.
func New(songs []song.Song) (*Store, error) {
	s := &Store{
		songs:    make(map[string]*song.Song, len(songs)),
		order:    make([]string, 0, len(songs)),
		validate: validator.New(),
	}
	for _, sg := range songs {
		if _, err := s.Add(sg); err != nil {
			return nil, errors.Wrapf(err, "failed to load song %q", sg.ID)
		}
	}
	return s, nil
}

// GetSong returns a copy of the song with the given ID.
func (s *Store) GetSong(id string) (*song.Song, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sg, ok := s.songs[id]
	if !ok {
		return nil, false
	}
	c := *sg
	return &c, true
}

// Get returns the song with the given ID or ErrSongNotFound.
func (s *Store) Get(id string) (song.Song, error) {
	sg, ok := s.GetSong(id)
	if !ok {
		return song.Song{}, errors.Wrapf(ErrSongNotFound, "song %q", id)
	}
	return *sg, nil
}

// All returns every song in load order.
func (s *Store) All() []song.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Map(s.order, func(id string, _ int) song.Song {
		return *s.songs[id]
	})
}

// Count returns the number of songs.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Search returns songs whose title, artist or album contains query
// (case-insensitive). A non-empty genre restricts results to that genre.
func (s *Store) Search(query, genre string) []song.Song {
	q := strings.ToLower(strings.TrimSpace(query))
	return lo.Filter(s.All(), func(sg song.Song, _ int) bool {
		if genre != "" && !strings.EqualFold(sg.Genre, genre) {
			return false
		}
		if q == "" {
			return true
		}
		return strings.Contains(strings.ToLower(sg.Title), q) ||
			strings.Contains(strings.ToLower(sg.Artist), q) ||
			strings.Contains(strings.ToLower(sg.Album), q)
	})
}

// Genres returns the distinct non-empty genres, sorted.
func (s *Store) Genres() []string {
	genres := lo.Uniq(lo.FilterMap(s.All(), func(sg song.Song, _ int) (string, bool) {
		return sg.Genre, sg.Genre != ""
	}))
	sort.Strings(genres)
	return genres
}

// Add validates and stores a new song. An empty ID is replaced by a generated one.
func (s *Store) Add(sg song.Song) (song.Song, error) {
	if sg.ID == "" {
		sg.ID = newSongID()
	}
	if err := s.validate.Struct(sg); err != nil {
		return song.Song{}, errors.Mark(errors.Wrap(err, "invalid song"), failure.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.songs[sg.ID]; exists {
		return song.Song{}, errors.Wrapf(ErrDuplicateSong, "song %q", sg.ID)
	}
	stored := sg
	s.songs[sg.ID] = &stored
	s.order = append(s.order, sg.ID)
	return sg, nil
}

// Update describes a partial song change. Nil fields are left untouched.
type Update struct {
	Title       *string
	Artist      *string
	Album       *string
	Genre       *string
	ReleaseYear *int
	CoverArtURL *string
	DurationSec *int
	Price       *money.Money
}

// Update applies u to the song with the given ID and returns the result.
// The stored song is only replaced if the result validates.
func (s *Store) Update(id string, u Update) (song.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.songs[id]
	if !ok {
		return song.Song{}, errors.Wrapf(ErrSongNotFound, "song %q", id)
	}

	updated := *current
	if u.Title != nil {
		updated.Title = *u.Title
	}
	if u.Artist != nil {
		updated.Artist = *u.Artist
	}
	if u.Album != nil {
		updated.Album = *u.Album
	}
	if u.Genre != nil {
		updated.Genre = *u.Genre
	}
	if u.ReleaseYear != nil {
		updated.ReleaseYear = *u.ReleaseYear
	}
	if u.CoverArtURL != nil {
		updated.CoverArtURL = *u.CoverArtURL
	}
	if u.DurationSec != nil {
		updated.DurationSec = *u.DurationSec
	}
	if u.Price != nil {
		updated.Price = *u.Price
	}

	if err := s.validate.Struct(updated); err != nil {
		return song.Song{}, errors.Mark(errors.Wrap(err, "invalid song"), failure.ErrInvalidArgument)
	}
	s.songs[id] = &updated
	return updated, nil
}

// Delete removes the song with the given ID.
// Queued requests that still reference it are skipped at playback time.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.songs[id]; !ok {
		return errors.Wrapf(ErrSongNotFound, "song %q", id)
	}
	delete(s.songs, id)
	s.order = lo.Without(s.order, id)
	return nil
}

// newSongID returns a short random identifier.
func newSongID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
