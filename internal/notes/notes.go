package notes

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gitfudge0/werkday/internal/store"
)

const blobKey = "notes"

var ErrNotFound = errors.New("note not found")

// Note is a free-form memo that contributes to reports by its updatedAt.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store keeps all notes in a single JSON collection blob.
type Store struct {
	blobs *store.Store
	now   func() time.Time
}

func NewStore(blobs *store.Store) *Store {
	return &Store{blobs: blobs, now: time.Now}
}

// List returns all notes, most recently updated first.
func (s *Store) List() ([]Note, error) {
	notes, err := s.load()
	if err != nil {
		return nil, err
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes, nil
}

// InRange returns notes whose updatedAt falls within [from, to).
func (s *Store) InRange(from, to time.Time) ([]Note, error) {
	notes, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []Note
	for _, n := range notes {
		if n.UpdatedAt.Before(from) || !n.UpdatedAt.Before(to) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// Create adds a note and returns it with id and timestamps assigned.
func (s *Store) Create(title, body string) (*Note, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("note body is required")
	}

	notes, err := s.load()
	if err != nil {
		return nil, err
	}

	now := s.now()
	note := Note{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	notes = append(notes, note)

	if err := s.save(notes); err != nil {
		return nil, err
	}
	return &note, nil
}

// Update replaces a note's title and body, bumping updatedAt.
func (s *Store) Update(id, title, body string) (*Note, error) {
	notes, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range notes {
		if notes[i].ID != id {
			continue
		}
		notes[i].Title = title
		notes[i].Body = body
		notes[i].UpdatedAt = s.now()
		if err := s.save(notes); err != nil {
			return nil, err
		}
		return &notes[i], nil
	}
	return nil, ErrNotFound
}

// Delete removes a note by id.
func (s *Store) Delete(id string) error {
	notes, err := s.load()
	if err != nil {
		return err
	}

	for i := range notes {
		if notes[i].ID != id {
			continue
		}
		notes = append(notes[:i], notes[i+1:]...)
		return s.save(notes)
	}
	return ErrNotFound
}

func (s *Store) load() ([]Note, error) {
	var notes []Note
	if _, err := s.blobs.Read(blobKey, &notes); err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	return notes, nil
}

func (s *Store) save(notes []Note) error {
	if err := s.blobs.Write(blobKey, notes); err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	return nil
}
