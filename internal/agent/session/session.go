// Package session persists conversation threads as JSON files so a chat can
// be resumed later.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"snapsort/internal/agent"
	"snapsort/internal/model"
)

type Info struct {
	ID       string    `json:"id"`
	Mode     string    `json:"mode"`
	Turns    int       `json:"turns"`
	SavedAt  time.Time `json:"saved_at"`
	FilePath string    `json:"-"`
}

type Store struct {
	dir string
}

// NewStore roots the session files under stateDir/sessions.
func NewStore(stateDir string) *Store {
	return &Store{dir: filepath.Join(stateDir, "sessions")}
}

// Save writes the thread to disk. An empty id allocates a fresh one; the
// used id is returned either way.
func (s *Store) Save(id string, thread *agent.Thread) (string, error) {
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating session dir: %w", err)
	}
	data, err := thread.Serialize()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(s.path(id), data, 0o644); err != nil {
		return "", fmt.Errorf("writing session %s: %w", id, err)
	}
	return id, nil
}

func (s *Store) Load(id string) (*agent.Thread, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("session %s: %w", id, model.ErrNotFound)
		}
		return nil, err
	}
	return agent.Deserialize(data)
}

func (s *Store) Delete(id string) error {
	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session %s: %w", id, model.ErrNotFound)
	}
	return err
}

// List returns all saved sessions, most recent first.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			continue
		}
		var env struct {
			Mode  string       `json:"mode"`
			Turns []model.Turn `json:"turns"`
		}
		if json.Unmarshal(data, &env) != nil {
			continue
		}
		fileInfo, statErr := entry.Info()
		savedAt := time.Time{}
		if statErr == nil {
			savedAt = fileInfo.ModTime()
		}
		infos = append(infos, Info{
			ID:       strings.TrimSuffix(entry.Name(), ".json"),
			Mode:     env.Mode,
			Turns:    len(env.Turns),
			SavedAt:  savedAt,
			FilePath: path,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].SavedAt.After(infos[j].SavedAt) })
	return infos, nil
}

// Clear deletes saved sessions last touched more than olderThan ago and
// returns how many were removed. A zero olderThan clears everything.
func (s *Store) Clear(olderThan time.Duration) (int, error) {
	infos, err := s.List()
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, info := range infos {
		if olderThan > 0 && info.SavedAt.After(cutoff) {
			continue
		}
		if err := os.Remove(info.FilePath); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
