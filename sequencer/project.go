package sequencer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go-drum/debug"
)

const saveTimeFormat = "2006-01-02_15-04-05"

// SaveInfo represents a saved project file (for listing)
type SaveInfo struct {
	Filename  string
	Timestamp time.Time
}

// ProjectStore keeps timestamped State snapshots, one folder per project.
type ProjectStore struct {
	Dir string
	now func() time.Time
}

// DefaultProjectsDir returns ~/.config/go-drum/projects.
func DefaultProjectsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drum", "projects"), nil
}

func NewProjectStore(dir string) *ProjectStore {
	return &ProjectStore{Dir: dir, now: time.Now}
}

func (p *ProjectStore) projectDir(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: project name %q", ErrInvalidArgument, name)
	}
	return filepath.Join(p.Dir, name), nil
}

// ListProjects returns all project folder names
func (p *ProjectStore) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// ListSaves returns timestamped saves for a project, newest first
func (p *ProjectStore) ListSaves(name string) ([]SaveInfo, error) {
	dir, err := p.projectDir(name)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		fn := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(fn, ".json") {
			continue
		}
		ts, err := time.ParseInLocation(saveTimeFormat, strings.TrimSuffix(fn, ".json"), time.Local)
		if err != nil {
			continue // not one of ours
		}
		saves = append(saves, SaveInfo{Filename: fn, Timestamp: ts})
	}

	sort.Slice(saves, func(i, j int) bool {
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})
	return saves, nil
}

// Save writes s to a new timestamped file in the project and returns its name.
func (p *ProjectStore) Save(name string, s State) (string, error) {
	dir, err := p.projectDir(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create project %s: %w", name, err)
	}

	// Playback position is runtime only.
	s.Playing = false
	s.Step = 0
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}

	fn := p.now().Format(saveTimeFormat) + ".json"
	if err := os.WriteFile(filepath.Join(dir, fn), data, 0644); err != nil {
		return "", fmt.Errorf("write save: %w", err)
	}
	debug.Log("project", "saved %s/%s", name, fn)
	return fn, nil
}

// Load reads one save of the project, or the most recent if filename is empty.
func (p *ProjectStore) Load(name, filename string) (State, error) {
	dir, err := p.projectDir(name)
	if err != nil {
		return State{}, err
	}
	if filename == "" {
		saves, err := p.ListSaves(name)
		if err != nil {
			return State{}, err
		}
		if len(saves) == 0 {
			return State{}, fmt.Errorf("no saves found in project %s", name)
		}
		filename = saves[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(filename)))
	if err != nil {
		return State{}, err
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	if err := s.Validate(); err != nil {
		return State{}, fmt.Errorf("load %s: %w", filename, err)
	}
	debug.Log("project", "loaded %s/%s", name, filename)
	return s, nil
}

// DeleteSave deletes a specific save file
func (p *ProjectStore) DeleteSave(name, filename string) error {
	dir, err := p.projectDir(name)
	if err != nil {
		return err
	}
	return os.Remove(filepath.Join(dir, filepath.Base(filename)))
}
