package annotation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/example/mapnotes/internal/geo"
)

// Store keeps the annotation document in memory and writes it back to
// a JSON file. It is not safe for concurrent use.
type Store struct {
	path    string
	data    Data
	modTime time.Time
	size    int64
	dirty   bool
}

// DefaultPath is the data file under the user's data directory.
func DefaultPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "mapnotes", "map-data.json")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "mapnotes", "map-data.json")
}

// Open loads path. When the file does not exist the document starts
// from seed, which may be empty.
func Open(path string, seed []byte) (*Store, error) {
	s := &Store{path: path}
	err := s.Reload()
	if errors.Is(err, fs.ErrNotExist) {
		s.data = Data{Version: CurrentVersion}
		if len(bytes.TrimSpace(seed)) > 0 {
			d, err := Decode(bytes.NewReader(seed), FormatJSON)
			if err != nil {
				return nil, fmt.Errorf("seed data: %w", err)
			}
			s.data = *d
		}
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Path of the backing file.
func (s *Store) Path() string { return s.path }

// Dirty reports unsaved changes.
func (s *Store) Dirty() bool { return s.dirty }

// Data returns a copy of the document.
func (s *Store) Data() Data {
	d := Data{Version: s.data.Version}
	d.Labels = append([]Label(nil), s.data.Labels...)
	d.Entries = append([]Entry(nil), s.data.Entries...)
	return d
}

// Entries returns the entries in display order.
func (s *Store) Entries() []Entry {
	return append([]Entry(nil), s.data.Entries...)
}

// Coords returns the positions of all entries, index aligned with
// Entries.
func (s *Store) Coords() []geo.Coord {
	out := make([]geo.Coord, len(s.data.Entries))
	for i, e := range s.data.Entries {
		out[i] = e.Coord()
	}
	return out
}

// Labels returns the labels sorted by name.
func (s *Store) Labels() []Label {
	return append([]Label(nil), s.data.Labels...)
}

// Label looks up a label by id.
func (s *Store) Label(id int) (Label, error) {
	for _, l := range s.data.Labels {
		if l.ID == id {
			return l, nil
		}
	}
	return Label{}, fmt.Errorf("label %d: %w", id, ErrNoLabel)
}

// LabelByName finds a label ignoring case and accents.
func (s *Store) LabelByName(name string) (Label, error) {
	want := Fold(name)
	for _, l := range s.data.Labels {
		if Fold(l.Name) == want {
			return l, nil
		}
	}
	return Label{}, fmt.Errorf("label %q: %w", name, ErrNoLabel)
}

// AddLabel adds a label keeping the list sorted, or returns the
// existing label with the same folded name.
func (s *Store) AddLabel(name string) Label {
	if l, err := s.LabelByName(name); err == nil {
		return l
	}
	id := 0
	for _, l := range s.data.Labels {
		if l.ID >= id {
			id = l.ID + 1
		}
	}
	l := Label{ID: id, Name: name}
	s.data.Labels = append(s.data.Labels, l)
	SortLabels(s.data.Labels)
	s.dirty = true
	return l
}

// Add appends an entry and returns its index.
func (s *Store) Add(e Entry) (int, error) {
	if _, err := s.Label(e.Label); err != nil && len(s.data.Labels) > 0 {
		return -1, err
	}
	if e.Created.IsZero() {
		e.Created = time.Now().UTC().Truncate(time.Second)
	}
	s.data.Entries = append(s.data.Entries, e)
	s.dirty = true
	return len(s.data.Entries) - 1, nil
}

// Remove deletes the entry at i.
func (s *Store) Remove(i int) (Entry, error) {
	if i < 0 || i >= len(s.data.Entries) {
		return Entry{}, fmt.Errorf("entry %d: %w", i, ErrNoEntry)
	}
	e := s.data.Entries[i]
	s.data.Entries = append(s.data.Entries[:i], s.data.Entries[i+1:]...)
	s.dirty = true
	return e, nil
}

// Relabel changes the label of the entry at i.
func (s *Store) Relabel(i, label int) error {
	if i < 0 || i >= len(s.data.Entries) {
		return fmt.Errorf("entry %d: %w", i, ErrNoEntry)
	}
	if _, err := s.Label(label); err != nil {
		return err
	}
	s.data.Entries[i].Label = label
	s.dirty = true
	return nil
}

// Replace swaps in a whole new document.
func (s *Store) Replace(d Data) {
	Fix(&d)
	s.data = d
	s.dirty = true
}

// Merge adds the labels and entries of d. Labels are matched by name;
// entry label ids are remapped onto the merged labels.
func (s *Store) Merge(d Data) {
	Fix(&d)
	remap := make(map[int]int, len(d.Labels))
	for _, l := range d.Labels {
		remap[l.ID] = s.AddLabel(l.Name).ID
	}
	for _, e := range d.Entries {
		if id, ok := remap[e.Label]; ok {
			e.Label = id
		}
		s.data.Entries = append(s.data.Entries, e)
	}
	s.dirty = true
}

// Reload reads the backing file, replacing the in-memory document.
func (s *Store) Reload() error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	d, err := Decode(f, FormatJSON)
	if err != nil {
		return fmt.Errorf("%s: %w", s.path, err)
	}
	s.data = *d
	s.modTime, s.size = info.ModTime(), info.Size()
	s.dirty = false
	return nil
}

// Changed reports whether the file on disk differs from what was last
// loaded or saved.
func (s *Store) Changed() bool {
	info, err := os.Stat(s.path)
	if err != nil {
		return false
	}
	return !info.ModTime().Equal(s.modTime) || info.Size() != s.size
}

// Save writes the document through a temporary file in the same
// directory.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	s.data.Version = CurrentVersion
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".map-data-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := Encode(tmp, s.data, FormatJSON); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return err
	}
	if info, err := os.Stat(s.path); err == nil {
		s.modTime, s.size = info.ModTime(), info.Size()
	}
	s.dirty = false
	return nil
}

// MarshalJSON lets the store be handed straight to an encoder.
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.data)
}
