package annotation

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "agua", Fold("Água"))
	assert.Equal(t, "sao joao", Fold("São João"))
	assert.Equal(t, "cafe", Fold("CAFÉ"))
	assert.Equal(t, "", Fold("日本"))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare("Éclair", "eclair"))
	assert.Less(t, Compare("árvore", "Banco"), 0)
	assert.Greater(t, Compare("Zebra", "ônibus"), 0)
}

func TestFixAssignsIdsAndSorts(t *testing.T) {
	d := Data{Labels: []Label{{Name: "Praça"}, {Name: "escola"}, {Name: "Árvore"}, {Name: "banco"}}}
	Fix(&d)
	assert.Equal(t, CurrentVersion, d.Version)
	assert.Equal(t, []Label{
		{ID: 2, Name: "Árvore"},
		{ID: 3, Name: "banco"},
		{ID: 1, Name: "escola"},
		{ID: 0, Name: "Praça"},
	}, d.Labels)

	// Already versioned documents are left alone.
	d2 := Data{Version: 1, Labels: []Label{{ID: 9, Name: "z"}, {ID: 4, Name: "a"}}}
	Fix(&d2)
	assert.Equal(t, []Label{{ID: 9, Name: "z"}, {ID: 4, Name: "a"}}, d2.Labels)
}

func sample() Data {
	return Data{
		Version: CurrentVersion,
		Labels:  []Label{{ID: 0, Name: "Árvore"}, {ID: 1, Name: "Poste"}},
		Entries: []Entry{
			{Lat: -25.4930, Lon: -54.5500, Label: 0, Note: "ipê"},
			{Lat: -25.4950, Lon: -54.5480, Label: 1, Created: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		},
	}
}

func TestOpenSeedsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "map-data.json")
	seed := `{"labels":[{"name":"b"},{"name":"A"}],"entries":[{"lat":1,"lon":2,"label":1}]}`
	s, err := Open(path, []byte(seed))
	require.NoError(t, err)
	assert.Equal(t, []Label{{ID: 1, Name: "A"}, {ID: 0, Name: "b"}}, s.Labels())
	require.Len(t, s.Entries(), 1)
	assert.False(t, s.Dirty())

	s, err = Open(path, nil)
	require.NoError(t, err)
	assert.Empty(t, s.Entries())
}

func TestOpenBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map-data.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := Open(path, nil)
	assert.Error(t, err)
}

func TestStoreSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "map-data.json")
	s, err := Open(path, nil)
	require.NoError(t, err)
	s.Replace(sample())
	assert.True(t, s.Dirty())
	require.NoError(t, s.Save())
	assert.False(t, s.Dirty())
	assert.False(t, s.Changed())

	again, err := Open(path, nil)
	require.NoError(t, err)
	assert.Equal(t, sample(), again.Data())

	entries, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".map-data-*"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreEdit(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "m.json"), nil)
	require.NoError(t, err)
	s.Replace(sample())

	l := s.AddLabel("banco")
	assert.Equal(t, 2, l.ID)
	assert.Equal(t, []string{"Árvore", "banco", "Poste"}, names(s.Labels()))
	assert.Equal(t, l, s.AddLabel("BANCO"))

	i, err := s.Add(Entry{Lat: 1, Lon: 2, Label: l.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, i)
	assert.False(t, s.Entries()[2].Created.IsZero())

	_, err = s.Add(Entry{Label: 42})
	assert.ErrorIs(t, err, ErrNoLabel)

	removed, err := s.Remove(0)
	require.NoError(t, err)
	assert.Equal(t, "ipê", removed.Note)
	assert.Len(t, s.Entries(), 2)
	_, err = s.Remove(5)
	assert.ErrorIs(t, err, ErrNoEntry)

	require.NoError(t, s.Relabel(0, 1))
	assert.Equal(t, 1, s.Entries()[0].Label)
	assert.ErrorIs(t, s.Relabel(0, 99), ErrNoLabel)
	assert.ErrorIs(t, s.Relabel(9, 1), ErrNoEntry)

	got, err := s.LabelByName("arvore")
	require.NoError(t, err)
	assert.Equal(t, 0, got.ID)
	_, err = s.Label(77)
	assert.ErrorIs(t, err, ErrNoLabel)
	assert.Len(t, s.Coords(), 2)
}

func TestStoreMerge(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "m.json"), nil)
	require.NoError(t, err)
	s.Replace(sample())
	s.Merge(Data{
		Version: 1,
		Labels:  []Label{{ID: 0, Name: "poste"}, {ID: 1, Name: "Lixeira"}},
		Entries: []Entry{{Lat: 3, Lon: 4, Label: 0}, {Lat: 5, Lon: 6, Label: 1}},
	})
	entries := s.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, 1, entries[2].Label)
	lix, err := s.LabelByName("lixeira")
	require.NoError(t, err)
	assert.Equal(t, lix.ID, entries[3].Label)
}

func names(ls []Label) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Name
	}
	return out
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"json":          FormatJSON,
		"out.geojson":   FormatGeoJSON,
		"YAML":          FormatYAML,
		"/tmp/data.yml": FormatYAML,
		"x.toml":        FormatTOML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, sample(), f), f)
		d, err := Decode(&buf, f)
		require.NoError(t, err, f)
		assert.Equal(t, sample().Labels, d.Labels, f)
		require.Len(t, d.Entries, 2, f)
		assert.Equal(t, sample().Entries[1].Created, d.Entries[1].Created.UTC(), f)
		assert.Equal(t, "ipê", d.Entries[0].Note, f)
	}
}

func TestTOMLKeepsCreated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sample(), FormatTOML))
	assert.Contains(t, buf.String(), "created = 2024-05-01T12:00:00Z")

	d, err := Decode(&buf, FormatTOML)
	require.NoError(t, err)
	require.Len(t, d.Entries, 2)
	assert.True(t, d.Entries[1].Created.Equal(sample().Entries[1].Created))
}

func TestGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sample(), FormatGeoJSON))
	assert.True(t, strings.Contains(buf.String(), `"FeatureCollection"`))
	assert.True(t, strings.Contains(buf.String(), `-54.55`))

	d, err := Decode(&buf, FormatGeoJSON)
	require.NoError(t, err)
	require.Len(t, d.Entries, 2)
	assert.Equal(t, -25.4930, d.Entries[0].Lat)
	assert.Equal(t, -54.5500, d.Entries[0].Lon)
	assert.Equal(t, []string{"Árvore", "Poste"}, names(d.Labels))
	l0, l1 := d.Entries[0].Label, d.Entries[1].Label
	assert.NotEqual(t, l0, l1)
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map-data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1}`), 0o644))

	changed := make(chan struct{}, 4)
	w, err := Watch(path, 20*time.Millisecond, func() { changed <- struct{}{} })
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	t.Cleanup(func() { w.Close() })

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"labels":[]}`), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	assert.NoError(t, w.Close())
}
