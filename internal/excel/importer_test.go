package excel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/wordsrs/pkg/models"
)

// memWriter keeps created items and skips (term, level) pairs it already has.
type memWriter struct {
	items []models.LearningItem
	err   error
}

func (w *memWriter) CreateItems(_ context.Context, items []models.LearningItem) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	created := 0
	for _, it := range items {
		exists := false
		for _, have := range w.items {
			if have.Term == it.Term && have.LevelTag == it.LevelTag {
				exists = true
				break
			}
		}
		if !exists {
			w.items = append(w.items, it)
			created++
		}
	}
	return created, nil
}

func writeXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "words.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportExcel(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{
		{"Term", "Translation", "Level", "Pronunciation"},
		{"casa", "house", 2, "ˈka.sa"},
		{"ir (fui, ido)", "to go", "9", ""},
		{"perro", "dog", "", ""},
		{"", "orphan", 1, ""},
		{"Casa", "house again", 2, ""},
	})
	cfg := DefaultImportConfig()
	cfg.FilePath = path
	w := &memWriter{}

	res, err := ImportItems(context.Background(), cfg, w)
	require.NoError(t, err)

	assert.Equal(t, 5, res.TotalProcessed)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Row 5")

	require.Len(t, w.items, 3)
	assert.Equal(t, "casa", w.items[0].Term)
	assert.Equal(t, 2, w.items[0].LevelTag)
	assert.Equal(t, "ˈka.sa", w.items[0].Pronunciation)
	assert.Equal(t, "ir", w.items[1].Term)
	assert.Equal(t, models.MaxLevel, w.items[1].LevelTag)
	assert.Equal(t, models.MinLevel, w.items[2].LevelTag)
	for _, it := range w.items {
		assert.True(t, it.IsNew())
		assert.Equal(t, models.DefaultEaseFactor, it.EaseFactor)
	}
}

func TestImportCSV(t *testing.T) {
	path := writeFile(t, "words.csv", "term,translation,level\nuno,one,1\ndos,two,x\ntres,,3\n\nuno,one,1\n")
	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.DefaultLevel = 4
	w := &memWriter{}

	res, err := ImportItems(context.Background(), cfg, w)
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalProcessed)
	assert.Equal(t, 2, res.Created)
	assert.Len(t, res.Errors, 1)
	require.Len(t, w.items, 2)
	assert.Equal(t, 4, w.items[1].LevelTag, "unparseable level falls back to default")
}

func TestImportJSON(t *testing.T) {
	path := writeFile(t, "words.json", `[
		{"term": "gato", "translation": "cat", "level": 3},
		{"term": "sol", "translation": "sun", "level": "0", "pronunciation": "sol"},
		{"term": "luna", "translation": "moon"}
	]`)
	w := &memWriter{}

	res, err := ImportItems(context.Background(), ImportConfig{FilePath: path}, w)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Created)
	assert.Equal(t, []int{3, 1, 1}, []int{w.items[0].LevelTag, w.items[1].LevelTag, w.items[2].LevelTag})
	assert.Equal(t, "sol", w.items[1].Pronunciation)
}

func TestImportReimportSkipsExisting(t *testing.T) {
	path := writeFile(t, "words.json", `[{"term": "gato", "translation": "cat"}]`)
	w := &memWriter{}

	_, err := ImportItems(context.Background(), ImportConfig{FilePath: path}, w)
	require.NoError(t, err)
	res, err := ImportItems(context.Background(), ImportConfig{FilePath: path}, w)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.Skipped)
}

func TestImportErrors(t *testing.T) {
	ctx := context.Background()

	_, err := ImportItems(ctx, ImportConfig{FilePath: "words.txt"}, &memWriter{})
	assert.Error(t, err)

	_, err = ImportItems(ctx, ImportConfig{FilePath: filepath.Join(t.TempDir(), "missing.csv"), TermColumn: "A", TranslationColumn: "B"}, &memWriter{})
	assert.Error(t, err)

	bad := writeFile(t, "bad.json", `{"term": "not an array"}`)
	_, err = ImportItems(ctx, ImportConfig{FilePath: bad}, &memWriter{})
	assert.Error(t, err)

	csvPath := writeFile(t, "words.csv", "a,b\n")
	_, err = ImportItems(ctx, ImportConfig{FilePath: csvPath, TermColumn: "A"}, &memWriter{})
	assert.Error(t, err, "translation column is required")

	store := errors.New("store down")
	ok := writeFile(t, "ok.json", `[{"term": "gato", "translation": "cat"}]`)
	_, err = ImportItems(ctx, ImportConfig{FilePath: ok}, &memWriter{err: store})
	assert.ErrorIs(t, err, store)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int
	}{
		{float64(4), 4},
		{"2", 2},
		{" 5 ", 5},
		{"0", 1},
		{float64(12), 6},
		{"", 1},
		{"beginner", 1},
		{nil, 1},
		{true, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in, 1), "%v", tt.in)
	}
}
