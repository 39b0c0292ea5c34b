package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarysim/internal/catalog"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFileFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    []catalog.Book
	}{
		{
			name: "xml",
			file: "books.xml",
			content: `<?xml version="1.0"?>
<data>
    <book>
        <name>E</name>
        <id>4</id>
        <year>1999</year>
    </book>
    <book>
        <name>F</name>
        <id>5</id>
        <year>2009</year>
    </book>
</data>`,
			want: []catalog.Book{{Name: "E", ID: 4, Year: 1999}, {Name: "F", ID: 5, Year: 2009}},
		},
		{
			name:    "csv",
			file:    "books.csv",
			content: "name,id,year\nG,6,2012\nH,7,2002",
			want:    []catalog.Book{{Name: "G", ID: 6, Year: 2012}, {Name: "H", ID: 7, Year: 2002}},
		},
		{
			name:    "csv columns reordered",
			file:    "books.csv",
			content: "year, id, name\n2012, 6, G\n",
			want:    []catalog.Book{{Name: "G", ID: 6, Year: 2012}},
		},
		{
			name: "json",
			file: "books.json",
			content: `{
  "books": [
    {"name": "I", "id": 8, "year": 2016},
    {"name": "H", "id": 7, "year": 2002}
  ]
}`,
			want: []catalog.Book{{Name: "I", ID: 8, Year: 2016}, {Name: "H", ID: 7, Year: 2002}},
		},
		{
			name:    "yaml",
			file:    "books.yml",
			content: "books:\n  - name: J\n    id: 9\n    year: 1984\n",
			want:    []catalog.Book{{Name: "J", ID: 9, Year: 1984}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := catalog.New()
			rep, err := ReadFile(c, writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), rep.Titles)

			var got []catalog.Book
			for _, e := range c.Entries() {
				got = append(got, e.Book)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadFileParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.parquet")
	require.NoError(t, parquet.WriteFile(path, []parquetRecord{
		{Name: "K", ID: 10, Year: 2001},
		{Name: "K", ID: 10, Year: 2001},
	}))

	c := catalog.New()
	rep, err := ReadFile(c, path)
	require.NoError(t, err)
	assert.Equal(t, Report{Titles: 1, Copies: 1}, rep)

	entry, ok := c.FindByID(10)
	require.True(t, ok)
	assert.Equal(t, 2, entry.Total)
}

func TestReadCountsCopiesAgainstExistingCatalog(t *testing.T) {
	c := catalog.New()
	c.Add(catalog.Book{Name: "H", ID: 7, Year: 2002})

	rep, err := Read(c, FormatCSV, strings.NewReader("name,id,year\nH,7,2002\nI,8,2016\n"))
	require.NoError(t, err)
	assert.Equal(t, Report{Titles: 1, Copies: 1}, rep)
	assert.Equal(t, 2, rep.Records())
	assert.Equal(t, 2, c.Len())
}

func TestReadErrors(t *testing.T) {
	c := catalog.New()

	_, err := ReadFile(c, writeFile(t, "books.txt", "x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Read(c, "toml", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Read(c, FormatCSV, strings.NewReader("name,year\nA,1999\n"))
	assert.ErrorContains(t, err, `missing "id"`)

	_, err = Read(c, FormatCSV, strings.NewReader("name,id,year\nA,x,1999\n"))
	assert.ErrorContains(t, err, "bad id")

	_, err = Read(c, FormatJSON, strings.NewReader("{"))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ReadFile(c, filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	assert.Zero(t, c.Len())
}
