// Package importer loads book records from data files into the catalog.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"librarysim/internal/catalog"
)

// Supported formats.
const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatXML     = "xml"
	FormatYAML    = "yaml"
	FormatParquet = "parquet"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported import format")
	ErrMalformed         = errors.New("malformed import data")
)

// Adder receives one call per imported record. *catalog.Catalog satisfies it.
type Adder interface {
	Add(b catalog.Book) catalog.AddResult
}

// Report summarises an import.
type Report struct {
	Titles int `json:"titles"` // records that created a catalog row
	Copies int `json:"copies"` // records that added a copy to an existing row
}

func (r Report) Records() int {
	return r.Titles + r.Copies
}

// FormatOf maps a file name to its format by extension.
func FormatOf(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xml":
		return FormatXML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ReadFile imports every record in path, picking the format from the file
// extension.
func ReadFile(dst Adder, path string) (Report, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Report{}, err
	}

	if format == FormatParquet {
		books, err := readParquetFile(path)
		if err != nil {
			return Report{}, err
		}
		return addAll(dst, books), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Read(dst, format, f)
}

// Read imports records of the given format from r. Parquet needs random
// access and is read fully into memory first.
func Read(dst Adder, format string, r io.Reader) (Report, error) {
	books, err := decode(format, r)
	if err != nil {
		return Report{}, err
	}
	return addAll(dst, books), nil
}

// decode wraps every reader failure in ErrMalformed; the underlying error
// stays in the chain.
func decode(format string, r io.Reader) ([]catalog.Book, error) {
	var read func(io.Reader) ([]catalog.Book, error)
	switch strings.ToLower(format) {
	case FormatCSV:
		read = readCSV
	case FormatJSON:
		read = readJSON
	case FormatXML:
		read = readXML
	case FormatYAML, "yml":
		read = readYAML
	case FormatParquet:
		read = readParquet
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	books, err := read(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return books, nil
}

func addAll(dst Adder, books []catalog.Book) Report {
	var rep Report
	for _, b := range books {
		if dst.Add(b) == catalog.AddedNew {
			rep.Titles++
		} else {
			rep.Copies++
		}
	}
	return rep
}
