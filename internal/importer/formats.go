package importer

import (
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"librarysim/internal/catalog"
)

// readCSV expects a header naming the name, id and year columns in any
// order.
func readCSV(r io.Reader) ([]catalog.Book, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range []string{"name", "id", "year"} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("csv header missing %q column", want)
		}
	}

	var books []catalog.Book
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		id, err := strconv.Atoi(strings.TrimSpace(rec[cols["id"]]))
		if err != nil {
			return nil, fmt.Errorf("csv line %d: bad id: %w", line, err)
		}
		year, err := strconv.Atoi(strings.TrimSpace(rec[cols["year"]]))
		if err != nil {
			return nil, fmt.Errorf("csv line %d: bad year: %w", line, err)
		}
		books = append(books, catalog.Book{Name: rec[cols["name"]], ID: id, Year: year})
	}
	return books, nil
}

type jsonDocument struct {
	Books []catalog.Book `json:"books"`
}

func readJSON(r io.Reader) ([]catalog.Book, error) {
	var doc jsonDocument
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return doc.Books, nil
}

type xmlDocument struct {
	XMLName xml.Name       `xml:"data"`
	Books   []catalog.Book `xml:"book"`
}

func readXML(r io.Reader) ([]catalog.Book, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	return doc.Books, nil
}

type yamlDocument struct {
	Books []catalog.Book `yaml:"books"`
}

func readYAML(r io.Reader) ([]catalog.Book, error) {
	var doc yamlDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return doc.Books, nil
}
