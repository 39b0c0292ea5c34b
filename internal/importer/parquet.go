package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"librarysim/internal/catalog"
)

// parquetRecord is the row layout of an imported parquet file.
type parquetRecord struct {
	Name string `parquet:"name"`
	ID   int64  `parquet:"id"`
	Year int64  `parquet:"year"`
}

func readParquetFile(path string) ([]catalog.Book, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return readParquetAt(file, info.Size())
}

func readParquet(r io.Reader) ([]catalog.Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read parquet body: %w", err)
	}
	return readParquetAt(bytes.NewReader(data), int64(len(data)))
}

func readParquetAt(r io.ReaderAt, size int64) ([]catalog.Book, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[parquetRecord](pf)
	defer reader.Close()

	var books []catalog.Book
	rows := make([]parquetRecord, 128)
	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			books = append(books, catalog.Book{Name: row.Name, ID: int(row.ID), Year: int(row.Year)})
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
	}
	return books, nil
}
