package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

// WriteCSV grava no formato que o Excel pt-BR abre direto: ';' e BOM UTF-8.
func WriteCSV(path string, ds *entity.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("erro ao criar %s: %w", path, err)
	}

	if err := EncodeCSV(f, ds); err != nil {
		f.Close()
		return fmt.Errorf("erro ao gravar %s: %w", path, err)
	}
	return f.Close()
}

func EncodeCSV(w io.Writer, ds *entity.Dataset) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if ds != nil {
		if err := cw.Write(ds.Columns); err != nil {
			return err
		}
		if err := cw.WriteAll(ds.Rows()); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
