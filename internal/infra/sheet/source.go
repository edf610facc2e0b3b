package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

const exportURL = "https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s"

// Source lê a planilha de leads de MKT como CSV: arquivo local ou export do Google Sheets.
type Source struct {
	path string
	url  string
	http *http.Client
}

// NewFileSource lê de um CSV local (export manual da planilha).
func NewFileSource(path string) *Source {
	return &Source{path: path}
}

// NewGoogleSource usa o export CSV público da aba.
func NewGoogleSource(spreadsheetID, sheetName string) *Source {
	return NewURLSource(fmt.Sprintf(exportURL, url.PathEscape(spreadsheetID), url.QueryEscape(sheetName)))
}

func NewURLSource(u string) *Source {
	return &Source{url: u, http: &http.Client{Timeout: 30 * time.Second}}
}

// Fetch devolve a planilha com as colunas na ordem do cabeçalho.
func (s *Source) Fetch(ctx context.Context) (*entity.Dataset, error) {
	if s.path != "" {
		f, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("erro ao abrir planilha %s: %w", s.path, err)
		}
		defer f.Close()
		return ReadCSV(f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro ao baixar planilha: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("planilha indisponível (status %d)", resp.StatusCode)
	}
	return ReadCSV(resp.Body)
}

// ReadCSV aceita ',' ou ';' (export do Excel em pt-BR) e ignora o BOM.
func ReadCSV(r io.Reader) (*entity.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(string(data), "\ufeff")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.Comma = detectComma(text)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv inválido: %w", err)
	}
	if len(rows) == 0 {
		return &entity.Dataset{}, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	ds := &entity.Dataset{Columns: header}
	for _, row := range rows[1:] {
		rec := make(entity.Record, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func detectComma(text string) rune {
	firstLine, _, _ := strings.Cut(text, "\n")
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		return ';'
	}
	return ','
}
