package entity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Record é uma linha tabular (campo -> valor). Campo ausente = valor ausente, nunca erro.
type Record map[string]any

// Dataset é um conjunto de Records com ordem de colunas estável.
type Dataset struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// NewDataset monta o dataset a partir das linhas cruas (ex: páginas da API).
// Colunas seguem a ordem da primeira aparição; dentro de uma mesma linha, ordem alfabética.
func NewDataset(records []Record) *Dataset {
	ds := &Dataset{Records: records}
	seen := make(map[string]bool)

	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
			ds.Columns = append(ds.Columns, k)
		}
	}

	return ds
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

func (d *Dataset) HasColumn(name string) bool {
	if d == nil {
		return false
	}
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// FirstColumn devolve a primeira coluna existente entre os candidatos ("nome", "Nome"...).
func (d *Dataset) FirstColumn(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if d.HasColumn(c) {
			return c, true
		}
	}
	return "", false
}

// Clone copia colunas e linhas; os valores em si são compartilhados.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return &Dataset{}
	}
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Records: make([]Record, len(d.Records)),
	}
	for i, rec := range d.Records {
		out.Records[i] = rec.Clone()
	}
	return out
}

// Filter devolve um novo dataset com as mesmas colunas e apenas as linhas aceitas.
func (d *Dataset) Filter(keep func(Record) bool) *Dataset {
	if d == nil {
		return &Dataset{}
	}
	out := &Dataset{Columns: append([]string(nil), d.Columns...)}
	for _, rec := range d.Records {
		if keep(rec) {
			out.Records = append(out.Records, rec.Clone())
		}
	}
	return out
}

// Rows achata o dataset em texto, na ordem das colunas. Usado pelos writers.
func (d *Dataset) Rows() [][]string {
	rows := make([][]string, 0, d.Len())
	for _, rec := range d.Records {
		row := make([]string, len(d.Columns))
		for i, c := range d.Columns {
			row[i] = rec.String(c)
		}
		rows = append(rows, row)
	}
	return rows
}

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String lê o campo como texto. nil e campo ausente viram "".
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case map[string]any:
		// A Pacto às vezes manda objetos {"descricao": ...} no lugar de texto
		if s, ok := t["descricao"].(string); ok {
			return s
		}
		if s, ok := t["nome"].(string); ok {
			return s
		}
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Int lê o campo como inteiro; 0 quando ausente ou inválido.
func (r Record) Int(field string) int {
	switch t := r[field].(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// Present indica se o campo existe e não é nulo nem texto vazio.
func (r Record) Present(field string) bool {
	v, ok := r[field]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}
