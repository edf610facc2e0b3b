package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	_ "modernc.org/sqlite"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

// SQLiteStore é o backup local: cada gravação vira uma tabela nova
// BACKUP_<aba>_<YYYYMMDD_HHMM>, com as colunas do dataset em TEXT.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir backup %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("backup %s inacessível: %w", path, err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Name() string {
	return "sqlite:" + s.path
}

// BackupTable monta o nome da tabela de backup.
func BackupTable(snap entity.Snapshot) string {
	return fmt.Sprintf("BACKUP_%s_%s", sanitize(snap.Tab), snap.TakenAt.Format("20060102_1504"))
}

func (s *SQLiteStore) Save(ctx context.Context, snap entity.Snapshot) (int, error) {
	table := BackupTable(snap)
	columns := uniqueColumns(snap.Data.Columns)
	if len(columns) == 0 {
		return 0, ErrNothingToWrite
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Mesma aba no mesmo minuto: a última gravação vence
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(table)); err != nil {
		return 0, fmt.Errorf("erro ao limpar %s: %w", table, err)
	}

	defs := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quote(c) + " TEXT"
		marks[i] = "?"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quote(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return 0, fmt.Errorf("erro ao criar %s: %w", table, err)
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quote(c)
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, row := range snap.Data.Rows() {
		args := make([]any, len(row))
		for j, v := range row {
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("erro na linha %d de %s: %w", i, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return snap.Data.Len(), nil
}

// Load lê uma tabela de backup de volta (colunas na ordem da criação).
func (s *SQLiteStore) Load(ctx context.Context, table string) (*entity.Dataset, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quote(table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	ds := &entity.Dataset{Columns: cols}
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(entity.Record, len(cols))
		for i, c := range cols {
			rec[c] = vals[i].String
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, rows.Err()
}

// Tables lista as tabelas de backup existentes, mais antigas primeiro.
func (s *SQLiteStore) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE 'BACKUP\_%' ESCAPE '\' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, s)
}

// SQLite não diferencia maiúsculas em nomes de coluna: "nome" e "Nome" colidem.
func uniqueColumns(cols []string) []string {
	seen := make(map[string]int, len(cols))
	out := make([]string, len(cols))
	for i, c := range cols {
		key := strings.ToLower(c)
		n := seen[key]
		seen[key] = n + 1
		if n == 0 {
			out[i] = c
			continue
		}
		out[i] = fmt.Sprintf("%s_%d", c, n+1)
	}
	return out
}
