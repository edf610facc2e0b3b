package reconcile

import "github.com/xavierca1/lead-reconciliation/internal/entity"

// Sufixo usado quando o lead já tem uma coluna com o mesmo nome da coluna do aluno.
const rightSuffix = "_pacto"

// Merge faz o left join dos leads com os alunos via resultado do match.
// Toda linha da esquerda sai exatamente uma vez, na mesma ordem e com todas as colunas
// originais. Sem match, as colunas anexadas ficam nil. O lado direito é deduplicado
// pelo nome normalizado mantendo o último registro.
// results[i] corresponde a left.Records[i].
func Merge(left *entity.Dataset, results []entity.MatchResult, right *entity.Dataset, rightNameField string, attach []string) *entity.Dataset {
	if left == nil {
		left = &entity.Dataset{}
	}

	index := make(map[string]entity.Record)
	if right != nil {
		deduped := DedupKeepLast(right, func(r entity.Record) string {
			return Normalize(r[rightNameField])
		})
		for _, rec := range deduped.Records {
			if key := Normalize(rec[rightNameField]); key != "" {
				index[key] = rec
			}
		}
	}

	out := &entity.Dataset{Columns: append([]string(nil), left.Columns...)}
	out.Columns = appendColumn(out.Columns, left, entity.ColMatchScore)

	names := make([]string, len(attach))
	for i, col := range attach {
		names[i] = col
		if left.HasColumn(col) {
			names[i] = col + rightSuffix
		}
		out.Columns = append(out.Columns, names[i])
	}

	for i, rec := range left.Records {
		row := rec.Clone()

		var res entity.MatchResult
		if i < len(results) {
			res = results[i]
		}
		row[entity.ColMatchScore] = res.Score

		var match entity.Record
		if res.Matched {
			match = index[res.Candidate]
		}
		for j, col := range attach {
			if match == nil {
				row[names[j]] = nil
				continue
			}
			row[names[j]] = match[col]
		}

		out.Records = append(out.Records, row)
	}

	return out
}

// DedupKeepLast remove linhas com a mesma chave, ficando com a última ocorrência.
// As sobreviventes mantêm a posição relativa original.
func DedupKeepLast(ds *entity.Dataset, key func(entity.Record) string) *entity.Dataset {
	if ds == nil {
		return &entity.Dataset{}
	}

	last := make(map[string]int, len(ds.Records))
	for i, rec := range ds.Records {
		last[key(rec)] = i
	}

	return filterIndexed(ds, func(i int, rec entity.Record) bool {
		return last[key(rec)] == i
	})
}

func filterIndexed(ds *entity.Dataset, keep func(int, entity.Record) bool) *entity.Dataset {
	out := &entity.Dataset{Columns: append([]string(nil), ds.Columns...)}
	for i, rec := range ds.Records {
		if keep(i, rec) {
			out.Records = append(out.Records, rec.Clone())
		}
	}
	return out
}

func appendColumn(cols []string, ds *entity.Dataset, name string) []string {
	if ds.HasColumn(name) {
		return cols
	}
	return append(cols, name)
}
