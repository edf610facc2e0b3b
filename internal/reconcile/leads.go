package reconcile

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// Remove o sufixo " - 10/10 ..." que as vendedoras colocam depois do nome.
var dateSuffix = regexp.MustCompile(`\s*-\s*\d{2}/\d{2}.*`)

// SalespersonColumn liga uma coluna da planilha ("Nomes agendados (X)") à vendedora X.
type SalespersonColumn struct {
	Column string `yaml:"column" json:"column"`
	Name   string `yaml:"name" json:"name"`
}

var DefaultSalespersonColumns = []SalespersonColumn{
	{Column: "Nomes agendados (Daniela Dalla)", Name: "Daniela Dalla"},
	{Column: "Nomes agendados (Daniela Teixeira)", Name: "Daniela Teixeira"},
}

// MonthName devolve o nome do mês em português.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// ParseLeadSheet transforma a planilha de MKT em leads do mês de now.
// Cada célula de vendedora pode ter vários nomes, um por linha.
func ParseLeadSheet(sheet *entity.Dataset, now time.Time, columns []SalespersonColumn) []entity.Lead {
	if sheet.Len() == 0 {
		return nil
	}
	if len(columns) == 0 {
		columns = DefaultSalespersonColumns
	}

	monthCol := ""
	for _, c := range sheet.Columns {
		if strings.Contains(c, "Mês") || strings.Contains(c, "Mes") {
			monthCol = c
			break
		}
	}
	if monthCol == "" {
		return nil
	}

	// Caser guarda estado: um por chamada
	upper := cases.Upper(language.BrazilianPortuguese)
	month := MonthName(now.Month())
	wanted := upper.String(month)

	var leads []entity.Lead
	for _, row := range sheet.Records {
		if upper.String(strings.TrimSpace(row.String(monthCol))) != wanted {
			continue
		}

		origin := valueOr(row, "Origem", "Desconhecido")
		origin2 := valueOr(row, "Origem_2", "Desconhecido")
		leadDate := strings.TrimSpace(row.String("Data"))

		for _, sc := range columns {
			for _, raw := range strings.Split(row.String(sc.Column), "\n") {
				name := cleanLeadName(raw)
				if name == "" {
					continue
				}
				leads = append(leads, entity.Lead{
					Name:           upper.String(name),
					Origin:         origin,
					Origin2:        origin2,
					LeadDate:       leadDate,
					Salesperson:    sc.Name,
					ReferenceMonth: month,
				})
			}
		}
	}

	return leads
}

// cleanLeadName tira o sufixo de data e rejeita lixo ("0", "-", nomes curtos).
func cleanLeadName(raw string) string {
	name := strings.TrimSpace(dateSuffix.ReplaceAllString(raw, ""))
	if len([]rune(name)) <= 2 || name == "0" || name == "-" {
		return ""
	}
	return name
}

func valueOr(row entity.Record, field, fallback string) string {
	if _, ok := row[field]; !ok {
		return fallback
	}
	return row.String(field)
}
