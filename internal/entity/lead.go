package entity

// Colunas da planilha de leads já tratada
const (
	ColLeadName       = "ALUNO"
	ColOrigin         = "ORIGEM"
	ColOrigin2        = "ORIGEM_2"
	ColLeadDate       = "DATA_LEAD"
	ColSalesperson    = "VENDEDORA"
	ColReferenceMonth = "MES_REFERENCIA"
)

var LeadColumns = []string{ColLeadName, ColOrigin, ColOrigin2, ColLeadDate, ColSalesperson, ColReferenceMonth}

// Lead vem da planilha de MKT. Um mesmo aluno pode aparecer mais de uma vez (um por contato).
type Lead struct {
	Name           string `json:"aluno"`
	Origin         string `json:"origem"`
	Origin2        string `json:"origem_2"`
	LeadDate       string `json:"data_lead"`
	Salesperson    string `json:"vendedora"`
	ReferenceMonth string `json:"mes_referencia"`
}

func (l Lead) ToRecord() Record {
	return Record{
		ColLeadName:       l.Name,
		ColOrigin:         l.Origin,
		ColOrigin2:        l.Origin2,
		ColLeadDate:       l.LeadDate,
		ColSalesperson:    l.Salesperson,
		ColReferenceMonth: l.ReferenceMonth,
	}
}

// LeadDataset projeta os leads nas colunas padrão.
func LeadDataset(leads []Lead) *Dataset {
	ds := &Dataset{Columns: append([]string(nil), LeadColumns...)}
	for _, l := range leads {
		ds.Records = append(ds.Records, l.ToRecord())
	}
	return ds
}
