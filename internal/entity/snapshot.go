package entity

import "time"

// Snapshot é uma gravação completa de uma aba (Historico, Agendamentos, Auditoria...).
// Quem persiste grava tudo ou nada; a ordem das colunas vem de Data.Columns.
type Snapshot struct {
	RunID   string
	Tab     string
	TakenAt time.Time
	Data    *Dataset
}
