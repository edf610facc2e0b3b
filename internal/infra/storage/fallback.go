package storage

import (
	"context"
	"errors"
	"log"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

var (
	ErrNothingToWrite = errors.New("dataset vazio, nada salvo")
	ErrNoPrimary      = errors.New("destino principal não configurado")
	ErrNoFallback     = errors.New("backup local não configurado")
)

const (
	PathPrimary  = "primary"
	PathFallback = "fallback"
	PathNone     = "none"
)

// Sink é qualquer destino que grava uma aba inteira (Postgres, SQLite).
type Sink interface {
	Name() string
	Save(ctx context.Context, snap entity.Snapshot) (int, error)
}

type Outcome struct {
	Target string `json:"target"`
	Rows   int    `json:"rows"`
	Err    error  `json:"-"`
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// WriteResult diz exatamente onde os dados foram parar.
type WriteResult struct {
	Primary  Outcome  `json:"primary"`
	Fallback *Outcome `json:"fallback,omitempty"`
}

func (r WriteResult) Path() string {
	if r.Primary.OK() {
		return PathPrimary
	}
	if r.Fallback != nil && r.Fallback.OK() {
		return PathFallback
	}
	return PathNone
}

// Err devolve o erro final: nil se algum destino gravou.
func (r WriteResult) Err() error {
	switch r.Path() {
	case PathPrimary, PathFallback:
		return nil
	}
	if r.Fallback != nil {
		return errors.Join(r.Primary.Err, r.Fallback.Err)
	}
	return r.Primary.Err
}

// FallbackWriter tenta o principal e, se falhar, grava no backup local.
type FallbackWriter struct {
	Primary  Sink
	Fallback Sink
}

func NewFallbackWriter(primary, fallback Sink) *FallbackWriter {
	return &FallbackWriter{Primary: primary, Fallback: fallback}
}

func (w *FallbackWriter) Write(ctx context.Context, snap entity.Snapshot) WriteResult {
	if snap.Data.Len() == 0 {
		log.Printf("⚠️ O dataset para '%s' está vazio. Nada salvo.", snap.Tab)
		return WriteResult{Primary: Outcome{Target: w.primaryName(), Err: ErrNothingToWrite}}
	}

	log.Printf("💾 Salvando %d linhas em '%s'...", snap.Data.Len(), snap.Tab)

	res := WriteResult{Primary: w.save(ctx, w.Primary, snap, ErrNoPrimary)}
	if res.Primary.OK() {
		log.Printf("✅ SUCESSO! '%s' salvo em %s", snap.Tab, res.Primary.Target)
		return res
	}
	log.Printf("❌ Falha ao gravar '%s' no principal: %v", snap.Tab, res.Primary.Err)

	// sem backup o resultado registra a ausência, para o erro final dizer o que faltou
	fb := w.save(ctx, w.Fallback, snap, ErrNoFallback)
	res.Fallback = &fb
	if fb.OK() {
		log.Printf("✅ SALVO LOCALMENTE: '%s' em %s", snap.Tab, fb.Target)
	} else {
		log.Printf("❌ Erro crítico: não foi possível salvar nem localmente: %v", fb.Err)
	}
	return res
}

// save grava num destino; missing é o erro do papel do destino quando ele não existe.
func (w *FallbackWriter) save(ctx context.Context, sink Sink, snap entity.Snapshot, missing error) Outcome {
	if sink == nil {
		return Outcome{Target: PathNone, Err: missing}
	}
	n, err := sink.Save(ctx, snap)
	return Outcome{Target: sink.Name(), Rows: n, Err: err}
}

func (w *FallbackWriter) primaryName() string {
	if w.Primary == nil {
		return PathNone
	}
	return w.Primary.Name()
}
