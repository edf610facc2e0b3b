package usecase

import (
	"context"
	"fmt"
	"log"
)

// Transaction é uma saga simples: executa as operações em ordem e, se uma falhar,
// desfaz as anteriores na ordem inversa.
type Transaction struct {
	steps []step
}

type step struct {
	name       string
	fn         func(context.Context) error
	compensate func(context.Context) error
}

func NewTransaction() *Transaction {
	return &Transaction{}
}

// Add registra uma operação. compensate pode ser nil quando não há o que desfazer.
func (t *Transaction) Add(name string, fn, compensate func(context.Context) error) {
	t.steps = append(t.steps, step{name: name, fn: fn, compensate: compensate})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, s := range t.steps {
		if err := s.fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operação '%s' falhou: %w (desfeitas %d operações)", s.name, err, i)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAt int) {
	for i := failedAt - 1; i >= 0; i-- {
		s := t.steps[i]
		if s.compensate == nil {
			continue
		}
		if err := s.compensate(ctx); err != nil {
			log.Printf("⚠️ Compensação '%s' falhou: %v (risco de inconsistência!)", s.name, err)
		}
	}
}
