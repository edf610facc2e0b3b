package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
	"github.com/xavierca1/lead-reconciliation/internal/infra/http/middleware"
)

// ConversionNotifier entrega a conversão no destino final (backend de vendas).
type ConversionNotifier interface {
	PublishConversion(ctx context.Context, payload entity.ConversionPayload) error
}

type Worker struct {
	Channel  *amqp.Channel
	Notifier ConversionNotifier
}

func NewWorker(ch *amqp.Channel, notifier ConversionNotifier) *Worker {
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
	}
}

// Start consome a fila até o ctx acabar ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	log.Printf(" [*] Worker rodando e aguardando na fila '%s'", queueName)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Worker de conversões encerrado")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal do RabbitMQ fechado")
			}
			w.Handle(ctx, d)
		}
	}
}

// Handle processa uma entrega. Falha vai para a DLQ (Nack sem requeue) para não travar a fila.
func (w *Worker) Handle(ctx context.Context, d amqp.Delivery) {
	log.Printf("📥 [WORKER] Mensagem Recebida do RabbitMQ")

	var payload entity.ConversionPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		log.Printf("❌ [WORKER] JSON Inválido: %s", err)
		d.Nack(false, false)
		return
	}

	if err := w.Notifier.PublishConversion(ctx, payload); err != nil {
		log.Printf("❌ [WORKER] Erro ao enviar %s: %s", payload.LeadName, err)
		middleware.RecordConversion(middleware.ConversionFailed)
		d.Nack(false, false)
		return
	}

	log.Printf("✅ [WORKER] Conversão de %s entregue ao backend", payload.LeadName)
	middleware.RecordConversion(middleware.ConversionSent)
	d.Ack(false)
}
