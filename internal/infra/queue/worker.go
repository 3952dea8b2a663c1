package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EnrichmentService define o contrato que o worker precisa do motor de
// enriquecimento. Mantém o worker desacoplado do usecase.
type EnrichmentService interface {
	EnrichHashes(ctx context.Context, cid string, hashes []string) (enriched int, err error)
}

type Worker struct {
	Channel  *amqp.Channel
	Enricher EnrichmentService
}

func NewWorker(ch *amqp.Channel, enricher EnrichmentService) *Worker {
	return &Worker{
		Channel:  ch,
		Enricher: enricher,
	}
}

func (w *Worker) Start(queueName string) {
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
		log.Fatalf("❌ Falha ao registrar consumidor RabbitMQ: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload EnrichmentPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] JSON Inválido: %s", err)
				// Mensagem podre (malformada). Rejeita sem requeue para não travar a fila.
				d.Nack(false, false)
				continue
			}

			log.Printf("⚙️ [WORKER] Enriquecendo %d hashes do cid=%s (origem: %s)",
				len(payload.Hashes), payload.CID, payload.Origin)

			enriched, err := w.Enricher.EnrichHashes(context.Background(), payload.CID, payload.Hashes)
			if err != nil {
				// Erro de batch inteiro (ex: banco fora). Vai para a DLQ;
				// os registros continuam como candidatos no próximo sweep.
				log.Printf("❌ [WORKER] Erro no batch de enriquecimento: %s", err)
				d.Nack(false, false)
				continue
			}

			log.Printf("✅ [WORKER] Batch concluído: %d enriquecidos de %d hashes", enriched, len(payload.Hashes))
			d.Ack(false)
		}
	}()

	log.Printf(" [*] Worker rodando e aguardando na fila '%s'", queueName)
	<-forever
}
