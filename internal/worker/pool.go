package worker

// pool.go
// Cola de trabajos sobre listas Redis: el dispatcher encola con LPUSH y los
// workers desencolan con BRPOP. Hoy la única cola es la de recibos (ticket
// PDF + email), pero el sobre Job es genérico.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueRecibos = "jobs:recibos"

	maxAttempts = 3
)

// Job es el sobre genérico de toda tarea asíncrona.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher encola trabajos. La venta se confirma sin esperar al PDF ni al
// SMTP: si Redis está caído el error se loguea y la venta sigue adelante.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRecibo encola la generación y envío del recibo de una venta.
func (d *Dispatcher) EnqueueRecibo(ctx context.Context, payload ReciboJobPayload) error {
	if d == nil || d.rdb == nil {
		return nil
	}
	return d.enqueue(ctx, QueueRecibos, "recibo", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handler procesa un trabajo desencolado. Devuelve error para reintentar;
// agotados los intentos el trabajo pasa a la DLQ.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// StartWorkerPool lanza numWorkers goroutines consumiendo la cola de recibos.
// Cada goroutine bloquea en BRPOP, cero CPU en reposo.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, recibos Handler) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, recibos)
	}
	log.Info().Msgf("worker pool iniciado con %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, recibos Handler) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d apagándose", id)
			return
		default:
			// Pop bloqueante con timeout de 5s para volver a chequear ctx.
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueRecibos).Result()
			if err != nil {
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[0], result[1], recibos)
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, queue, raw string, recibos Handler) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("job ilegible, descartado")
		return
	}

	err := recibos.Process(ctx, job.Payload)
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= maxAttempts {
		log.Error().Err(err).Str("type", job.Type).Int("attempts", job.Attempts).
			Msg("job agotó reintentos, va a DLQ")
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}

	log.Warn().Err(err).Str("type", job.Type).Int("attempts", job.Attempts).
		Msg("job falló, reencolando")
	if encoded, mErr := json.Marshal(job); mErr == nil {
		_ = rdb.LPush(ctx, queue, encoded).Err()
	}
}
