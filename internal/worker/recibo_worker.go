package worker

// recibo_worker.go
// Genera el ticket PDF de la venta y lo envía por email al cliente. El SMTP
// externo va detrás de un circuit breaker: con el servidor caído los envíos
// fallan rápido y el job se reencola en lugar de colgar al worker.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/config"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/infra"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReciboJobPayload es el sobre del trabajo de recibo.
type ReciboJobPayload struct {
	VentaID string `json:"venta_id"`
	ToEmail string `json:"to_email"`
}

type ReciboWorker struct {
	ventaRepo repository.VentaRepository
	mailer    *infra.Mailer
	breaker   *infra.CircuitBreaker
	cfg       *config.Config
}

func NewReciboWorker(ventaRepo repository.VentaRepository, mailer *infra.Mailer, breaker *infra.CircuitBreaker, cfg *config.Config) *ReciboWorker {
	return &ReciboWorker{ventaRepo: ventaRepo, mailer: mailer, breaker: breaker, cfg: cfg}
}

func (w *ReciboWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReciboJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Payload malformado: reintentar no lo va a arreglar.
		log.Error().Err(err).Msg("recibo_worker: payload inválido, descartado")
		return nil
	}
	ventaID, err := uuid.Parse(payload.VentaID)
	if err != nil {
		log.Error().Str("venta_id", payload.VentaID).Msg("recibo_worker: venta_id inválido, descartado")
		return nil
	}

	venta, err := w.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		return fmt.Errorf("recibo_worker: cargar venta %s: %w", ventaID, err)
	}

	pdfPath, err := infra.GenerarTicketPDF(venta, w.cfg.NombreComercio, w.cfg.PDFStoragePath)
	if err != nil {
		return fmt.Errorf("recibo_worker: generar PDF de %s: %w", venta.NumeroVenta, err)
	}

	if payload.ToEmail == "" {
		log.Info().Str("venta", venta.NumeroVenta).Str("pdf", pdfPath).
			Msg("recibo_worker: ticket generado, sin email de destino")
		return nil
	}

	subject := fmt.Sprintf("%s - Recibo %s", w.cfg.NombreComercio, venta.NumeroVenta)
	body := fmt.Sprintf("Gracias por su compra.\n\nRecibo: %s\nTotal: $%s\n",
		venta.NumeroVenta, venta.Total.StringFixed(2))

	err = w.breaker.Execute(func() error {
		return w.mailer.SendTicket(payload.ToEmail, subject, body, pdfPath)
	})
	if err != nil {
		return fmt.Errorf("recibo_worker: enviar %s a %s: %w", venta.NumeroVenta, payload.ToEmail, err)
	}

	log.Info().Str("venta", venta.NumeroVenta).Str("to", payload.ToEmail).
		Msg("recibo_worker: recibo enviado")
	return nil
}
