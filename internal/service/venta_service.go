package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/infra"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/repository"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VentaService coordina el registro y la cancelación de ventas. Cada venta es
// una única transacción: encabezado, detalles, pago, descuento de stock y sus
// movimientos confirman juntos o no confirma nada.
type VentaService struct {
	repo        repository.VentaRepository
	cajaRepo    repository.CajaRepository
	clienteRepo repository.ClienteRepository
	stock       *StockService
	dispatcher  *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	cajaRepo repository.CajaRepository,
	clienteRepo repository.ClienteRepository,
	stock *StockService,
	dispatcher *worker.Dispatcher,
) *VentaService {
	return &VentaService{
		repo:        repo,
		cajaRepo:    cajaRepo,
		clienteRepo: clienteRepo,
		stock:       stock,
		dispatcher:  dispatcher,
	}
}

// runTx ejecuta fn dentro de una transacción GORM cuando hay db, o llama
// fn(nil) directo cuando db es nil (modo test unitario).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────

// RegistrarVenta registra una venta completa en una sola transacción:
//  1. resuelve la sesión de caja abierta del cajero (sin sesión no hay venta)
//  2. obtiene el número de venta de la secuencia
//  3. crea encabezado + detalles + pago
//  4. descuenta stock línea por línea bajo lock de fila, con su movimiento
//
// Si cualquier paso falla se revierte todo: nunca queda una venta sin
// movimientos de stock ni stock descontado sin venta.
func (s *VentaService) RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.ReciboResponse, error) {
	if len(req.Items) == 0 {
		return nil, apierror.Validation("la venta no tiene items")
	}
	if req.MetodoPago == "" {
		return nil, apierror.Validation("falta el método de pago")
	}

	clienteID, err := s.resolverCliente(ctx, req.ClienteID)
	if err != nil {
		return nil, err
	}

	// Totales del lado del servidor: subtotal desde las líneas, descuento e
	// IVA del request. Si el caller declara un total distinto se rechaza.
	subtotal := decimal.Zero
	detalles := make([]model.DetalleVenta, 0, len(req.Items))
	for i, item := range req.Items {
		productoID, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, apierror.Validation(fmt.Sprintf("item %d: producto_id inválido", i+1))
		}
		if item.Cantidad < 1 {
			return nil, apierror.Validation(fmt.Sprintf("item %d: la cantidad debe ser al menos 1", i+1))
		}
		if item.PrecioUnitario.IsNegative() || item.Descuento.IsNegative() {
			return nil, apierror.Validation(fmt.Sprintf("item %d: precio y descuento no pueden ser negativos", i+1))
		}
		lineaSubtotal := item.PrecioUnitario.Mul(decimal.NewFromInt(int64(item.Cantidad))).Sub(item.Descuento)
		if lineaSubtotal.IsNegative() {
			return nil, apierror.Validation(fmt.Sprintf("item %d: el descuento supera el importe de la línea", i+1))
		}
		subtotal = subtotal.Add(lineaSubtotal)
		detalles = append(detalles, model.DetalleVenta{
			ProductoID:     productoID,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Descuento:      item.Descuento,
			Subtotal:       lineaSubtotal,
		})
	}

	total := subtotal.Sub(req.Descuento).Add(req.IVA)
	if total.IsNegative() {
		return nil, apierror.Validation("el total de la venta no puede ser negativo")
	}
	if !req.Total.IsZero() && !req.Total.Equal(total) {
		return nil, apierror.Validation(fmt.Sprintf(
			"total declarado %s no coincide con el calculado %s",
			req.Total.StringFixed(2), total.StringFixed(2)))
	}

	cambio := decimal.Zero
	var referencia *string
	if req.MontoRecibido != nil {
		if req.MontoRecibido.LessThan(total) {
			return nil, apierror.Validation(fmt.Sprintf(
				"monto recibido %s es menor al total %s",
				req.MontoRecibido.StringFixed(2), total.StringFixed(2)))
		}
		cambio = req.MontoRecibido.Sub(total)
		ref := fmt.Sprintf("Recibido: %s, Cambio: %s",
			req.MontoRecibido.StringFixed(2), cambio.StringFixed(2))
		referencia = &ref
	}

	var venta model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.cajaRepo.FindSesionAbiertaPorUsuarioTx(tx, usuarioID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.Conflict("no hay sesión de caja abierta: abrir caja antes de vender")
			}
			return err
		}

		// Disponibilidad línea por línea antes de pedir número y persistir:
		// una venta que no puede completarse no consume numeración.
		for _, d := range detalles {
			if err := s.stock.VerificarDisponibilidad(tx, d.ProductoID, d.Cantidad); err != nil {
				return err
			}
		}

		num, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		numero := fmt.Sprintf("V-%s-%04d", time.Now().Format("20060102"), num)

		venta = model.Venta{
			NumeroVenta:  numero,
			ClienteID:    clienteID,
			UsuarioID:    usuarioID,
			SesionCajaID: sesion.ID,
			Subtotal:     subtotal,
			Descuento:    req.Descuento,
			IVA:          req.IVA,
			Total:        total,
			MetodoPago:   req.MetodoPago,
			Estado:       model.VentaCompletada,
			Detalles:     detalles,
			Pagos: []model.Pago{{
				MetodoPago: req.MetodoPago,
				Monto:      total,
				Referencia: referencia,
			}},
		}
		if err := s.repo.CreateTx(ctx, tx, &venta); err != nil {
			return err
		}

		// Descuento de stock bajo lock de fila: dos ventas concurrentes del
		// mismo producto se serializan y la segunda ve el stock ya descontado.
		motivo := fmt.Sprintf("Venta %s", numero)
		for _, d := range venta.Detalles {
			if _, err := s.stock.AplicarMovimiento(tx, d.ProductoID, -d.Cantidad, model.StockSalida, usuarioID, motivo); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("numero", venta.NumeroVenta).
		Str("total", venta.Total.StringFixed(2)).
		Str("metodo_pago", venta.MetodoPago).
		Int("items", len(venta.Detalles)).
		Msg("venta registrada")

	// El recibo se encola después del commit; un fallo acá no toca la venta.
	if req.ClienteEmail != nil && *req.ClienteEmail != "" {
		payload := worker.ReciboJobPayload{VentaID: venta.ID.String(), ToEmail: *req.ClienteEmail}
		if err := s.dispatcher.EnqueueRecibo(ctx, payload); err != nil {
			log.Error().Err(err).Str("numero", venta.NumeroVenta).Msg("no se pudo encolar el recibo")
		}
	}

	return &dto.ReciboResponse{
		VentaID:     venta.ID.String(),
		NumeroVenta: venta.NumeroVenta,
		Total:       venta.Total,
		MetodoPago:  venta.MetodoPago,
		Cambio:      cambio,
	}, nil
}

func (s *VentaService) resolverCliente(ctx context.Context, clienteID *string) (uuid.UUID, error) {
	if clienteID != nil && *clienteID != "" {
		id, err := uuid.Parse(*clienteID)
		if err != nil {
			return uuid.Nil, apierror.Validation("cliente_id inválido")
		}
		if _, err := s.clienteRepo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, apierror.NotFound("cliente no encontrado")
			}
			return uuid.Nil, err
		}
		return id, nil
	}
	general, err := s.clienteRepo.FindClienteGeneral(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolver cliente general: %w", err)
	}
	return general.ID, nil
}

// ── CancelarVenta ─────────────────────────────────────────────────────────────

// CancelarVenta marca la venta como CANCELADA y devuelve el stock con
// movimientos ENTRADA, uno por línea, todo en una transacción. El estado se
// relee dentro de la tx: dos cancelaciones concurrentes no duplican stock.
func (s *VentaService) CancelarVenta(ctx context.Context, ventaID, usuarioID uuid.UUID, motivo string) error {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		venta, err := s.repo.FindByIDTx(tx, ventaID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("venta no encontrada")
			}
			return err
		}
		if venta.Estado != model.VentaCompletada {
			return apierror.Conflict(fmt.Sprintf("la venta %s no está COMPLETADA, no se puede cancelar", venta.NumeroVenta))
		}

		motivoMov := fmt.Sprintf("Cancelación %s: %s", venta.NumeroVenta, motivo)
		for _, d := range venta.Detalles {
			if _, err := s.stock.AplicarMovimiento(tx, d.ProductoID, d.Cantidad, model.StockEntrada, usuarioID, motivoMov); err != nil {
				return err
			}
		}
		return s.repo.UpdateEstadoTx(tx, ventaID, model.VentaCancelada)
	})
	if txErr != nil {
		return txErr
	}
	log.Info().
		Str("venta_id", ventaID.String()).
		Str("motivo", motivo).
		Msg("venta cancelada")
	return nil
}

// TicketPDF genera (o regenera) el comprobante PDF de una venta COMPLETADA y
// devuelve la ruta del archivo. El PDF se reconstruye desde la base, no se
// asume que el worker de recibos ya lo haya escrito.
func (s *VentaService) TicketPDF(ctx context.Context, id uuid.UUID, nombreComercio, storagePath string) (string, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apierror.NotFound("venta no encontrada")
		}
		return "", err
	}
	if venta.Estado != model.VentaCompletada {
		return "", apierror.Conflict("sólo las ventas COMPLETADA tienen comprobante")
	}
	return infra.GenerarTicketPDF(venta, nombreComercio, storagePath)
}

// ── Consultas ─────────────────────────────────────────────────────────────────

// ObtenerVenta devuelve la venta con detalles, pagos, cliente y cajero.
func (s *VentaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("venta no encontrada")
		}
		return nil, err
	}
	resp := ventaToResponse(venta, true)
	return &resp, nil
}

// ListarVentas lista ventas filtradas por fecha, cajero o método de pago.
func (s *VentaService) ListarVentas(ctx context.Context, filter dto.VentaFilter) ([]dto.VentaResponse, error) {
	ventas, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resps := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		resps = append(resps, ventaToResponse(&ventas[i], false))
	}
	return resps, nil
}

// VentasHoy resume las ventas del día. El total vendido sólo suma COMPLETADA.
func (s *VentaService) VentasHoy(ctx context.Context) (*dto.VentasHoyResponse, error) {
	ventas, err := s.repo.ListHoy(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.VentasHoyResponse{Ventas: make([]dto.VentaResponse, 0, len(ventas)), TotalVendido: decimal.Zero}
	for i := range ventas {
		resp.Ventas = append(resp.Ventas, ventaToResponse(&ventas[i], false))
		if ventas[i].Estado == model.VentaCompletada {
			resp.TotalVendido = resp.TotalVendido.Add(ventas[i].Total)
			resp.CantidadVentas++
		}
	}
	return resp, nil
}

func ventaToResponse(v *model.Venta, conDetalles bool) dto.VentaResponse {
	resp := dto.VentaResponse{
		ID:          v.ID.String(),
		NumeroVenta: v.NumeroVenta,
		Subtotal:    v.Subtotal,
		Descuento:   v.Descuento,
		IVA:         v.IVA,
		Total:       v.Total,
		MetodoPago:  v.MetodoPago,
		Estado:      v.Estado,
		CreatedAt:   v.CreatedAt.Format(time.RFC3339),
	}
	if v.Cliente != nil {
		resp.Cliente = v.Cliente.Nombre
	}
	if v.Usuario != nil {
		resp.Cajero = v.Usuario.NombreCompleto
	}
	if !conDetalles {
		return resp
	}
	for _, d := range v.Detalles {
		dr := dto.DetalleVentaResponse{
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Descuento:      d.Descuento,
			Subtotal:       d.Subtotal,
		}
		if d.Producto != nil {
			dr.Producto = d.Producto.Nombre
			dr.CodigoBarras = d.Producto.CodigoBarras
		}
		resp.Detalles = append(resp.Detalles, dr)
	}
	for _, p := range v.Pagos {
		resp.Pagos = append(resp.Pagos, dto.PagoResponse{
			MetodoPago: p.MetodoPago,
			Monto:      p.Monto,
			Referencia: p.Referencia,
		})
	}
	return resp
}
