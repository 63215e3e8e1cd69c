package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CajaService administra el ciclo de vida de las sesiones de caja: apertura
// con fondo inicial, movimientos manuales de efectivo y cierre con arqueo.
type CajaService struct {
	repo repository.CajaRepository
}

func NewCajaService(repo repository.CajaRepository) *CajaService {
	return &CajaService{repo: repo}
}

// ── Apertura ──────────────────────────────────────────────────────────────────

// Abrir inicia una sesión de caja para el usuario. Rige doble exclusividad:
// un usuario no puede tener dos sesiones abiertas, y una caja física no puede
// estar tomada por dos usuarios a la vez.
func (s *CajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*model.SesionCaja, error) {
	if req.MontoInicial.IsNegative() {
		return nil, apierror.Validation("el monto inicial no puede ser negativo")
	}

	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, apierror.Validation("caja_id inválido")
	}
	caja, err := s.repo.FindCajaByID(ctx, cajaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("caja no encontrada")
		}
		return nil, err
	}
	if !caja.Activo {
		return nil, apierror.NotFound("caja no encontrada")
	}

	if _, err := s.repo.FindSesionAbiertaPorUsuario(ctx, usuarioID); err == nil {
		return nil, apierror.Conflict("el usuario ya tiene una sesión de caja abierta")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.repo.FindSesionAbiertaPorCaja(ctx, cajaID); err == nil {
		return nil, apierror.Conflict(fmt.Sprintf("la caja %s ya está abierta por otro usuario", caja.Nombre))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sesion := &model.SesionCaja{
		CajaID:       cajaID,
		UsuarioID:    usuarioID,
		MontoInicial: req.MontoInicial,
		Estado:       model.SesionAbierta,
	}
	if err := s.repo.CreateSesion(ctx, sesion); err != nil {
		// Dos aperturas simultáneas pasan ambas los chequeos de arriba; el
		// índice parcial de sesiones ABIERTA rechaza la segunda.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("ya existe una sesión abierta para este usuario o esta caja")
		}
		return nil, err
	}
	log.Info().
		Str("sesion_id", sesion.ID.String()).
		Str("caja", caja.Nombre).
		Str("monto_inicial", req.MontoInicial.StringFixed(2)).
		Msg("sesión de caja abierta")
	return sesion, nil
}

// ── Cierre y arqueo ───────────────────────────────────────────────────────────

// Cerrar cierra la sesión y calcula el arqueo. El monto esperado se computa
// del lado del servidor: fondo inicial más la suma de ventas COMPLETADA de la
// sesión. Los movimientos manuales se informan aparte en el reporte.
func (s *CajaService) Cerrar(ctx context.Context, usuarioID uuid.UUID, rol string, req dto.CerrarCajaRequest) (*dto.CierreCajaResponse, error) {
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, apierror.Validation("sesion_caja_id inválido")
	}
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("sesión de caja no encontrada")
		}
		return nil, err
	}
	// Solo el dueño de la sesión o un administrador pueden cerrarla.
	if sesion.UsuarioID != usuarioID && rol != model.RolAdministrador {
		return nil, apierror.NotAuthorized("la sesión pertenece a otro usuario")
	}
	if req.MontoFinal.IsNegative() {
		return nil, apierror.Validation("el monto final no puede ser negativo")
	}

	totalVentas, err := s.repo.SumVentasCompletadas(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	ingresos, egresos, err := s.repo.SumMovimientos(ctx, sesionID)
	if err != nil {
		return nil, err
	}

	esperado := sesion.MontoInicial.Add(totalVentas)
	diferencia := req.MontoFinal.Sub(esperado)
	tipo := clasificarDiferencia(diferencia)

	ahora := time.Now()
	sesion.MontoEsperado = &esperado
	sesion.MontoFinal = &req.MontoFinal
	sesion.Diferencia = &diferencia
	sesion.Observaciones = req.Observaciones
	sesion.CerradaAt = &ahora
	// El UPDATE exige estado ABIERTA: si dos cierres compiten, sólo uno
	// toca la fila y el otro recibe 0 filas afectadas.
	filas, err := s.repo.CerrarSesion(ctx, sesion)
	if err != nil {
		return nil, err
	}
	if filas == 0 {
		return nil, apierror.Conflict("la sesión ya está cerrada")
	}

	cajaNombre := ""
	if caja, err := s.repo.FindCajaByID(ctx, sesion.CajaID); err == nil {
		cajaNombre = caja.Nombre
	}

	log.Info().
		Str("sesion_id", sesion.ID.String()).
		Str("esperado", esperado.StringFixed(2)).
		Str("declarado", req.MontoFinal.StringFixed(2)).
		Str("diferencia", diferencia.StringFixed(2)).
		Str("tipo", tipo).
		Msg("sesión de caja cerrada")

	return &dto.CierreCajaResponse{
		SesionCajaID:   sesion.ID.String(),
		Caja:           cajaNombre,
		MontoInicial:   sesion.MontoInicial,
		TotalVentas:    totalVentas,
		TotalIngresos:  ingresos,
		TotalEgresos:   egresos,
		MontoEsperado:  esperado,
		MontoFinal:     req.MontoFinal,
		Diferencia:     diferencia,
		TipoDiferencia: tipo,
		AbiertaAt:      sesion.AbiertaAt,
		CerradaAt:      ahora,
	}, nil
}

func clasificarDiferencia(d decimal.Decimal) string {
	switch {
	case d.IsZero():
		return model.DiferenciaExacto
	case d.IsPositive():
		return model.DiferenciaSobrante
	default:
		return model.DiferenciaFaltante
	}
}

// ── Consultas y movimientos manuales ─────────────────────────────────────────

// SesionActiva devuelve la sesión abierta del usuario, o NotFound si no hay.
func (s *CajaService) SesionActiva(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	sesion, err := s.repo.FindSesionAbiertaPorUsuario(ctx, usuarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("no hay sesión de caja abierta")
		}
		return nil, err
	}
	return sesion, nil
}

// MiCaja arma el resumen en vivo de la sesión abierta del cajero.
func (s *CajaService) MiCaja(ctx context.Context, usuarioID uuid.UUID) (*dto.MiCajaResponse, error) {
	sesion, err := s.SesionActiva(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	ventas, err := s.repo.SumVentasCompletadas(ctx, sesion.ID)
	if err != nil {
		return nil, err
	}
	ingresos, egresos, err := s.repo.SumMovimientos(ctx, sesion.ID)
	if err != nil {
		return nil, err
	}
	cajaNombre := ""
	if caja, err := s.repo.FindCajaByID(ctx, sesion.CajaID); err == nil {
		cajaNombre = caja.Nombre
	}
	return &dto.MiCajaResponse{
		SesionCajaID:  sesion.ID.String(),
		Caja:          cajaNombre,
		MontoInicial:  sesion.MontoInicial,
		VentasSesion:  ventas,
		TotalIngresos: ingresos,
		TotalEgresos:  egresos,
		AbiertaAt:     sesion.AbiertaAt,
	}, nil
}

// RegistrarMovimiento registra un ingreso o egreso manual de efectivo
// (cambio, pago a proveedor de reparto, retiro parcial) sobre la sesión
// abierta del usuario.
func (s *CajaService) RegistrarMovimiento(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoCajaRequest) (*model.MovimientoCaja, error) {
	if !req.Monto.IsPositive() {
		return nil, apierror.Validation("el monto del movimiento debe ser mayor a cero")
	}
	sesion, err := s.repo.FindSesionAbiertaPorUsuario(ctx, usuarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Conflict("no hay sesión de caja abierta para registrar movimientos")
		}
		return nil, err
	}

	mov := &model.MovimientoCaja{
		SesionCajaID: sesion.ID,
		UsuarioID:    usuarioID,
		Tipo:         req.Tipo,
		Monto:        req.Monto,
		Concepto:     req.Concepto,
	}
	if err := s.repo.CreateMovimiento(ctx, mov); err != nil {
		return nil, err
	}
	log.Info().
		Str("sesion_id", sesion.ID.String()).
		Str("tipo", req.Tipo).
		Str("monto", req.Monto.StringFixed(2)).
		Msg("movimiento manual de caja")
	return mov, nil
}

// ListCajas enumera las cajas físicas registradas.
func (s *CajaService) ListCajas(ctx context.Context) ([]model.Caja, error) {
	return s.repo.ListCajas(ctx)
}

// Historial devuelve las sesiones cerradas paginadas, para auditoría.
func (s *CajaService) Historial(ctx context.Context, pagina, limite int) ([]model.SesionCaja, int64, error) {
	if pagina < 1 {
		pagina = 1
	}
	if limite < 1 || limite > 200 {
		limite = 50
	}
	return s.repo.ListSesionesCerradas(ctx, pagina, limite)
}

// Movimientos lista los movimientos manuales de una sesión.
func (s *CajaService) Movimientos(ctx context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	return s.repo.ListMovimientos(ctx, sesionID)
}
