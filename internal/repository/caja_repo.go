package repository

import (
	"context"
	"errors"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaRepository interface {
	ListCajas(ctx context.Context) ([]model.Caja, error)
	FindCajaByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)

	CreateSesion(ctx context.Context, s *model.SesionCaja) error
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	FindSesionAbiertaPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error)
	FindSesionAbiertaPorCaja(ctx context.Context, cajaID uuid.UUID) (*model.SesionCaja, error)
	// FindSesionAbiertaPorUsuarioTx resuelve la sesión abierta dentro de la tx
	// de una venta, para que la venta quede atada a una sesión viva al commit.
	FindSesionAbiertaPorUsuarioTx(tx *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error)
	UpdateSesion(ctx context.Context, s *model.SesionCaja) error
	// CerrarSesion pasa la sesión a CERRADA sólo si sigue ABIERTA y devuelve
	// cuántas filas tocó: 0 significa que otro cierre llegó primero.
	CerrarSesion(ctx context.Context, s *model.SesionCaja) (int64, error)
	ListSesionesCerradas(ctx context.Context, pagina, limite int) ([]model.SesionCaja, int64, error)

	CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error
	ListMovimientos(ctx context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error)

	// SumVentasCompletadas devuelve Σ total de ventas COMPLETADA de la sesión:
	// la base del monto esperado al cierre.
	SumVentasCompletadas(ctx context.Context, sesionID uuid.UUID) (decimal.Decimal, error)
	// SumMovimientos devuelve (Σ ingresos, Σ egresos) manuales de la sesión.
	SumMovimientos(ctx context.Context, sesionID uuid.UUID) (decimal.Decimal, decimal.Decimal, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) ListCajas(ctx context.Context) ([]model.Caja, error) {
	var cajas []model.Caja
	err := r.db.WithContext(ctx).Where("activo = true").Order("nombre ASC").Find(&cajas).Error
	return cajas, err
}

func (r *cajaRepo) FindCajaByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *cajaRepo) CreateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Preload("Caja").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *cajaRepo) FindSesionAbiertaPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Preload("Caja").
		Where("usuario_id = ? AND estado = ?", usuarioID, model.SesionAbierta).
		Order("abierta_at DESC").First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindSesionAbiertaPorCaja(ctx context.Context, cajaID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("caja_id = ? AND estado = ?", cajaID, model.SesionAbierta).First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindSesionAbiertaPorUsuarioTx(tx *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Where("usuario_id = ? AND estado = ?", usuarioID, model.SesionAbierta).
		Order("abierta_at DESC").First(&s).Error
	return &s, err
}

func (r *cajaRepo) UpdateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *cajaRepo) CerrarSesion(ctx context.Context, s *model.SesionCaja) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.SesionCaja{}).
		Where("id = ? AND estado = ?", s.ID, model.SesionAbierta).
		Updates(map[string]any{
			"estado":         model.SesionCerrada,
			"monto_esperado": s.MontoEsperado,
			"monto_final":    s.MontoFinal,
			"diferencia":     s.Diferencia,
			"observaciones":  s.Observaciones,
			"cerrada_at":     s.CerradaAt,
		})
	return res.RowsAffected, res.Error
}

func (r *cajaRepo) ListSesionesCerradas(ctx context.Context, pagina, limite int) ([]model.SesionCaja, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.SesionCaja{}).
		Where("estado = ?", model.SesionCerrada)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sesiones []model.SesionCaja
	err := q.Preload("Caja").Preload("Usuario").
		Order("cerrada_at DESC").
		Offset((pagina - 1) * limite).Limit(limite).
		Find(&sesiones).Error
	return sesiones, total, err
}

func (r *cajaRepo) CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) SumVentasCompletadas(ctx context.Context, sesionID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("SUM(total)").
		Where("sesion_caja_id = ? AND estado = ?", sesionID, model.VentaCompletada).
		Scan(&total).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *cajaRepo) SumMovimientos(ctx context.Context, sesionID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	type fila struct {
		Tipo string
		Suma decimal.Decimal
	}
	var filas []fila
	err := r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).
		Select("tipo, SUM(monto) AS suma").
		Where("sesion_caja_id = ?", sesionID).
		Group("tipo").Scan(&filas).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	ingresos, egresos := decimal.Zero, decimal.Zero
	for _, f := range filas {
		switch f.Tipo {
		case model.MovimientoIngreso:
			ingresos = f.Suma
		case model.MovimientoEgreso:
			egresos = f.Suma
		}
	}
	return ingresos, egresos, nil
}
