package repository

import (
	"context"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	// CreateTx inserta la venta con sus detalles y pagos dentro de la tx del
	// caller (gorm crea las asociaciones en cascada).
	CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error)
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	// NextNumero obtiene el siguiente valor de la secuencia de numeración,
	// atómico bajo concurrencia (no hay patrón max+1).
	NextNumero(ctx context.Context, tx *gorm.DB) (int64, error)
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, error)
	ListHoy(ctx context.Context) ([]model.Venta, error)
	// DB expone el handle para que el servicio abra la transacción de venta.
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Detalles.Producto").Preload("Pagos").
		Preload("Cliente").Preload("Usuario").
		First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := tx.Preload("Detalles").Preload("Pagos").First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Venta{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *ventaRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int64, error) {
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('ventas_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, error) {
	limite := filter.Limite
	if limite < 1 || limite > 200 {
		limite = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Venta{})
	if filter.Fecha != "" {
		q = q.Where("DATE(created_at) = ?", filter.Fecha)
	}
	if filter.UsuarioID != "" {
		q = q.Where("usuario_id = ?", filter.UsuarioID)
	}
	if filter.MetodoPago != "" {
		q = q.Where("metodo_pago = ?", filter.MetodoPago)
	}

	var ventas []model.Venta
	err := q.Preload("Cliente").Preload("Usuario").
		Order("created_at DESC").Limit(limite).Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) ListHoy(ctx context.Context) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Where("DATE(created_at) = CURRENT_DATE").
		Preload("Cliente").Preload("Usuario").
		Order("created_at DESC").Find(&ventas).Error
	return ventas, err
}
