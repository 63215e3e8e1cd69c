package repository

import (
	"context"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoStockFilter filtra el listado de la bitácora de stock.
type MovimientoStockFilter struct {
	ProductoID *uuid.UUID
	Tipo       string
	Pagina     int
	Limite     int
}

type MovimientoStockRepository interface {
	// CreateTx inserta el movimiento dentro de la tx del caller: la bitácora
	// y la mutación de stock comparten el mismo límite transaccional.
	CreateTx(tx *gorm.DB, m *model.MovimientoStock) error
	List(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error)
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) CreateTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

func (r *movimientoStockRepo) List(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{}).Preload("Producto")
	if filter.ProductoID != nil {
		q = q.Where("producto_id = ?", *filter.ProductoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pagina := filter.Pagina
	limite := filter.Limite
	if pagina < 1 {
		pagina = 1
	}
	if limite < 1 || limite > 500 {
		limite = 100
	}

	var movimientos []model.MovimientoStock
	err := q.Order("created_at DESC").
		Offset((pagina - 1) * limite).Limit(limite).
		Find(&movimientos).Error
	return movimientos, total, err
}
