package repository

import (
	"context"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository define el acceso a datos de productos. Los servicios
// dependen de esta interfaz, no de la implementación GORM, lo que permite
// tests unitarios con stubs en memoria.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByBarcode(ctx context.Context, codigo string) (*model.Producto, error)
	SearchByNombre(ctx context.Context, termino string, limit int) ([]model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	ListStockBajo(ctx context.Context) ([]model.Producto, error)
	Update(ctx context.Context, p *model.Producto) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error

	// Variantes transaccionales: el caller pasa su tx, nunca abren una propia.

	// FindForUpdateTx carga el producto tomando el lock de fila
	// (SELECT ... FOR UPDATE): el check-then-write de stock serializa acá.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	// UpdateStockTx aplica el delta sobre stock dentro de la tx del caller.
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error

	// DB expone el handle para que los servicios abran transacciones.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Preload("Categoria").First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) FindByBarcode(ctx context.Context, codigo string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Preload("Categoria").
		Where("codigo_barras = ? AND activo = true", codigo).First(&p).Error
	return &p, err
}

func (r *productoRepo) SearchByNombre(ctx context.Context, termino string, limit int) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Preload("Categoria").
		Where("nombre ILIKE ? AND activo = true", "%"+termino+"%").
		Order("nombre ASC").Limit(limit).Find(&productos).Error
	return productos, err
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{}).Where("activo = true")

	// Todos los filtros van parametrizados, jamás concatenar input del
	// usuario en el texto de la query.
	if filter.Categoria != "" {
		q = q.Where("categoria_id = ?", filter.Categoria)
	}
	if filter.Buscar != "" {
		patron := "%" + filter.Buscar + "%"
		q = q.Where("nombre ILIKE ? OR codigo_barras LIKE ?", patron, patron)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Pagina - 1) * filter.Limite
	err := q.Preload("Categoria").Order("nombre ASC").
		Offset(offset).Limit(filter.Limite).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) ListStockBajo(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("activo = true AND stock <= stock_minimo").
		Order("stock ASC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ?", id).Update("activo", false).Error
}

func (r *productoRepo) Reactivar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ?", id).Update("activo", true).Error
}

func (r *productoRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}

func (r *productoRepo) DB() *gorm.DB { return r.db }
