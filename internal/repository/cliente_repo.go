package repository

import (
	"context"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	// FindClienteGeneral resuelve el cliente de mostrador sembrado en la
	// migración; es el cliente por defecto de toda venta.
	FindClienteGeneral(ctx context.Context) (*model.Cliente, error)
	List(ctx context.Context, buscar string) ([]model.Cliente, error)
	Update(ctx context.Context, c *model.Cliente) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *clienteRepo) FindClienteGeneral(ctx context.Context) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).
		Where("documento = ?", model.ClienteGeneralDoc).First(&c).Error
	return &c, err
}

func (r *clienteRepo) List(ctx context.Context, buscar string) ([]model.Cliente, error) {
	q := r.db.WithContext(ctx).Where("activo = true")
	if buscar != "" {
		patron := "%" + buscar + "%"
		q = q.Where("nombre ILIKE ? OR documento LIKE ?", patron, patron)
	}
	var clientes []model.Cliente
	err := q.Order("nombre ASC").Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clienteRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Cliente{}).
		Where("id = ?", id).Update("activo", false).Error
}
