package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto es un artículo del catálogo del minimarket.
// Stock nunca se modifica directamente: todo cambio pasa por el ledger de
// movimientos (service.StockService), que garantiza Stock >= 0.
type Producto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CodigoBarras string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"index;not null"`
	Descripcion  *string
	CategoriaID  *uuid.UUID      `gorm:"type:uuid;index"`
	PrecioCompra decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock        int             `gorm:"not null;default:0"`
	StockMinimo  int             `gorm:"not null;default:5"`
	Activo       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
}
