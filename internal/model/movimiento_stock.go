package model

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de movimiento de stock.
const (
	StockEntrada = "ENTRADA"
	StockSalida  = "SALIDA"
	StockAjuste  = "AJUSTE"
)

// MovimientoStock registra cada cambio de stock de un producto: una fila por
// invocación del ledger. Bitácora append-only; una reversión es un movimiento
// nuevo en sentido contrario, nunca una edición.
type MovimientoStock struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo       string    `gorm:"type:varchar(10);not null"` // ENTRADA | SALIDA | AJUSTE
	// Cantidad es el delta con signo: positivo entra, negativo sale.
	Cantidad      int       `gorm:"not null"`
	StockAnterior int       `gorm:"not null"`
	StockNuevo    int       `gorm:"not null"`
	UsuarioID     uuid.UUID `gorm:"type:uuid;not null"`
	Motivo        string
	CreatedAt     time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (MovimientoStock) TableName() string { return "movimientos_stock" }
