package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	VentaCompletada = "COMPLETADA"
	VentaCancelada  = "CANCELADA"
)

// Venta es el encabezado de una transacción de venta. Se crea COMPLETADA en
// una única transacción junto con sus detalles, pagos y movimientos de stock;
// después de creada sólo puede transicionar a CANCELADA.
type Venta struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroVenta string    `gorm:"uniqueIndex;not null"` // V-yyyyMMdd-NNNN
	ClienteID   uuid.UUID `gorm:"type:uuid;not null"`
	UsuarioID   uuid.UUID `gorm:"type:uuid;not null;index"`
	// SesionCajaID ata la venta a la sesión de caja abierta del cajero.
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Descuento    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	IVA          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Total        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	MetodoPago   string          `gorm:"type:varchar(20);not null"`
	Estado       string          `gorm:"type:varchar(20);not null;default:'COMPLETADA'"`
	CreatedAt    time.Time

	Cliente  *Cliente       `gorm:"foreignKey:ClienteID"`
	Usuario  *Usuario       `gorm:"foreignKey:UsuarioID"`
	Detalles []DetalleVenta `gorm:"foreignKey:VentaID"`
	Pagos    []Pago         `gorm:"foreignKey:VentaID"`
}

// DetalleVenta es una línea de venta. Inmutable una vez escrita; su cantidad
// respalda el movimiento de stock SALIDA asociado.
type DetalleVenta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Descuento      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleVenta) TableName() string { return "detalle_ventas" }

// Pago registra el cobro de una venta. Referencia guarda texto libre, por
// ejemplo "Recibido: 500.00, Cambio: 45.50". Append-only.
type Pago struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	MetodoPago string          `gorm:"type:varchar(20);not null"`
	Monto      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Referencia *string
	CreatedAt  time.Time
}
