package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de una sesión de caja.
const (
	SesionAbierta = "ABIERTA"
	SesionCerrada = "CERRADA"
)

// Tipos de movimiento manual de caja.
const (
	MovimientoIngreso = "INGRESO"
	MovimientoEgreso  = "EGRESO"
)

// Clasificación de la diferencia al cierre.
const (
	DiferenciaExacto   = "EXACTO"
	DiferenciaSobrante = "SOBRANTE"
	DiferenciaFaltante = "FALTANTE"
)

// Caja es un puesto de cobro físico (cajón de efectivo).
type Caja struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"uniqueIndex;not null"`
	Ubicacion *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
}

// SesionCaja es el período apertura→cierre de una caja operada por un cajero.
// Estado ABIERTA | CERRADA; el cierre es terminal. MontoEsperado, MontoFinal y
// Diferencia se fijan una sola vez al cerrar y quedan inmutables.
type SesionCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MontoEsperado = MontoInicial + Σ total de ventas COMPLETADA de la sesión.
	MontoEsperado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MontoFinal    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Diferencia = MontoFinal - MontoEsperado (positivo = sobrante).
	Diferencia    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Estado        string           `gorm:"type:varchar(20);not null;default:'ABIERTA'"`
	Observaciones *string
	AbiertaAt     time.Time `gorm:"autoCreateTime"`
	CerradaAt     *time.Time

	Caja        *Caja            `gorm:"foreignKey:CajaID"`
	Usuario     *Usuario         `gorm:"foreignKey:UsuarioID"`
	Movimientos []MovimientoCaja `gorm:"foreignKey:SesionCajaID"`
}

// MovimientoCaja es un ingreso o egreso manual de efectivo (pagos a
// proveedores, retiros, fondos extra) registrado contra una sesión abierta.
// Append-only: nunca se modifica ni se borra.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo         string          `gorm:"type:varchar(10);not null"` // INGRESO | EGRESO
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Concepto     string          `gorm:"not null"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt    time.Time
}

// TableName evita la pluralización de GORM (movimiento_cajas → movimientos_caja).
func (MovimientoCaja) TableName() string { return "movimientos_caja" }
