package model

import (
	"time"

	"github.com/google/uuid"
)

// ClienteGeneralDoc identifica al cliente genérico de mostrador. Las ventas
// sin cliente se registran contra él.
const ClienteGeneralDoc = "0000000000"

type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Documento string    `gorm:"uniqueIndex;not null"`
	Telefono  *string
	Email     *string
	Direccion *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
