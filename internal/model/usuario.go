package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles del sistema.
const (
	RolAdministrador = "administrador"
	RolCajero        = "cajero"
	RolSupervisor    = "supervisor"
)

// Usuario representa a un operador del sistema con acceso por rol.
type Usuario struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username       string    `gorm:"uniqueIndex;not null"`
	NombreCompleto string    `gorm:"not null"`
	Email          *string
	PasswordHash   string `gorm:"not null"`
	Rol            string `gorm:"type:varchar(20);not null"`
	Activo         bool   `gorm:"not null;default:true"`
	UltimoAcceso   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
