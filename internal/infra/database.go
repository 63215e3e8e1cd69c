package infra

import (
	"fmt"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase abre la conexión GORM (backend pgx), corre AutoMigrate y aplica
// los parches SQL idempotentes que GORM no puede expresar: la secuencia de
// numeración de ventas y las filas semilla (cliente de mostrador, caja
// principal). El handle se inyecta en los repositorios, no hay pool global.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Traduce los errores del driver a los de GORM; los servicios dependen
		// de errors.Is(err, gorm.ErrDuplicatedKey) para responder 409.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate crea/actualiza el esquema y aplica los parches. También lo usa la
// suite de integración contra su Postgres efímero.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Categoria{},
		&model.Producto{},
		&model.Cliente{},
		&model.Usuario{},
		&model.Caja{},
		&model.SesionCaja{},
		&model.MovimientoCaja{},
		&model.Venta{},
		&model.DetalleVenta{},
		&model.Pago{},
		&model.MovimientoStock{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches corre DDL/seed idempotente fuera del alcance de
// AutoMigrate. Cada sentencia es re-ejecutable sobre un esquema ya parchado.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Secuencia atómica para el sufijo del número de venta: evita la
		// carrera de max+1 entre cajeros concurrentes.
		{"crear secuencia de numeración de ventas",
			`CREATE SEQUENCE IF NOT EXISTS ventas_numero_seq START 1`},
		// Cliente de mostrador: destino por defecto de las ventas sin cliente.
		{"seed cliente general", `
INSERT INTO clientes (id, nombre, documento, activo, created_at, updated_at)
VALUES (gen_random_uuid(), 'Cliente General', '0000000000', true, now(), now())
ON CONFLICT (documento) DO NOTHING`},
		{"seed caja principal", `
INSERT INTO cajas (id, nombre, ubicacion, activo, created_at)
VALUES (gen_random_uuid(), 'Caja Principal', 'Mostrador', true, now())
ON CONFLICT (nombre) DO NOTHING`},
		// El stock sólo lo muta el ledger; el CHECK respalda la invariante a
		// nivel de store por si un escritor ajeno la rompe.
		{"check stock no negativo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_stock_no_negativo') THEN
    ALTER TABLE productos ADD CONSTRAINT chk_productos_stock_no_negativo CHECK (stock >= 0);
  END IF;
END $$`},
		// A lo sumo una sesión ABIERTA por cajero y por caja. El servicio
		// valida antes de crear, pero dos aperturas simultáneas sólo las
		// arbitra el índice; la segunda recibe duplicate key.
		{"índice sesión abierta por usuario", `
CREATE UNIQUE INDEX IF NOT EXISTS uq_sesion_abierta_por_usuario
ON sesion_cajas (usuario_id) WHERE estado = 'ABIERTA'`},
		{"índice sesión abierta por caja", `
CREATE UNIQUE INDEX IF NOT EXISTS uq_sesion_abierta_por_caja
ON sesion_cajas (caja_id) WHERE estado = 'ABIERTA'`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
