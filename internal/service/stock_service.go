package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StockService es el único camino para mutar stock. Cada mutación deja una
// fila en movimientos_stock con el stock anterior y el nuevo, dentro de la
// misma transacción que el UPDATE del producto.
type StockService struct {
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoStockRepository
	rdb            *redis.Client
}

func NewStockService(pr repository.ProductoRepository, mr repository.MovimientoStockRepository, rdb *redis.Client) *StockService {
	return &StockService{productoRepo: pr, movimientoRepo: mr, rdb: rdb}
}

// AplicarMovimiento aplica un delta de stock dentro de la tx del caller.
// Toma el lock de fila del producto antes de validar, así dos ventas
// concurrentes sobre el mismo producto se serializan y ninguna puede dejar
// stock negativo. Devuelve el movimiento registrado.
func (s *StockService) AplicarMovimiento(tx *gorm.DB, productoID uuid.UUID, cantidad int, tipo string, usuarioID uuid.UUID, motivo string) (*model.MovimientoStock, error) {
	if cantidad == 0 {
		return nil, apierror.Validation("la cantidad del movimiento no puede ser cero")
	}
	switch tipo {
	case model.StockEntrada:
		if cantidad < 0 {
			return nil, apierror.Validation("una ENTRADA requiere cantidad positiva")
		}
	case model.StockSalida:
		if cantidad > 0 {
			return nil, apierror.Validation("una SALIDA requiere cantidad negativa")
		}
	case model.StockAjuste:
		// el ajuste admite ambos signos
	default:
		return nil, apierror.Validation(fmt.Sprintf("tipo de movimiento desconocido: %s", tipo))
	}

	producto, err := s.productoRepo.FindForUpdateTx(tx, productoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound(fmt.Sprintf("producto %s no encontrado", productoID))
		}
		return nil, err
	}

	nuevo := producto.Stock + cantidad
	if nuevo < 0 {
		return nil, apierror.Conflict(fmt.Sprintf(
			"stock insuficiente para %s: disponible %d, solicitado %d",
			producto.Nombre, producto.Stock, -cantidad))
	}

	if err := s.productoRepo.UpdateStockTx(tx, productoID, cantidad); err != nil {
		return nil, err
	}

	mov := &model.MovimientoStock{
		ProductoID:    productoID,
		Tipo:          tipo,
		Cantidad:      cantidad,
		StockAnterior: producto.Stock,
		StockNuevo:    nuevo,
		UsuarioID:     usuarioID,
		Motivo:        motivo,
	}
	if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
		return nil, err
	}
	// La consulta de precio cachea el stock visto; después de un movimiento
	// esa entrada queda vieja y hay que tirarla.
	invalidarCachePrecio(context.Background(), s.rdb, producto.CodigoBarras)
	return mov, nil
}

// VerificarDisponibilidad toma el lock de fila del producto y confirma que el
// stock alcanza para la cantidad pedida. El lock vive hasta el commit de la
// tx, así la verificación sigue valiendo cuando se descuenta más adelante.
func (s *StockService) VerificarDisponibilidad(tx *gorm.DB, productoID uuid.UUID, cantidad int) error {
	producto, err := s.productoRepo.FindForUpdateTx(tx, productoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound(fmt.Sprintf("producto %s no encontrado", productoID))
		}
		return err
	}
	if producto.Stock < cantidad {
		return apierror.Conflict(fmt.Sprintf(
			"stock insuficiente para %s: disponible %d, solicitado %d",
			producto.Nombre, producto.Stock, cantidad))
	}
	return nil
}

// AjustarStock registra un AJUSTE manual (merma, rotura, conteo físico) en su
// propia transacción. Solo supervisores y administradores llegan acá.
func (s *StockService) AjustarStock(ctx context.Context, productoID uuid.UUID, cantidad int, usuarioID uuid.UUID, motivo string) (*model.MovimientoStock, error) {
	var mov *model.MovimientoStock
	err := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		var err error
		mov, err = s.AplicarMovimiento(tx, productoID, cantidad, model.StockAjuste, usuarioID, motivo)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("producto_id", productoID.String()).
		Int("cantidad", cantidad).
		Str("motivo", motivo).
		Msg("ajuste de stock registrado")
	return mov, nil
}

// ListarMovimientos devuelve la bitácora paginada, filtrable por producto y tipo.
func (s *StockService) ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	return s.movimientoRepo.List(ctx, filter)
}
