package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const precioCacheTTL = 4 * time.Hour

// ProductoService administra el catálogo. La consulta por código de barras va
// con caché Redis porque es el camino caliente del mostrador; toda escritura
// sobre el producto invalida su entrada.
type ProductoService struct {
	repo  repository.ProductoRepository
	stock *StockService
	rdb   *redis.Client
}

func NewProductoService(repo repository.ProductoRepository, stock *StockService, rdb *redis.Client) *ProductoService {
	return &ProductoService{repo: repo, stock: stock, rdb: rdb}
}

// Crear da de alta el producto. Si trae stock inicial se registra una ENTRADA
// en la bitácora dentro de la misma transacción, así el alta también queda
// auditada.
func (s *ProductoService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearProductoRequest) (*model.Producto, error) {
	if req.PrecioVenta.IsNegative() || req.PrecioCompra.IsNegative() {
		return nil, apierror.Validation("los precios no pueden ser negativos")
	}
	if _, err := s.repo.FindByBarcode(ctx, req.CodigoBarras); err == nil {
		return nil, apierror.Conflict("ya existe un producto activo con ese código de barras")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	producto := &model.Producto{
		CodigoBarras: req.CodigoBarras,
		Nombre:       req.Nombre,
		Descripcion:  req.Descripcion,
		PrecioCompra: req.PrecioCompra,
		PrecioVenta:  req.PrecioVenta,
		Stock:        0,
		StockMinimo:  req.StockMinimo,
		Activo:       true,
	}
	if req.CategoriaID != nil {
		catID, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, apierror.Validation("categoria_id inválido")
		}
		producto.CategoriaID = &catID
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			if err := s.repo.Create(ctx, producto); err != nil {
				return err
			}
		} else if err := tx.Create(producto).Error; err != nil {
			return err
		}
		if req.StockInicial > 0 {
			_, err := s.stock.AplicarMovimiento(tx, producto.ID, req.StockInicial, model.StockEntrada, usuarioID, "Stock inicial")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	producto.Stock = req.StockInicial
	log.Info().Str("producto_id", producto.ID.String()).Str("codigo", producto.CodigoBarras).Msg("producto creado")
	return producto, nil
}

func (s *ProductoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("producto no encontrado")
		}
		return nil, err
	}
	return producto, nil
}

// ObtenerPorBarcode resuelve el producto escaneado. Primero Redis, después la
// base; el caché se puebla best effort y se ignoran sus errores.
func (s *ProductoService) ObtenerPorBarcode(ctx context.Context, codigo string) (*dto.ConsultaPrecioResponse, error) {
	cacheKey := "precio:" + codigo

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.ConsultaPrecioResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	producto, err := s.repo.FindByBarcode(ctx, codigo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("producto no encontrado")
		}
		return nil, err
	}

	resp := &dto.ConsultaPrecioResponse{
		ProductoID:   producto.ID.String(),
		CodigoBarras: producto.CodigoBarras,
		Nombre:       producto.Nombre,
		PrecioVenta:  producto.PrecioVenta,
		Stock:        producto.Stock,
	}
	if producto.Stock <= 0 {
		resp.Advertencia = "producto sin stock disponible"
	}
	if s.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = s.rdb.Set(ctx, cacheKey, b, precioCacheTTL).Err()
		}
	}
	return resp, nil
}

// Buscar hace búsqueda parcial por nombre, para cuando el código no escanea.
func (s *ProductoService) Buscar(ctx context.Context, termino string, limite int) ([]model.Producto, error) {
	if limite < 1 || limite > 50 {
		limite = 20
	}
	return s.repo.SearchByNombre(ctx, termino, limite)
}

func (s *ProductoService) Listar(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	return s.repo.List(ctx, filter)
}

// StockBajo lista los productos activos en o bajo su mínimo de reposición.
func (s *ProductoService) StockBajo(ctx context.Context) ([]model.Producto, error) {
	return s.repo.ListStockBajo(ctx)
}

func (s *ProductoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*model.Producto, error) {
	producto, err := s.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nombre != nil {
		producto.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		producto.Descripcion = req.Descripcion
	}
	if req.CategoriaID != nil {
		catID, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, apierror.Validation("categoria_id inválido")
		}
		producto.CategoriaID = &catID
	}
	if req.PrecioCompra != nil {
		if req.PrecioCompra.IsNegative() {
			return nil, apierror.Validation("el precio de compra no puede ser negativo")
		}
		producto.PrecioCompra = *req.PrecioCompra
	}
	if req.PrecioVenta != nil {
		if req.PrecioVenta.IsNegative() {
			return nil, apierror.Validation("el precio de venta no puede ser negativo")
		}
		producto.PrecioVenta = *req.PrecioVenta
	}
	if req.StockMinimo != nil {
		producto.StockMinimo = *req.StockMinimo
	}

	if err := s.repo.Update(ctx, producto); err != nil {
		return nil, err
	}
	s.invalidarCache(ctx, producto.CodigoBarras)
	return producto, nil
}

// Desactivar hace soft delete: el producto deja de venderse pero sus ventas y
// movimientos históricos lo siguen referenciando.
func (s *ProductoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	producto, err := s.ObtenerPorID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidarCache(ctx, producto.CodigoBarras)
	return nil
}

func (s *ProductoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("producto no encontrado")
		}
		return err
	}
	return s.repo.Reactivar(ctx, id)
}

func (s *ProductoService) invalidarCache(ctx context.Context, codigo string) {
	invalidarCachePrecio(ctx, s.rdb, codigo)
}

// invalidarCachePrecio borra la entrada de consulta de precio de un código.
// Best effort: un fallo de Redis sólo se registra, la operación ya se
// persistió en la base.
func invalidarCachePrecio(ctx context.Context, rdb *redis.Client, codigo string) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, "precio:"+codigo).Err(); err != nil {
		log.Warn().Err(err).Str("codigo", codigo).Msg("no se pudo invalidar el caché de precio")
	}
}
