package router

import (
	"time"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/config"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/handler"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/infra"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/middleware"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/repository"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/service"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New arma el grafo de dependencias y devuelve el engine Gin configurado.
// Grafo: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Cadena global de middleware (el orden importa)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute))

	// ── Repositorios ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)

	// ── Servicios ────────────────────────────────────────────────────────────
	dispatcher := worker.NewDispatcher(rdb)

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	stockSvc := service.NewStockService(productoRepo, movimientoStockRepo, rdb)
	productoSvc := service.NewProductoService(productoRepo, stockSvc, rdb)
	cajaSvc := service.NewCajaService(cajaRepo)
	ventaSvc := service.NewVentaService(ventaRepo, cajaRepo, clienteRepo, stockSvc, dispatcher)
	clienteSvc := service.NewClienteService(clienteRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductoHandler(productoSvc, stockSvc)
	ventasH := handler.NewVentaHandler(ventaSvc, cfg)
	cajaH := handler.NewCajaHandler(cajaSvc)
	clientesH := handler.NewClienteHandler(clienteSvc)
	categoriasH := handler.NewCategoriaHandler(categoriaSvc)
	usuariosH := handler.NewUsuarioHandler(authSvc)

	// ── Rutas ────────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb, smtpCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	todos := middleware.RequireRole(model.RolCajero, model.RolSupervisor, model.RolAdministrador)
	supervision := middleware.RequireRole(model.RolSupervisor, model.RolAdministrador)
	admin := middleware.RequireRole(model.RolAdministrador)

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Ventas: registrar vende cualquier rol con caja abierta; cancelar
		// requiere supervisión.
		v1.POST("/ventas", todos, ventasH.Registrar)
		v1.GET("/ventas", todos, ventasH.Listar)
		v1.GET("/ventas/hoy", todos, ventasH.Hoy)
		v1.GET("/ventas/:id", todos, ventasH.Obtener)
		v1.GET("/ventas/:id/ticket", todos, ventasH.Ticket)
		v1.POST("/ventas/:id/cancelar", supervision, ventasH.Cancelar)

		// Catálogo: lectura para todos, escritura para administrador, ajuste
		// de stock para supervisión.
		v1.GET("/productos", todos, productosH.Listar)
		v1.GET("/productos/buscar", todos, productosH.Buscar)
		v1.GET("/productos/stock-bajo", supervision, productosH.StockBajo)
		v1.GET("/productos/barcode/:barcode", todos, productosH.PorBarcode)
		v1.GET("/productos/:id", todos, productosH.Obtener)
		v1.POST("/productos/:id/ajuste-stock", supervision, productosH.AjustarStock)
		prods := v1.Group("/productos", admin)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
		}

		// Bitácora de stock
		v1.GET("/stock/movimientos", supervision, productosH.Movimientos)

		caja := v1.Group("/caja")
		{
			caja.GET("/cajas", todos, cajaH.ListCajas)
			caja.POST("/abrir", todos, cajaH.Abrir)
			caja.POST("/cerrar", todos, cajaH.Cerrar)
			caja.GET("/mi-caja", todos, cajaH.MiCaja)
			caja.POST("/movimiento", todos, cajaH.RegistrarMovimiento)
			caja.GET("/:id/movimientos", supervision, cajaH.Movimientos)
			caja.GET("/historial", supervision, cajaH.Historial)
		}

		v1.GET("/clientes", todos, clientesH.Listar)
		v1.GET("/clientes/:id", todos, clientesH.Obtener)
		v1.POST("/clientes", todos, clientesH.Crear)
		v1.PUT("/clientes/:id", supervision, clientesH.Actualizar)
		v1.DELETE("/clientes/:id", admin, clientesH.Desactivar)

		v1.GET("/categorias", todos, categoriasH.Listar)
		categorias := v1.Group("/categorias", admin)
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Desactivar)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI, solo fuera de producción
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
