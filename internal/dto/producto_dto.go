package dto

import "github.com/shopspring/decimal"

type CrearProductoRequest struct {
	CodigoBarras string          `json:"codigo_barras" validate:"required,min=3,max=30"`
	Nombre       string          `json:"nombre"        validate:"required,min=2,max=120"`
	Descripcion  *string         `json:"descripcion"`
	CategoriaID  *string         `json:"categoria_id"  validate:"omitempty,uuid"`
	PrecioCompra decimal.Decimal `json:"precio_compra" validate:"min=0"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"  validate:"required"`
	StockInicial int             `json:"stock_inicial" validate:"min=0"`
	StockMinimo  int             `json:"stock_minimo"  validate:"min=0"`
}

type ActualizarProductoRequest struct {
	Nombre       *string          `json:"nombre"        validate:"omitempty,min=2,max=120"`
	Descripcion  *string          `json:"descripcion"`
	CategoriaID  *string          `json:"categoria_id"  validate:"omitempty,uuid"`
	PrecioCompra *decimal.Decimal `json:"precio_compra"`
	PrecioVenta  *decimal.Decimal `json:"precio_venta"`
	StockMinimo  *int             `json:"stock_minimo"  validate:"omitempty,min=0"`
}

type AjusteStockRequest struct {
	// Cantidad es el delta firmado del ajuste: positivo suma, negativo resta.
	Cantidad int    `json:"cantidad" validate:"required"`
	Motivo   string `json:"motivo"   validate:"required,min=5"`
}

// ProductoFilter se bindea del query string de GET /v1/productos.
type ProductoFilter struct {
	Categoria string `form:"categoria" validate:"omitempty,uuid"`
	Buscar    string `form:"buscar"`
	Pagina    int    `form:"pagina,default=1"  validate:"min=1"`
	Limite    int    `form:"limite,default=50" validate:"min=1,max=200"`
}

type MovimientoStockFilter struct {
	ProductoID string `form:"producto_id" validate:"omitempty,uuid"`
	Tipo       string `form:"tipo"        validate:"omitempty,oneof=ENTRADA SALIDA AJUSTE"`
	Pagina     int    `form:"pagina,default=1"  validate:"min=1"`
	Limite     int    `form:"limite,default=50" validate:"min=1,max=200"`
}

// ConsultaPrecioResponse es la respuesta del lector de códigos del mostrador.
type ConsultaPrecioResponse struct {
	ProductoID   string          `json:"producto_id"`
	CodigoBarras string          `json:"codigo_barras"`
	Nombre       string          `json:"nombre"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"`
	Stock        int             `json:"stock"`
	// Advertencia avisa al cajero cuando el producto está sin stock.
	Advertencia string `json:"advertencia,omitempty"`
}
