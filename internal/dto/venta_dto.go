package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID     string          `json:"producto_id"     validate:"required,uuid"`
	Cantidad       int             `json:"cantidad"        validate:"required,min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"required"`
	Descuento      decimal.Decimal `json:"descuento"       validate:"min=0"`
}

type RegistrarVentaRequest struct {
	// ClienteID opcional: sin cliente la venta va al Cliente General.
	ClienteID *string            `json:"cliente_id" validate:"omitempty,uuid"`
	Items     []ItemVentaRequest `json:"items"      validate:"required,min=1,dive"`
	Descuento decimal.Decimal    `json:"descuento"  validate:"min=0"`
	IVA       decimal.Decimal    `json:"iva"        validate:"min=0"`
	// Total declarado por el cliente HTTP; el servicio lo recalcula y
	// rechaza si no coincide. Opcional: cero significa "no declarado".
	Total      decimal.Decimal `json:"total"      validate:"min=0"`
	MetodoPago string          `json:"metodo_pago" validate:"required,oneof=EFECTIVO TARJETA TRANSFERENCIA"`
	// MontoRecibido habilita el cálculo de cambio en ventas en efectivo.
	MontoRecibido *decimal.Decimal `json:"monto_recibido" validate:"omitempty"`
	// ClienteEmail: si está presente se encola el envío del ticket PDF.
	ClienteEmail *string `json:"cliente_email" validate:"omitempty,email"`
}

type CancelarVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// VentaFilter se bindea del query string de GET /v1/ventas.
type VentaFilter struct {
	Fecha      string `form:"fecha"       validate:"omitempty,datetime=2006-01-02"`
	UsuarioID  string `form:"usuario_id"  validate:"omitempty,uuid"`
	MetodoPago string `form:"metodo_pago"`
	Limite     int    `form:"limite,default=50" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

// ReciboResponse es el comprobante que recibe el cajero al registrar la venta.
type ReciboResponse struct {
	VentaID     string          `json:"venta_id"`
	NumeroVenta string          `json:"numero_venta"`
	Total       decimal.Decimal `json:"total"`
	MetodoPago  string          `json:"metodo_pago"`
	Cambio      decimal.Decimal `json:"cambio"`
}

type DetalleVentaResponse struct {
	Producto       string          `json:"producto"`
	CodigoBarras   string          `json:"codigo_barras"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Descuento      decimal.Decimal `json:"descuento"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type PagoResponse struct {
	MetodoPago string          `json:"metodo_pago"`
	Monto      decimal.Decimal `json:"monto"`
	Referencia *string         `json:"referencia"`
}

type VentaResponse struct {
	ID          string                 `json:"id"`
	NumeroVenta string                 `json:"numero_venta"`
	Cliente     string                 `json:"cliente"`
	Cajero      string                 `json:"cajero"`
	Subtotal    decimal.Decimal        `json:"subtotal"`
	Descuento   decimal.Decimal        `json:"descuento"`
	IVA         decimal.Decimal        `json:"iva"`
	Total       decimal.Decimal        `json:"total"`
	MetodoPago  string                 `json:"metodo_pago"`
	Estado      string                 `json:"estado"`
	Detalles    []DetalleVentaResponse `json:"detalles,omitempty"`
	Pagos       []PagoResponse         `json:"pagos,omitempty"`
	CreatedAt   string                 `json:"created_at"`
}

// VentasHoyResponse resume las ventas del día para el tablero del mostrador.
type VentasHoyResponse struct {
	Ventas         []VentaResponse `json:"ventas"`
	CantidadVentas int             `json:"cantidad_ventas"`
	TotalVendido   decimal.Decimal `json:"total_vendido"`
}
