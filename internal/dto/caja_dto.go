package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type AbrirCajaRequest struct {
	CajaID       string          `json:"caja_id"       validate:"required,uuid"`
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

type CerrarCajaRequest struct {
	SesionCajaID  string          `json:"sesion_caja_id" validate:"required,uuid"`
	MontoFinal    decimal.Decimal `json:"monto_final"    validate:"min=0"`
	Observaciones *string         `json:"observaciones"`
}

type MovimientoCajaRequest struct {
	Tipo     string          `json:"tipo"     validate:"required,oneof=INGRESO EGRESO"`
	Monto    decimal.Decimal `json:"monto"    validate:"required"`
	Concepto string          `json:"concepto" validate:"required,min=3"`
}

// CierreCajaResponse es el arqueo que devuelve el cierre de sesión.
type CierreCajaResponse struct {
	SesionCajaID   string          `json:"sesion_caja_id"`
	Caja           string          `json:"caja"`
	MontoInicial   decimal.Decimal `json:"monto_inicial"`
	TotalVentas    decimal.Decimal `json:"total_ventas"`
	TotalIngresos  decimal.Decimal `json:"total_ingresos"`
	TotalEgresos   decimal.Decimal `json:"total_egresos"`
	MontoEsperado  decimal.Decimal `json:"monto_esperado"`
	MontoFinal     decimal.Decimal `json:"monto_final"`
	Diferencia     decimal.Decimal `json:"diferencia"`
	TipoDiferencia string          `json:"tipo_diferencia"`
	AbiertaAt      time.Time       `json:"abierta_at"`
	CerradaAt      time.Time       `json:"cerrada_at"`
}

// MiCajaResponse describe la sesión abierta del cajero autenticado.
type MiCajaResponse struct {
	SesionCajaID  string          `json:"sesion_caja_id"`
	Caja          string          `json:"caja"`
	MontoInicial  decimal.Decimal `json:"monto_inicial"`
	VentasSesion  decimal.Decimal `json:"ventas_sesion"`
	TotalIngresos decimal.Decimal `json:"total_ingresos"`
	TotalEgresos  decimal.Decimal `json:"total_egresos"`
	AbiertaAt     time.Time       `json:"abierta_at"`
}
