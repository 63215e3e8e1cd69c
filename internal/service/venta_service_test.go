package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ventaFixture struct {
	svc            *service.VentaService
	ventaRepo      *stubVentaRepo
	productoRepo   *stubProductoRepo
	movimientoRepo *stubMovimientoRepo
	cajaRepo       *stubCajaRepo
	usuarioID      uuid.UUID
	sesion         *model.SesionCaja
}

// buildVentaFixture arma el servicio con una sesión de caja ya abierta.
func buildVentaFixture(t *testing.T) *ventaFixture {
	t.Helper()
	productoRepo := newStubProductoRepo()
	movimientoRepo := &stubMovimientoRepo{}
	ventaRepo := newStubVentaRepo()
	cajaRepo := newStubCajaRepo()
	clienteRepo := newStubClienteRepo()

	usuarioID := uuid.New()
	caja := cajaRepo.seedCaja("Caja Principal")
	sesion := &model.SesionCaja{
		ID: uuid.New(), CajaID: caja.ID, UsuarioID: usuarioID,
		MontoInicial: decimal.NewFromInt(100), Estado: model.SesionAbierta,
	}
	cajaRepo.sesiones[sesion.ID] = sesion

	stockSvc := service.NewStockService(productoRepo, movimientoRepo, nil)
	svc := service.NewVentaService(ventaRepo, cajaRepo, clienteRepo, stockSvc, nil)
	return &ventaFixture{
		svc: svc, ventaRepo: ventaRepo, productoRepo: productoRepo,
		movimientoRepo: movimientoRepo, cajaRepo: cajaRepo,
		usuarioID: usuarioID, sesion: sesion,
	}
}

func itemReq(p *model.Producto, cantidad int) dto.ItemVentaRequest {
	return dto.ItemVentaRequest{
		ProductoID:     p.ID.String(),
		Cantidad:       cantidad,
		PrecioUnitario: p.PrecioVenta,
	}
}

func TestRegistrarVenta_SinSesionAbierta(t *testing.T) {
	f := buildVentaFixture(t)
	p := f.productoRepo.seed("Gaseosa 1.5L", "7790002000017", 10, 2500)

	// Usuario sin sesión de caja: la venta se rechaza antes de tocar stock.
	_, err := f.svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(p, 1)},
		MetodoPago: "EFECTIVO",
	})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "sesión de caja")
	assert.Equal(t, 10, f.productoRepo.productos[p.ID].Stock)
}

func TestRegistrarVenta_CaminoCompleto(t *testing.T) {
	f := buildVentaFixture(t)
	gaseosa := f.productoRepo.seed("Gaseosa 1.5L", "7790002000017", 10, 2500)
	galletas := f.productoRepo.seed("Galletas surtidas", "7790002000024", 8, 1800)

	recibo, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{
			itemReq(gaseosa, 2), // 5000
			itemReq(galletas, 1), // 1800
		},
		MetodoPago:    "EFECTIVO",
		MontoRecibido: decimalPtr(decimal.NewFromInt(7000)),
	})
	require.NoError(t, err)

	// Numeración V-yyyyMMdd-NNNN con la fecha de hoy.
	esperado := fmt.Sprintf("V-%s-0001", time.Now().Format("20060102"))
	assert.Equal(t, esperado, recibo.NumeroVenta)
	assert.True(t, recibo.Total.Equal(decimal.NewFromInt(6800)))
	assert.True(t, recibo.Cambio.Equal(decimal.NewFromInt(200)))

	// Venta persistida COMPLETADA, atada a la sesión, con su pago.
	venta, err := f.ventaRepo.FindByID(context.Background(), uuid.MustParse(recibo.VentaID))
	require.NoError(t, err)
	assert.Equal(t, model.VentaCompletada, venta.Estado)
	assert.Equal(t, f.sesion.ID, venta.SesionCajaID)
	require.Len(t, venta.Pagos, 1)
	require.NotNil(t, venta.Pagos[0].Referencia)
	assert.Contains(t, *venta.Pagos[0].Referencia, "Recibido: 7000.00")
	assert.Contains(t, *venta.Pagos[0].Referencia, "Cambio: 200.00")

	// Stock descontado y bitácora con una SALIDA por línea.
	assert.Equal(t, 8, f.productoRepo.productos[gaseosa.ID].Stock)
	assert.Equal(t, 7, f.productoRepo.productos[galletas.ID].Stock)
	require.Len(t, f.movimientoRepo.movimientos, 2)
	for _, m := range f.movimientoRepo.movimientos {
		assert.Equal(t, model.StockSalida, m.Tipo)
		assert.Contains(t, m.Motivo, recibo.NumeroVenta)
	}
}

func TestRegistrarVenta_NumeracionSecuencial(t *testing.T) {
	f := buildVentaFixture(t)
	p := f.productoRepo.seed("Caramelos", "7790002000031", 100, 50)

	for i := 1; i <= 3; i++ {
		recibo, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
			Items:      []dto.ItemVentaRequest{itemReq(p, 1)},
			MetodoPago: "EFECTIVO",
		})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("V-%s-%04d", time.Now().Format("20060102"), i), recibo.NumeroVenta)
	}
}

func TestRegistrarVenta_StockInsuficiente(t *testing.T) {
	f := buildVentaFixture(t)
	p := f.productoRepo.seed("Vino tinto", "7790002000048", 2, 5500)

	_, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(p, 5)},
		MetodoPago: "EFECTIVO",
	})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "Vino tinto")
	assert.Equal(t, 2, f.productoRepo.productos[p.ID].Stock)
	assert.Empty(t, f.ventaRepo.ventas, "la venta rechazada no se persiste")

	// El rechazo ocurre antes de pedir número: la primera venta que sí puede
	// completarse arranca la numeración del día.
	recibo, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(p, 2)},
		MetodoPago: "EFECTIVO",
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("V-%s-0001", time.Now().Format("20060102")), recibo.NumeroVenta)
}

func TestRegistrarVenta_TotalDeclaradoNoCoincide(t *testing.T) {
	f := buildVentaFixture(t)
	p := f.productoRepo.seed("Café 250g", "7790002000055", 10, 4200)

	_, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(p, 1)},
		Total:      decimal.NewFromInt(9999),
		MetodoPago: "EFECTIVO",
	})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	assert.ErrorContains(t, err, "no coincide")
}

func TestRegistrarVenta_DescuentoEIVA(t *testing.T) {
	f := buildVentaFixture(t)
	p := f.productoRepo.seed("Queso 500g", "7790002000062", 5, 6000)

	// subtotal 12000, descuento 2000, IVA 2100 → total 12100
	recibo, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(p, 2)},
		Descuento:  decimal.NewFromInt(2000),
		IVA:        decimal.NewFromInt(2100),
		Total:      decimal.NewFromInt(12100),
		MetodoPago: "TARJETA",
	})
	require.NoError(t, err)
	assert.True(t, recibo.Total.Equal(decimal.NewFromInt(12100)))

	venta, _ := f.ventaRepo.FindByID(context.Background(), uuid.MustParse(recibo.VentaID))
	assert.True(t, venta.Subtotal.Equal(decimal.NewFromInt(12000)))
	assert.True(t, venta.Descuento.Equal(decimal.NewFromInt(2000)))
	assert.True(t, venta.IVA.Equal(decimal.NewFromInt(2100)))
}

func TestRegistrarVenta_MontoRecibidoInsuficiente(t *testing.T) {
	f := buildVentaFixture(t)
	p := f.productoRepo.seed("Aceite 900ml", "7790002000079", 10, 3800)

	_, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		Items:         []dto.ItemVentaRequest{itemReq(p, 2)},
		MetodoPago:    "EFECTIVO",
		MontoRecibido: decimalPtr(decimal.NewFromInt(5000)),
	})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	assert.ErrorContains(t, err, "menor al total")
}

func TestRegistrarVenta_SinItems(t *testing.T) {
	f := buildVentaFixture(t)
	_, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		MetodoPago: "EFECTIVO",
	})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestRegistrarVenta_ClienteGeneralPorDefecto(t *testing.T) {
	f := buildVentaFixture(t)
	p := f.productoRepo.seed("Jabón", "7790002000086", 10, 900)

	recibo, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(p, 1)},
		MetodoPago: "EFECTIVO",
	})
	require.NoError(t, err)

	venta, _ := f.ventaRepo.FindByID(context.Background(), uuid.MustParse(recibo.VentaID))
	assert.NotEqual(t, uuid.Nil, venta.ClienteID)
}

func TestCancelarVenta_ReponeStock(t *testing.T) {
	f := buildVentaFixture(t)
	p := f.productoRepo.seed("Whisky 750ml", "7790002000093", 10, 18000)

	recibo, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(p, 3)},
		MetodoPago: "EFECTIVO",
	})
	require.NoError(t, err)
	require.Equal(t, 7, f.productoRepo.productos[p.ID].Stock)

	err = f.svc.CancelarVenta(context.Background(), uuid.MustParse(recibo.VentaID), f.usuarioID, "error de precio")
	require.NoError(t, err)

	// Stock repuesto y estado terminal.
	assert.Equal(t, 10, f.productoRepo.productos[p.ID].Stock)
	venta, _ := f.ventaRepo.FindByID(context.Background(), uuid.MustParse(recibo.VentaID))
	assert.Equal(t, model.VentaCancelada, venta.Estado)

	// La reversión es un movimiento ENTRADA nuevo, no una edición de la SALIDA.
	require.Len(t, f.movimientoRepo.movimientos, 2)
	reversa := f.movimientoRepo.movimientos[1]
	assert.Equal(t, model.StockEntrada, reversa.Tipo)
	assert.Equal(t, 3, reversa.Cantidad)
	assert.Contains(t, reversa.Motivo, recibo.NumeroVenta)
	assert.Contains(t, reversa.Motivo, "error de precio")
}

func TestCancelarVenta_DobleCancelacion(t *testing.T) {
	f := buildVentaFixture(t)
	p := f.productoRepo.seed("Cerveza lata", "7790002000109", 24, 1500)

	recibo, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(p, 6)},
		MetodoPago: "EFECTIVO",
	})
	require.NoError(t, err)

	ventaID := uuid.MustParse(recibo.VentaID)
	require.NoError(t, f.svc.CancelarVenta(context.Background(), ventaID, f.usuarioID, "devolución"))

	// La segunda cancelación no repone stock otra vez.
	err = f.svc.CancelarVenta(context.Background(), ventaID, f.usuarioID, "devolución")
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.Equal(t, 24, f.productoRepo.productos[p.ID].Stock)
}

func TestCancelarVenta_Inexistente(t *testing.T) {
	f := buildVentaFixture(t)
	err := f.svc.CancelarVenta(context.Background(), uuid.New(), f.usuarioID, "x")
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestObtenerVenta_LecturaIdempotente(t *testing.T) {
	f := buildVentaFixture(t)
	p := f.productoRepo.seed("Shampoo", "7790002000116", 10, 3200)

	recibo, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{itemReq(p, 1)},
		MetodoPago: "EFECTIVO",
	})
	require.NoError(t, err)

	primera, err := f.svc.ObtenerVenta(context.Background(), uuid.MustParse(recibo.VentaID))
	require.NoError(t, err)
	segunda, err := f.svc.ObtenerVenta(context.Background(), uuid.MustParse(recibo.VentaID))
	require.NoError(t, err)
	assert.Equal(t, primera, segunda)
	assert.Equal(t, 9, f.productoRepo.productos[p.ID].Stock, "leer no descuenta stock")
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
