package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBitacora = errors.New("insert bitácora falló")

func buildStockSvc() (*service.StockService, *stubProductoRepo, *stubMovimientoRepo) {
	productoRepo := newStubProductoRepo()
	movimientoRepo := &stubMovimientoRepo{}
	return service.NewStockService(productoRepo, movimientoRepo, nil), productoRepo, movimientoRepo
}

func TestAplicarMovimiento_EntradaRegistraBitacora(t *testing.T) {
	svc, productoRepo, movimientoRepo := buildStockSvc()
	p := productoRepo.seed("Yerba 1kg", "7790001000011", 10, 3500)
	usuarioID := uuid.New()

	mov, err := svc.AplicarMovimiento(nil, p.ID, 5, model.StockEntrada, usuarioID, "Reposición")
	require.NoError(t, err)

	assert.Equal(t, 15, productoRepo.productos[p.ID].Stock)
	assert.Equal(t, 10, mov.StockAnterior)
	assert.Equal(t, 15, mov.StockNuevo)
	assert.Equal(t, model.StockEntrada, mov.Tipo)
	assert.Equal(t, usuarioID, mov.UsuarioID)
	require.Len(t, movimientoRepo.movimientos, 1)
	assert.Equal(t, "Reposición", movimientoRepo.movimientos[0].Motivo)
}

func TestAplicarMovimiento_SalidaInsuficiente(t *testing.T) {
	svc, productoRepo, movimientoRepo := buildStockSvc()
	p := productoRepo.seed("Leche 1L", "7790001000028", 2, 1200)

	_, err := svc.AplicarMovimiento(nil, p.ID, -5, model.StockSalida, uuid.New(), "Venta V-20260830-0001")
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "Leche 1L")
	assert.ErrorContains(t, err, "disponible 2")

	// Nada cambió: ni stock ni bitácora.
	assert.Equal(t, 2, productoRepo.productos[p.ID].Stock)
	assert.Empty(t, movimientoRepo.movimientos)
}

func TestAplicarMovimiento_FallaDeBitacoraPropaga(t *testing.T) {
	svc, productoRepo, movimientoRepo := buildStockSvc()
	p := productoRepo.seed("Azúcar 1kg", "7790001000110", 10, 1500)
	movimientoRepo.failCreate = errBitacora

	// El error del insert de bitácora sube al caller; dentro de una
	// transacción real eso revierte también el update de stock.
	_, err := svc.AplicarMovimiento(nil, p.ID, 5, model.StockEntrada, uuid.New(), "Reposición")
	assert.ErrorIs(t, err, errBitacora)
}

func TestAplicarMovimiento_SalidaExacta(t *testing.T) {
	svc, productoRepo, _ := buildStockSvc()
	p := productoRepo.seed("Pan lactal", "7790001000035", 3, 2100)

	// Llevar el stock exactamente a cero es válido.
	mov, err := svc.AplicarMovimiento(nil, p.ID, -3, model.StockSalida, uuid.New(), "Venta V-20260830-0002")
	require.NoError(t, err)
	assert.Equal(t, 0, productoRepo.productos[p.ID].Stock)
	assert.Equal(t, 0, mov.StockNuevo)
}

func TestAplicarMovimiento_SignoInvalido(t *testing.T) {
	svc, productoRepo, _ := buildStockSvc()
	p := productoRepo.seed("Azúcar 1kg", "7790001000042", 10, 1500)

	casos := []struct {
		cantidad int
		tipo     string
	}{
		{-5, model.StockEntrada},
		{5, model.StockSalida},
		{0, model.StockAjuste},
		{5, "TRASPASO"},
	}
	for _, c := range casos {
		_, err := svc.AplicarMovimiento(nil, p.ID, c.cantidad, c.tipo, uuid.New(), "x")
		assert.True(t, apierror.IsKind(err, apierror.KindValidation),
			"cantidad=%d tipo=%s debería ser inválido", c.cantidad, c.tipo)
	}
}

func TestAplicarMovimiento_ProductoInexistente(t *testing.T) {
	svc, _, _ := buildStockSvc()
	_, err := svc.AplicarMovimiento(nil, uuid.New(), 1, model.StockEntrada, uuid.New(), "x")
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestAjustarStock_NegativoYPositivo(t *testing.T) {
	svc, productoRepo, movimientoRepo := buildStockSvc()
	p := productoRepo.seed("Arroz 1kg", "7790001000059", 20, 1800)
	usuarioID := uuid.New()

	_, err := svc.AjustarStock(context.Background(), p.ID, -4, usuarioID, "Merma por rotura")
	require.NoError(t, err)
	assert.Equal(t, 16, productoRepo.productos[p.ID].Stock)

	_, err = svc.AjustarStock(context.Background(), p.ID, 2, usuarioID, "Conteo físico")
	require.NoError(t, err)
	assert.Equal(t, 18, productoRepo.productos[p.ID].Stock)

	require.Len(t, movimientoRepo.movimientos, 2)
	assert.Equal(t, model.StockAjuste, movimientoRepo.movimientos[0].Tipo)
	assert.Equal(t, -4, movimientoRepo.movimientos[0].Cantidad)
}

func TestAjustarStock_NoDejaNegativo(t *testing.T) {
	svc, productoRepo, _ := buildStockSvc()
	p := productoRepo.seed("Fideos 500g", "7790001000066", 3, 950)

	_, err := svc.AjustarStock(context.Background(), p.ID, -10, uuid.New(), "Merma")
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.Equal(t, 3, productoRepo.productos[p.ID].Stock)
}
