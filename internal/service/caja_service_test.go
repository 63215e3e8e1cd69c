package service_test

import (
	"context"
	"testing"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func abrirSesion(t *testing.T, svc *service.CajaService, repo *stubCajaRepo, usuarioID uuid.UUID, montoInicial float64) *model.SesionCaja {
	t.Helper()
	caja := repo.seedCaja("Caja " + uuid.NewString()[:8])
	sesion, err := svc.Abrir(context.Background(), usuarioID, dto.AbrirCajaRequest{
		CajaID:       caja.ID.String(),
		MontoInicial: decimal.NewFromFloat(montoInicial),
	})
	require.NoError(t, err)
	return sesion
}

func TestAbrirCaja_OK(t *testing.T) {
	repo := newStubCajaRepo()
	svc := service.NewCajaService(repo)

	sesion := abrirSesion(t, svc, repo, uuid.New(), 100)
	assert.Equal(t, model.SesionAbierta, sesion.Estado)
	assert.True(t, sesion.MontoInicial.Equal(decimal.NewFromInt(100)))
	assert.Nil(t, sesion.MontoEsperado)
}

func TestAbrirCaja_UsuarioYaTieneSesion(t *testing.T) {
	repo := newStubCajaRepo()
	svc := service.NewCajaService(repo)
	usuarioID := uuid.New()

	abrirSesion(t, svc, repo, usuarioID, 100)

	otra := repo.seedCaja("Caja 2")
	_, err := svc.Abrir(context.Background(), usuarioID, dto.AbrirCajaRequest{
		CajaID:       otra.ID.String(),
		MontoInicial: decimal.NewFromInt(50),
	})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "ya tiene una sesión")
}

func TestAbrirCaja_CajaTomadaPorOtro(t *testing.T) {
	repo := newStubCajaRepo()
	svc := service.NewCajaService(repo)
	caja := repo.seedCaja("Caja Principal")

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		CajaID: caja.ID.String(), MontoInicial: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		CajaID: caja.ID.String(), MontoInicial: decimal.NewFromInt(100),
	})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "abierta por otro usuario")
}

func TestAbrirCaja_CarreraDeAperturas(t *testing.T) {
	repo := newStubCajaRepo()
	svc := service.NewCajaService(repo)
	caja := repo.seedCaja("Caja Principal")

	// Dos aperturas simultáneas pueden pasar ambas los chequeos previos; el
	// índice único de sesiones abiertas rechaza el segundo INSERT y el
	// servicio lo reporta como conflicto, no como error interno.
	repo.failCreateSesion = gorm.ErrDuplicatedKey
	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		CajaID: caja.ID.String(), MontoInicial: decimal.NewFromInt(100),
	})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "sesión abierta")
}

func TestAbrirCaja_MontoNegativo(t *testing.T) {
	repo := newStubCajaRepo()
	svc := service.NewCajaService(repo)
	caja := repo.seedCaja("Caja")

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		CajaID: caja.ID.String(), MontoInicial: decimal.NewFromInt(-1),
	})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestCerrarCaja_ArqueoSobrante(t *testing.T) {
	repo := newStubCajaRepo()
	svc := service.NewCajaService(repo)
	usuarioID := uuid.New()

	sesion := abrirSesion(t, svc, repo, usuarioID, 100)
	// Ventas COMPLETADA de la sesión suman 45.50.
	repo.totalVentas[sesion.ID] = decimal.NewFromFloat(45.50)

	resp, err := svc.Cerrar(context.Background(), usuarioID, model.RolCajero, dto.CerrarCajaRequest{
		SesionCajaID: sesion.ID.String(),
		MontoFinal:   decimal.NewFromInt(150),
	})
	require.NoError(t, err)

	assert.True(t, resp.MontoEsperado.Equal(decimal.NewFromFloat(145.50)), "esperado = inicial + ventas")
	assert.True(t, resp.Diferencia.Equal(decimal.NewFromFloat(4.50)))
	assert.Equal(t, model.DiferenciaSobrante, resp.TipoDiferencia)
	assert.Equal(t, model.SesionCerrada, repo.sesiones[sesion.ID].Estado)
}

func TestCerrarCaja_ArqueoExactoYFaltante(t *testing.T) {
	repo := newStubCajaRepo()
	svc := service.NewCajaService(repo)

	u1 := uuid.New()
	s1 := abrirSesion(t, svc, repo, u1, 200)
	repo.totalVentas[s1.ID] = decimal.NewFromInt(300)
	resp, err := svc.Cerrar(context.Background(), u1, model.RolCajero, dto.CerrarCajaRequest{
		SesionCajaID: s1.ID.String(), MontoFinal: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	assert.Equal(t, model.DiferenciaExacto, resp.TipoDiferencia)
	assert.True(t, resp.Diferencia.IsZero())

	u2 := uuid.New()
	s2 := abrirSesion(t, svc, repo, u2, 200)
	repo.totalVentas[s2.ID] = decimal.NewFromInt(300)
	resp, err = svc.Cerrar(context.Background(), u2, model.RolCajero, dto.CerrarCajaRequest{
		SesionCajaID: s2.ID.String(), MontoFinal: decimal.NewFromInt(480),
	})
	require.NoError(t, err)
	assert.Equal(t, model.DiferenciaFaltante, resp.TipoDiferencia)
	assert.True(t, resp.Diferencia.Equal(decimal.NewFromInt(-20)))
}

func TestCerrarCaja_YaCerrada(t *testing.T) {
	repo := newStubCajaRepo()
	svc := service.NewCajaService(repo)
	usuarioID := uuid.New()

	sesion := abrirSesion(t, svc, repo, usuarioID, 100)
	req := dto.CerrarCajaRequest{SesionCajaID: sesion.ID.String(), MontoFinal: decimal.NewFromInt(100)}

	resp, err := svc.Cerrar(context.Background(), usuarioID, model.RolCajero, req)
	require.NoError(t, err)

	// El cierre es terminal: el UPDATE condicionado por estado no encuentra
	// fila ABIERTA en el segundo intento, que falla sin pisar el arqueo.
	repo.totalVentas[sesion.ID] = decimal.NewFromInt(999)
	_, err = svc.Cerrar(context.Background(), usuarioID, model.RolCajero, req)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "ya está cerrada")

	guardada := repo.sesiones[sesion.ID]
	require.NotNil(t, guardada.MontoEsperado)
	assert.True(t, guardada.MontoEsperado.Equal(resp.MontoEsperado))
}

func TestCerrarCaja_DeOtroUsuario(t *testing.T) {
	repo := newStubCajaRepo()
	svc := service.NewCajaService(repo)

	sesion := abrirSesion(t, svc, repo, uuid.New(), 100)
	req := dto.CerrarCajaRequest{SesionCajaID: sesion.ID.String(), MontoFinal: decimal.NewFromInt(100)}

	// Un cajero ajeno no puede cerrarla; un administrador sí.
	_, err := svc.Cerrar(context.Background(), uuid.New(), model.RolCajero, req)
	assert.True(t, apierror.IsKind(err, apierror.KindNotAuthorized))

	_, err = svc.Cerrar(context.Background(), uuid.New(), model.RolAdministrador, req)
	assert.NoError(t, err)
}

func TestRegistrarMovimiento_SinSesion(t *testing.T) {
	repo := newStubCajaRepo()
	svc := service.NewCajaService(repo)

	_, err := svc.RegistrarMovimiento(context.Background(), uuid.New(), dto.MovimientoCajaRequest{
		Tipo: model.MovimientoEgreso, Monto: decimal.NewFromInt(500), Concepto: "Pago reparto",
	})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestRegistrarMovimiento_EntraEnElResumen(t *testing.T) {
	repo := newStubCajaRepo()
	svc := service.NewCajaService(repo)
	usuarioID := uuid.New()

	sesion := abrirSesion(t, svc, repo, usuarioID, 1000)
	repo.totalVentas[sesion.ID] = decimal.NewFromInt(200)

	_, err := svc.RegistrarMovimiento(context.Background(), usuarioID, dto.MovimientoCajaRequest{
		Tipo: model.MovimientoIngreso, Monto: decimal.NewFromInt(300), Concepto: "Fondo extra",
	})
	require.NoError(t, err)
	_, err = svc.RegistrarMovimiento(context.Background(), usuarioID, dto.MovimientoCajaRequest{
		Tipo: model.MovimientoEgreso, Monto: decimal.NewFromInt(150), Concepto: "Pago proveedor",
	})
	require.NoError(t, err)

	resumen, err := svc.MiCaja(context.Background(), usuarioID)
	require.NoError(t, err)
	assert.True(t, resumen.TotalIngresos.Equal(decimal.NewFromInt(300)))
	assert.True(t, resumen.TotalEgresos.Equal(decimal.NewFromInt(150)))
	assert.True(t, resumen.VentasSesion.Equal(decimal.NewFromInt(200)))

	// El esperado del cierre no incluye los movimientos manuales: se informan
	// aparte en el reporte.
	resp, err := svc.Cerrar(context.Background(), usuarioID, model.RolCajero, dto.CerrarCajaRequest{
		SesionCajaID: sesion.ID.String(), MontoFinal: decimal.NewFromInt(1200),
	})
	require.NoError(t, err)
	assert.True(t, resp.MontoEsperado.Equal(decimal.NewFromInt(1200)))
	assert.True(t, resp.TotalIngresos.Equal(decimal.NewFromInt(300)))
	assert.True(t, resp.TotalEgresos.Equal(decimal.NewFromInt(150)))
}

func TestSesionActiva_SinSesion(t *testing.T) {
	repo := newStubCajaRepo()
	svc := service.NewCajaService(repo)

	_, err := svc.SesionActiva(context.Background(), uuid.New())
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}
