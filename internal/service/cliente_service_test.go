package service_test

import (
	"context"
	"testing"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrearCliente_DocumentoDuplicado(t *testing.T) {
	svc := service.NewClienteService(newStubClienteRepo())

	_, err := svc.Crear(context.Background(), dto.CrearClienteRequest{
		Nombre: "Juana Pérez", Documento: "20123456789",
	})
	require.NoError(t, err)

	// El índice único del documento sube como ErrDuplicatedKey y el servicio
	// lo responde como conflicto, no como error interno.
	_, err = svc.Crear(context.Background(), dto.CrearClienteRequest{
		Nombre: "Otra Persona", Documento: "20123456789",
	})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "documento")
}

func TestCrearCliente_DocumentoReservado(t *testing.T) {
	svc := service.NewClienteService(newStubClienteRepo())
	_, err := svc.Crear(context.Background(), dto.CrearClienteRequest{
		Nombre: "Impostor", Documento: model.ClienteGeneralDoc,
	})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestClienteGeneral_Intocable(t *testing.T) {
	repo := newStubClienteRepo()
	svc := service.NewClienteService(repo)
	general, err := repo.FindClienteGeneral(context.Background())
	require.NoError(t, err)

	nombre := "Renombrado"
	_, err = svc.Actualizar(context.Background(), general.ID, dto.ActualizarClienteRequest{Nombre: &nombre})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))

	err = svc.Desactivar(context.Background(), general.ID)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.True(t, repo.clientes[general.ID].Activo)
}
