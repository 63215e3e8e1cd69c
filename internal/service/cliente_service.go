package service

import (
	"context"
	"errors"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) *ClienteService {
	return &ClienteService{repo: repo}
}

func (s *ClienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*model.Cliente, error) {
	if req.Documento == model.ClienteGeneralDoc {
		return nil, apierror.Validation("documento reservado para el cliente general")
	}
	cliente := &model.Cliente{
		Nombre:    req.Nombre,
		Documento: req.Documento,
		Telefono:  req.Telefono,
		Email:     req.Email,
		Direccion: req.Direccion,
		Activo:    true,
	}
	if err := s.repo.Create(ctx, cliente); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("ya existe un cliente con ese documento")
		}
		return nil, err
	}
	return cliente, nil
}

func (s *ClienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	cliente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("cliente no encontrado")
		}
		return nil, err
	}
	return cliente, nil
}

func (s *ClienteService) Listar(ctx context.Context, buscar string) ([]model.Cliente, error) {
	return s.repo.List(ctx, buscar)
}

func (s *ClienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*model.Cliente, error) {
	cliente, err := s.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	// El cliente general es intocable.
	if cliente.Documento == model.ClienteGeneralDoc {
		return nil, apierror.Conflict("el cliente general no se puede modificar")
	}
	if req.Nombre != nil {
		cliente.Nombre = *req.Nombre
	}
	if req.Telefono != nil {
		cliente.Telefono = req.Telefono
	}
	if req.Email != nil {
		cliente.Email = req.Email
	}
	if req.Direccion != nil {
		cliente.Direccion = req.Direccion
	}
	if err := s.repo.Update(ctx, cliente); err != nil {
		return nil, err
	}
	return cliente, nil
}

func (s *ClienteService) Desactivar(ctx context.Context, id uuid.UUID) error {
	cliente, err := s.ObtenerPorID(ctx, id)
	if err != nil {
		return err
	}
	if cliente.Documento == model.ClienteGeneralDoc {
		return apierror.Conflict("el cliente general no se puede desactivar")
	}
	return s.repo.SoftDelete(ctx, id)
}
