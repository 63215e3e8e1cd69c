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

type CategoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) *CategoriaService {
	return &CategoriaService{repo: repo}
}

func (s *CategoriaService) Crear(ctx context.Context, req dto.CategoriaRequest) (*model.Categoria, error) {
	categoria := &model.Categoria{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Activo:      true,
	}
	if err := s.repo.Create(ctx, categoria); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("ya existe una categoría con ese nombre")
		}
		return nil, err
	}
	return categoria, nil
}

func (s *CategoriaService) Listar(ctx context.Context) ([]model.Categoria, error) {
	return s.repo.List(ctx)
}

func (s *CategoriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.CategoriaRequest) (*model.Categoria, error) {
	categoria, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("categoría no encontrada")
		}
		return nil, err
	}
	categoria.Nombre = req.Nombre
	categoria.Descripcion = req.Descripcion
	if err := s.repo.Update(ctx, categoria); err != nil {
		return nil, err
	}
	return categoria, nil
}

func (s *CategoriaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("categoría no encontrada")
		}
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}
