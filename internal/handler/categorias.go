package handler

import (
	"net/http"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CategoriaHandler struct{ svc *service.CategoriaService }

func NewCategoriaHandler(svc *service.CategoriaService) *CategoriaHandler {
	return &CategoriaHandler{svc: svc}
}

func (h *CategoriaHandler) Crear(c *gin.Context) {
	var req dto.CategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	categoria, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, categoria)
}

func (h *CategoriaHandler) Listar(c *gin.Context) {
	categorias, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categorias)
}

func (h *CategoriaHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.CategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	categoria, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categoria)
}

func (h *CategoriaHandler) Desactivar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
