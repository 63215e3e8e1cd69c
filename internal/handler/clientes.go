package handler

import (
	"net/http"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClienteHandler struct{ svc *service.ClienteService }

func NewClienteHandler(svc *service.ClienteService) *ClienteHandler {
	return &ClienteHandler{svc: svc}
}

func (h *ClienteHandler) Crear(c *gin.Context) {
	var req dto.CrearClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cliente, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cliente)
}

func (h *ClienteHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	cliente, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cliente)
}

func (h *ClienteHandler) Listar(c *gin.Context) {
	clientes, err := h.svc.Listar(c.Request.Context(), c.Query("buscar"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clientes)
}

func (h *ClienteHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.ActualizarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cliente, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cliente)
}

func (h *ClienteHandler) Desactivar(c *gin.Context) {
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
