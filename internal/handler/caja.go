package handler

import (
	"net/http"
	"strconv"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/middleware"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct{ svc *service.CajaService }

func NewCajaHandler(svc *service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre una sesión de caja para el usuario autenticado
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} model.SesionCaja
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	sesion, err := h.svc.Abrir(c.Request.Context(), claims.UsuarioID(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sesion)
}

// Cerrar godoc
// @Summary Cierra la sesión de caja y devuelve el arqueo
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Monto final contado"
// @Success 200 {object} dto.CierreCajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Cerrar(c.Request.Context(), claims.UsuarioID(), claims.Rol, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MiCaja devuelve el resumen en vivo de la sesión abierta del cajero.
func (h *CajaHandler) MiCaja(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resp, err := h.svc.MiCaja(c.Request.Context(), claims.UsuarioID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarMovimiento registra un ingreso o egreso manual de efectivo.
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	mov, err := h.svc.RegistrarMovimiento(c.Request.Context(), claims.UsuarioID(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mov)
}

// ListCajas enumera las cajas físicas.
func (h *CajaHandler) ListCajas(c *gin.Context) {
	cajas, err := h.svc.ListCajas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cajas)
}

// Historial lista sesiones cerradas, paginado.
func (h *CajaHandler) Historial(c *gin.Context) {
	pagina, _ := strconv.Atoi(c.DefaultQuery("pagina", "1"))
	limite, _ := strconv.Atoi(c.DefaultQuery("limite", "20"))
	sesiones, total, err := h.svc.Historial(c.Request.Context(), pagina, limite)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sesiones, "total": total, "pagina": pagina, "limite": limite})
}

// Movimientos lista los movimientos manuales de una sesión.
func (h *CajaHandler) Movimientos(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	movs, err := h.svc.Movimientos(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movs)
}
