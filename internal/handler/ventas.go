package handler

import (
	"net/http"
	"path/filepath"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/config"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/middleware"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentaHandler struct {
	svc *service.VentaService
	cfg *config.Config
}

func NewVentaHandler(svc *service.VentaService, cfg *config.Config) *VentaHandler {
	return &VentaHandler{svc: svc, cfg: cfg}
}

// Registrar godoc
// @Summary Registra una venta completa en una transacción atómica
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarVentaRequest true "Items y pago"
// @Success 201 {object} dto.ReciboResponse
// @Failure 409 {object} apierror.APIError "Sin sesión de caja o stock insuficiente"
// @Router /v1/ventas [post]
func (h *VentaHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	recibo, err := h.svc.RegistrarVenta(c.Request.Context(), claims.UsuarioID(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recibo)
}

// Cancelar godoc
// @Summary Cancela una venta COMPLETADA y repone el stock
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de venta"
// @Param body body dto.CancelarVentaRequest true "Motivo de cancelación"
// @Success 204
// @Failure 409 {object} apierror.APIError "La venta no está COMPLETADA"
// @Router /v1/ventas/{id}/cancelar [post]
func (h *VentaHandler) Cancelar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.CancelarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	if err := h.svc.CancelarVenta(c.Request.Context(), id, claims.UsuarioID(), req.Motivo); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Obtener devuelve la venta con detalles, pagos, cliente y cajero.
func (h *VentaHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	venta, err := h.svc.ObtenerVenta(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, venta)
}

// Listar filtra ventas por fecha, cajero o método de pago.
func (h *VentaHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	ventas, err := h.svc.ListarVentas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ventas})
}

// Ticket descarga el comprobante PDF de una venta COMPLETADA.
func (h *VentaHandler) Ticket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	path, err := h.svc.TicketPDF(c.Request.Context(), id, h.cfg.NombreComercio, h.cfg.PDFStoragePath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// Hoy resume las ventas del día para el tablero.
func (h *VentaHandler) Hoy(c *gin.Context) {
	resp, err := h.svc.VentasHoy(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
