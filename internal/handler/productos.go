package handler

import (
	"net/http"
	"strconv"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/middleware"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/repository"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductoHandler struct {
	svc   *service.ProductoService
	stock *service.StockService
}

func NewProductoHandler(svc *service.ProductoService, stock *service.StockService) *ProductoHandler {
	return &ProductoHandler{svc: svc, stock: stock}
}

// Crear godoc
// @Summary Alta de producto con stock inicial opcional
// @Tags productos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearProductoRequest true "Producto"
// @Success 201 {object} model.Producto
// @Failure 409 {object} apierror.APIError "Código de barras duplicado"
// @Router /v1/productos [post]
func (h *ProductoHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	producto, err := h.svc.Crear(c.Request.Context(), claims.UsuarioID(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, producto)
}

func (h *ProductoHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	producto, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, producto)
}

// PorBarcode godoc
// @Summary Consulta de producto por código de barras (camino del scanner)
// @Tags productos
// @Produce json
// @Security BearerAuth
// @Param barcode path string true "Código de barras"
// @Success 200 {object} dto.ConsultaPrecioResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/productos/barcode/{barcode} [get]
func (h *ProductoHandler) PorBarcode(c *gin.Context) {
	resp, err := h.svc.ObtenerPorBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Buscar hace búsqueda parcial por nombre para códigos que no escanean.
func (h *ProductoHandler) Buscar(c *gin.Context) {
	termino := c.Query("q")
	if termino == "" {
		c.JSON(http.StatusBadRequest, apierror.New("falta el parámetro q"))
		return
	}
	limite, _ := strconv.Atoi(c.DefaultQuery("limite", "20"))
	productos, err := h.svc.Buscar(c.Request.Context(), termino, limite)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productos)
}

func (h *ProductoHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	productos, total, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": productos, "total": total, "pagina": filter.Pagina, "limite": filter.Limite})
}

// StockBajo lista productos en o bajo su mínimo de reposición.
func (h *ProductoHandler) StockBajo(c *gin.Context) {
	productos, err := h.svc.StockBajo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productos)
}

func (h *ProductoHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.ActualizarProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	producto, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, producto)
}

func (h *ProductoHandler) Desactivar(c *gin.Context) {
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

func (h *ProductoHandler) Reactivar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.Reactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AjustarStock godoc
// @Summary Ajuste manual de stock (merma, rotura, conteo físico)
// @Tags productos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de producto"
// @Param body body dto.AjusteStockRequest true "Delta y motivo"
// @Success 201 {object} model.MovimientoStock
// @Failure 409 {object} apierror.APIError "El ajuste dejaría stock negativo"
// @Router /v1/productos/{id}/ajuste-stock [post]
func (h *ProductoHandler) AjustarStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.AjusteStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	mov, err := h.stock.AjustarStock(c.Request.Context(), id, req.Cantidad, claims.UsuarioID(), req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mov)
}

// Movimientos lista la bitácora de stock, filtrable por producto y tipo.
func (h *ProductoHandler) Movimientos(c *gin.Context) {
	var q dto.MovimientoStockFilter
	if !bindQueryAndValidate(c, &q) {
		return
	}
	filter := repository.MovimientoStockFilter{Tipo: q.Tipo, Pagina: q.Pagina, Limite: q.Limite}
	if q.ProductoID != "" {
		id, err := uuid.Parse(q.ProductoID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("producto_id inválido"))
			return
		}
		filter.ProductoID = &id
	}
	movs, total, err := h.stock.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": movs, "total": total, "pagina": filter.Pagina, "limite": filter.Limite})
}
