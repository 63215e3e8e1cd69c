package service_test

// Stubs en memoria de los repositorios. El DB() nil hace que runTx ejecute
// sin transacción real; acá se prueba la lógica de negocio, la atomicidad
// contra Postgres de verdad se cubre en tests/e2e.

import (
	"context"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── ProductoRepository ───────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) seed(nombre, codigo string, stock int, precio float64) *model.Producto {
	p := &model.Producto{
		ID:           uuid.New(),
		CodigoBarras: codigo,
		Nombre:       nombre,
		PrecioVenta:  decimal.NewFromFloat(precio),
		Stock:        stock,
		StockMinimo:  5,
		Activo:       true,
	}
	r.productos[p.ID] = p
	return p
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) FindByBarcode(_ context.Context, codigo string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.CodigoBarras == codigo && p.Activo {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) SearchByNombre(_ context.Context, _ string, _ int) ([]model.Producto, error) {
	return nil, nil
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) ListStockBajo(_ context.Context) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.Activo && p.Stock <= p.StockMinimo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = true
	}
	return nil
}

func (r *stubProductoRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *p
	return &copia, nil
}

func (r *stubProductoRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += delta
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── MovimientoStockRepository ────────────────────────────────────────────────

type stubMovimientoRepo struct {
	movimientos []model.MovimientoStock
	failCreate  error
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, _ repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	return r.movimientos, int64(len(r.movimientos)), nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

// ── CajaRepository ───────────────────────────────────────────────────────────

type stubCajaRepo struct {
	cajas       map[uuid.UUID]*model.Caja
	sesiones    map[uuid.UUID]*model.SesionCaja
	movimientos []model.MovimientoCaja
	// totalVentas alimenta SumVentasCompletadas por sesión.
	totalVentas map[uuid.UUID]decimal.Decimal
	// failCreateSesion simula el rechazo del store al crear la sesión.
	failCreateSesion error
}

func newStubCajaRepo() *stubCajaRepo {
	return &stubCajaRepo{
		cajas:       make(map[uuid.UUID]*model.Caja),
		sesiones:    make(map[uuid.UUID]*model.SesionCaja),
		totalVentas: make(map[uuid.UUID]decimal.Decimal),
	}
}

func (r *stubCajaRepo) seedCaja(nombre string) *model.Caja {
	c := &model.Caja{ID: uuid.New(), Nombre: nombre, Activo: true}
	r.cajas[c.ID] = c
	return c
}

func (r *stubCajaRepo) ListCajas(_ context.Context) ([]model.Caja, error) {
	out := make([]model.Caja, 0, len(r.cajas))
	for _, c := range r.cajas {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCajaRepo) FindCajaByID(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	c, ok := r.cajas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCajaRepo) CreateSesion(_ context.Context, s *model.SesionCaja) error {
	if r.failCreateSesion != nil {
		return r.failCreateSesion
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubCajaRepo) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	// Copia, como una fila recién cargada: mutarla no toca lo guardado.
	copia := *s
	return &copia, nil
}

func (r *stubCajaRepo) FindSesionAbiertaPorUsuario(_ context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.UsuarioID == usuarioID && s.Estado == model.SesionAbierta {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCajaRepo) FindSesionAbiertaPorCaja(_ context.Context, cajaID uuid.UUID) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.CajaID == cajaID && s.Estado == model.SesionAbierta {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCajaRepo) FindSesionAbiertaPorUsuarioTx(_ *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	return r.FindSesionAbiertaPorUsuario(context.Background(), usuarioID)
}

func (r *stubCajaRepo) UpdateSesion(_ context.Context, s *model.SesionCaja) error {
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubCajaRepo) CerrarSesion(_ context.Context, s *model.SesionCaja) (int64, error) {
	actual, ok := r.sesiones[s.ID]
	if !ok || actual.Estado != model.SesionAbierta {
		return 0, nil
	}
	actual.Estado = model.SesionCerrada
	actual.MontoEsperado = s.MontoEsperado
	actual.MontoFinal = s.MontoFinal
	actual.Diferencia = s.Diferencia
	actual.Observaciones = s.Observaciones
	actual.CerradaAt = s.CerradaAt
	return 1, nil
}

func (r *stubCajaRepo) ListSesionesCerradas(_ context.Context, _, _ int) ([]model.SesionCaja, int64, error) {
	var out []model.SesionCaja
	for _, s := range r.sesiones {
		if s.Estado == model.SesionCerrada {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubCajaRepo) CreateMovimiento(_ context.Context, m *model.MovimientoCaja) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubCajaRepo) ListMovimientos(_ context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.SesionCajaID == sesionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubCajaRepo) SumVentasCompletadas(_ context.Context, sesionID uuid.UUID) (decimal.Decimal, error) {
	if total, ok := r.totalVentas[sesionID]; ok {
		return total, nil
	}
	return decimal.Zero, nil
}

func (r *stubCajaRepo) SumMovimientos(_ context.Context, sesionID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	ingresos, egresos := decimal.Zero, decimal.Zero
	for _, m := range r.movimientos {
		if m.SesionCajaID != sesionID {
			continue
		}
		switch m.Tipo {
		case model.MovimientoIngreso:
			ingresos = ingresos.Add(m.Monto)
		case model.MovimientoEgreso:
			egresos = egresos.Add(m.Monto)
		}
	}
	return ingresos, egresos, nil
}

var _ repository.CajaRepository = (*stubCajaRepo)(nil)

// ── VentaRepository ──────────────────────────────────────────────────────────

type stubVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
	seq    int64
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) CreateTx(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	for i := range v.Detalles {
		if v.Detalles[i].ID == uuid.Nil {
			v.Detalles[i].ID = uuid.New()
		}
		v.Detalles[i].VentaID = v.ID
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubVentaRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) error {
	v, ok := r.ventas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Estado = estado
	return nil
}

func (r *stubVentaRepo) NextNumero(_ context.Context, _ *gorm.DB) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, error) {
	out := make([]model.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, nil
}

func (r *stubVentaRepo) ListHoy(_ context.Context) ([]model.Venta, error) {
	return r.List(context.Background(), dto.VentaFilter{})
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── ClienteRepository ────────────────────────────────────────────────────────

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
	general  *model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	general := &model.Cliente{
		ID:        uuid.New(),
		Nombre:    "Cliente General",
		Documento: model.ClienteGeneralDoc,
		Activo:    true,
	}
	r := &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente), general: general}
	r.clientes[general.ID] = general
	return r
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	for _, existente := range r.clientes {
		if existente.Documento == c.Documento {
			return gorm.ErrDuplicatedKey
		}
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClienteRepo) FindClienteGeneral(_ context.Context) (*model.Cliente, error) {
	return r.general, nil
}

func (r *stubClienteRepo) List(_ context.Context, _ string) ([]model.Cliente, error) {
	out := make([]model.Cliente, 0, len(r.clientes))
	for _, c := range r.clientes {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if c, ok := r.clientes[id]; ok {
		c.Activo = false
	}
	return nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)
