package infra

// Generación del ticket PDF de una venta con go-pdf/fpdf: formato térmico
// 74×105mm con encabezado del comercio, número de venta, tabla de líneas,
// descuento e IVA, total en negrita y pago/cambio.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerarTicketPDF escribe el comprobante de una venta COMPLETADA en
// storagePath (se crea si no existe) y devuelve la ruta del archivo.
// Requiere venta.Detalles con Producto precargado y venta.Pagos.
func GenerarTicketPDF(venta *model.Venta, nombreComercio, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: crear directorio: %w", err)
	}

	fileName := fmt.Sprintf("ticket_%s.pdf", strings.ToLower(venta.NumeroVenta))
	filePath := filepath.Join(storagePath, fileName)

	// 74×105mm se aproxima al papel térmico de 80mm.
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, nombreComercio, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Comprobante de Venta", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, venta.NumeroVenta, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, venta.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// Líneas: nombre, cantidad, subtotal
	pdf.SetFont("Helvetica", "", 7)
	for _, d := range venta.Detalles {
		nombre := ""
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		if len(nombre) > 26 {
			nombre = nombre[:26]
		}
		pdf.CellFormat(contentW*0.55, 4, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.15, 4, fmt.Sprintf("x%d", d.Cantidad), "", 0, "R", false, 0, "")
		pdf.CellFormat(contentW*0.30, 4, d.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(1)

	linea := func(etiqueta, valor string, bold bool) {
		estilo := ""
		if bold {
			estilo = "B"
		}
		pdf.SetFont("Helvetica", estilo, 8)
		pdf.CellFormat(contentW*0.6, 5, etiqueta, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 5, valor, "", 1, "R", false, 0, "")
	}

	linea("Subtotal", venta.Subtotal.StringFixed(2), false)
	if !venta.Descuento.IsZero() {
		linea("Descuento", "-"+venta.Descuento.StringFixed(2), false)
	}
	if !venta.IVA.IsZero() {
		linea("IVA", venta.IVA.StringFixed(2), false)
	}
	linea("TOTAL", venta.Total.StringFixed(2), true)
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Pago: "+venta.MetodoPago, "", 1, "L", false, 0, "")
	for _, p := range venta.Pagos {
		if p.Referencia != nil && *p.Referencia != "" {
			pdf.CellFormat(contentW, 4, *p.Referencia, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(2)
	pdf.CellFormat(contentW, 4, "¡Gracias por su compra!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: escribir %s: %w", filePath, err)
	}
	return filePath, nil
}
