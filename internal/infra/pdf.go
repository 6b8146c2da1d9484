package infra

// pdf.go generates A7-size thermal receipt PDFs for finalized invoices using
// go-pdf/fpdf: store header, invoice number and timestamp, item table,
// discount line when applicable, and a bold net total.
//
// The output file is saved to storagePath/invoice_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"tillpos/internal/model"
)

// truncateName shortens a product name to max display characters. Slicing by
// rune keeps multibyte names intact instead of cutting mid-character.
func truncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-1]) + "…"
}

// ReceiptRenderer writes invoice receipts as PDF files under a storage dir.
type ReceiptRenderer struct {
	storagePath string
	storeName   string
}

func NewReceiptRenderer(storagePath, storeName string) *ReceiptRenderer {
	return &ReceiptRenderer{storagePath: storagePath, storeName: storeName}
}

// Render writes the receipt for inv and returns the absolute path of the file.
func (r *ReceiptRenderer) Render(inv *model.Invoice) (string, error) {
	if err := os.MkdirAll(r.storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("invoice_%d.pdf", inv.ID)
	filePath := filepath.Join(r.storagePath, fileName)

	// 74mm x 105mm, close to thermal receipt paper (fpdf has no named A7)
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, r.storeName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	label := "Sales Receipt"
	switch inv.PaymentType {
	case model.PaymentDeferred:
		label = "Deferred Sale"
	case model.PaymentReturn:
		label = "Return Receipt"
	}
	pdf.CellFormat(contentW, 5, label, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Invoice #%d", inv.ID), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, inv.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if inv.CustomerName != nil && *inv.CustomerName != "" {
		pdf.CellFormat(contentW, 4, "Customer: "+*inv.CustomerName, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.52 // product name
	col2 := contentW * 0.16 // qty
	col3 := contentW * 0.32 // line net

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range inv.Items {
		name := item.ProductID.String()[:8]
		if item.Product != nil {
			name = item.Product.Name
		}
		pdf.CellFormat(col1, 5, truncateName(name, 22), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.LineNetTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	if !inv.Discount.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Discount:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-$"+inv.Discount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+inv.NetTotal.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
