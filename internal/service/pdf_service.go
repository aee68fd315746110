package service

import (
	"bytes"
	"strconv"

	"github.com/promolink-next/internal/constants"
	"github.com/promolink-next/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// PDFService 账单 PDF 导出服务
type PDFService struct {
	settingService *SettingService
}

// NewPDFService 创建 PDF 服务实例
func NewPDFService(settingService *SettingService) *PDFService {
	return &PDFService{settingService: settingService}
}

// RenderInvoice 将账单渲染为 PDF 字节流
// 草稿账单加 DRAFT 水印
func (s *PDFService) RenderInvoice(invoice *models.Invoice) ([]byte, error) {
	if invoice == nil {
		return nil, ErrNotFound
	}

	company, err := s.settingService.GetCompanySettings()
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+invoice.InvoiceNumber, false)
	pdf.AddPage()

	// 公司信头
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, company.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if company.Address != "" {
		pdf.CellFormat(0, 5, company.Address, "", 1, "L", false, 0, "")
	}
	contact := company.Email
	if company.Phone != "" {
		if contact != "" {
			contact += "  |  "
		}
		contact += company.Phone
	}
	if contact != "" {
		pdf.CellFormat(0, 5, contact, "", 1, "L", false, 0, "")
	}
	if company.TaxID != "" {
		pdf.CellFormat(0, 5, "Tax ID: "+company.TaxID, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// 账单抬头
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "INVOICE "+invoice.InvoiceNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Billed to: "+invoice.InfluencerName+" <"+invoice.InfluencerEmail+">", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Reference: "+invoice.InfluencerReference, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6,
		"Period: "+invoice.PeriodStart.Format("2006-01-02")+" to "+invoice.PeriodEnd.Format("2006-01-02"),
		"", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Issue date: "+invoice.IssueDate.Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Due date: "+invoice.DueDate.Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// 行项目表格
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(95, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Unit price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range invoice.Items {
		pdf.CellFormat(95, 8, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, item.UnitPrice.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, item.TotalPrice.String(), "1", 1, "R", false, 0, "")
	}

	// 合计
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(150, 8, "Subtotal", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, invoice.Subtotal.String(), "1", 1, "R", false, 0, "")
	pdf.CellFormat(150, 8, "Tax ("+invoice.TaxRatePercent.String()+"%)", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, invoice.TaxAmount.String(), "1", 1, "R", false, 0, "")
	pdf.CellFormat(150, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, invoice.TotalAmount.String(), "1", 1, "R", false, 0, "")

	if invoice.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, "Notes: "+invoice.Notes, "", "L", false)
	}

	// 草稿水印
	if invoice.Status == constants.InvoiceStatusDraft {
		pdf.SetFont("Helvetica", "B", 60)
		pdf.SetTextColor(220, 220, 220)
		pdf.TransformBegin()
		pdf.TransformRotate(45, 105, 150)
		pdf.Text(55, 160, "DRAFT")
		pdf.TransformEnd()
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
