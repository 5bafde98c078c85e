package controllers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"

	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
)

// DownloadCommissionReportExcel streams the commission report as a spreadsheet
func DownloadCommissionReportExcel(c *gin.Context) {
	utils.LogInfo("DownloadCommissionReportExcel called")

	period := c.DefaultQuery("period", "day")
	startDate, endDate, ok := reportWindow(c)
	if !ok {
		return
	}
	commissions, ok := loadCommissionsForReport(c, startDate, endDate)
	if !ok {
		return
	}
	summary := summarizeCommissions(commissions)
	names := establishmentNames(commissions)

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Commission Report")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", err.Error())
		return
	}

	titleRow := sheet.AddRow()
	titleRow.AddCell().SetString("GIFTCARD PLATFORM - Commission Report")
	titleRow = sheet.AddRow()
	titleRow.AddCell().SetString("Period: " + strings.ToUpper(period) + " | " + startDate.Format("2006-01-02") + " to " + endDate.Format("2006-01-02"))
	sheet.AddRow() // spacing

	headers := []string{"ID", "Establishment", "Transaction ID", "Amount", "Rate %", "Status", "Due Date", "Paid At", "Created"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	for _, commission := range commissions {
		dueDate := ""
		if commission.DueDate != nil {
			dueDate = commission.DueDate.Format("2006-01-02")
		}
		paidAt := ""
		if commission.PaidAt != nil {
			paidAt = commission.PaidAt.Format("2006-01-02 15:04")
		}

		row := sheet.AddRow()
		row.AddCell().SetInt(int(commission.ID))
		row.AddCell().SetString(names[commission.EstablishmentID])
		row.AddCell().SetInt(int(commission.TransactionID))
		row.AddCell().SetString(commission.Amount.StringFixed(2))
		row.AddCell().SetString(commission.Rate.StringFixed(2))
		row.AddCell().SetString(commission.Status)
		row.AddCell().SetString(dueDate)
		row.AddCell().SetString(paidAt)
		row.AddCell().SetString(commission.CreatedAt.Format("2006-01-02 15:04"))
	}

	sheet.AddRow() // spacing

	summaryRow := sheet.AddRow()
	summaryRow.AddCell().SetString("Summary")
	style := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	style.Font = *font
	summaryRow.Cells[0].SetStyle(style)

	summaryData := [][]string{
		{"Total Commissions", fmt.Sprintf("%d", summary.TotalCommissions)},
		{"Total Amount", summary.TotalAmount.StringFixed(2)},
		{"Pending", summary.PendingAmount.StringFixed(2)},
		{"Charged", summary.ChargedAmount.StringFixed(2)},
		{"Paid", summary.PaidAmount.StringFixed(2)},
		{"Failed", summary.FailedAmount.StringFixed(2)},
		{"Establishments", fmt.Sprintf("%d", summary.Establishments)},
		{"Avg. Commission", summary.AverageAmount.StringFixed(2)},
	}
	for _, data := range summaryData {
		row := sheet.AddRow()
		row.AddCell().SetString(data[0])
		row.AddCell().SetString(data[1])
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=commission_report_%s.xlsx", period))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", err.Error())
		return
	}
	utils.LogInfo("Excel commission report generated for period %s", period)
}

// DownloadCommissionReportPDF streams the commission report as a PDF
func DownloadCommissionReportPDF(c *gin.Context) {
	utils.LogInfo("DownloadCommissionReportPDF called")

	period := c.DefaultQuery("period", "day")
	startDate, endDate, ok := reportWindow(c)
	if !ok {
		return
	}
	commissions, ok := loadCommissionsForReport(c, startDate, endDate)
	if !ok {
		return
	}
	summary := summarizeCommissions(commissions)
	names := establishmentNames(commissions)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "GIFTCARD PLATFORM - Commission Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Period: "+strings.ToUpper(period)+" | "+startDate.Format("2006-01-02")+" to "+endDate.Format("2006-01-02"))
	pdf.Ln(10)

	headers := []string{"ID", "Establishment", "Transaction", "Amount", "Rate %", "Status", "Due Date", "Paid At", "Created"}
	colWidths := []float64{18, 55, 25, 28, 20, 25, 28, 38, 38}
	pdf.SetFont("Arial", "B", 11)
	for i, h := range headers {
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(colWidths[i], 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	fill := false
	for _, commission := range commissions {
		pdf.SetFillColor(245, 245, 245)
		if fill {
			pdf.SetFillColor(230, 240, 255)
		}
		fill = !fill

		dueDate := ""
		if commission.DueDate != nil {
			dueDate = commission.DueDate.Format("2006-01-02")
		}
		paidAt := ""
		if commission.PaidAt != nil {
			paidAt = commission.PaidAt.Format("2006-01-02 15:04")
		}

		pdf.CellFormat(colWidths[0], 8, fmt.Sprintf("%d", commission.ID), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[1], 8, names[commission.EstablishmentID], "1", 0, "L", fill, 0, "")
		pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%d", commission.TransactionID), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[3], 8, commission.Amount.StringFixed(2), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colWidths[4], 8, commission.Rate.StringFixed(2), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colWidths[5], 8, commission.Status, "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[6], 8, dueDate, "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[7], 8, paidAt, "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[8], 8, commission.CreatedAt.Format("2006-01-02 15:04"), "1", 0, "C", fill, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 13)
	pdf.SetFillColor(220, 230, 250)
	pdf.CellFormat(70, 10, "Summary", "1", 0, "C", true, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 11)
	pdf.SetFillColor(255, 255, 255)

	summaryData := [][]string{
		{"Total Commissions", fmt.Sprintf("%d", summary.TotalCommissions)},
		{"Total Amount", summary.TotalAmount.StringFixed(2)},
		{"Pending", summary.PendingAmount.StringFixed(2)},
		{"Charged", summary.ChargedAmount.StringFixed(2)},
		{"Paid", summary.PaidAmount.StringFixed(2)},
		{"Failed", summary.FailedAmount.StringFixed(2)},
		{"Establishments", fmt.Sprintf("%d", summary.Establishments)},
		{"Avg. Commission", summary.AverageAmount.StringFixed(2)},
	}
	for _, data := range summaryData {
		pdf.CellFormat(50, 8, data[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, data[1], "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=commission_report_%s.pdf", period))
	if err := pdf.Output(c.Writer); err != nil {
		utils.LogError("Failed to write PDF file: %v", err)
		utils.InternalServerError(c, "Failed to write PDF file", err.Error())
		return
	}
	utils.LogInfo("PDF commission report generated for period %s", period)
}
