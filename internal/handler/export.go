package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/util"
)

const exportSheet = "Consignments"

var exportHeaders = []string{"ID", "Customer", "Phone", "Amount", "Status", "Date"}

func exportRow(p ledger.Parcel) []string {
	return []string{
		p.ID,
		p.CustomerName,
		p.Phone,
		util.FormatMoney(p.Amount),
		string(p.Status),
		p.CreatedAt.Format("2006-01-02"),
	}
}

func (h *LedgerHandler) exportParcels(c *gin.Context) ([]ledger.Parcel, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	parcels, err := h.Ledgers.Parcels(c.Request.Context(), merchantOf(user))
	if err != nil {
		ledgerFail(c, err)
		return nil, false
	}
	return parcels, true
}

// ExportCSV 导出包裹报表为 CSV
func (h *LedgerHandler) ExportCSV(c *gin.Context) {
	parcels, ok := h.exportParcels(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"consignments_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM（让 Excel 正确识别非 ASCII 字符）
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(exportHeaders)
	for _, p := range parcels {
		_ = writer.Write(exportRow(p))
	}
	writer.Flush()
}

// ExportXLSX 导出包裹报表为 XLSX
func (h *LedgerHandler) ExportXLSX(c *gin.Context) {
	parcels, ok := h.exportParcels(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}

	for i, hdr := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, hdr)
	}
	for idx, p := range parcels {
		row := idx + 2
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), p.ID)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("B%d", row), p.CustomerName)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("C%d", row), p.Phone)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("D%d", row), p.Amount)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("E%d", row), string(p.Status))
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("F%d", row), p.CreatedAt.Format("2006-01-02"))
	}

	// 设置列宽
	_ = f.SetColWidth(exportSheet, "A", "A", 14)
	_ = f.SetColWidth(exportSheet, "B", "B", 24)
	_ = f.SetColWidth(exportSheet, "C", "C", 14)
	_ = f.SetColWidth(exportSheet, "D", "D", 12)
	_ = f.SetColWidth(exportSheet, "E", "E", 18)
	_ = f.SetColWidth(exportSheet, "F", "F", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"consignments_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
