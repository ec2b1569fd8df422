package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"

	"github.com/xuri/excelize/v2"
)

const purchasesSheet = "Purchases"

var purchaseColumns = []string{
	"ID", "Article", "External ID", "Pickup point", "Status", "Has report", "Created at", "Updated at",
}

// ExportPurchases reloads purchases and renders them as an XLSX workbook.
func (a *App) ExportPurchases(ctx context.Context) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "App.ExportPurchases")
	defer span.End()

	if _, err := a.client(); err != nil {
		return nil, err
	}
	return PurchasesXLSX(a.LoadPurchases(ctx))
}

// PurchasesXLSX renders purchases as a single-sheet workbook with a
// header row.
func PurchasesXLSX(purchases []domain.Purchase) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", purchasesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(purchaseColumns))
	for i, c := range purchaseColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(purchasesSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(purchasesSheet, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, p := range purchases {
		row := []any{
			p.ID,
			p.Article,
			p.ExternalID,
			p.PickupPoint,
			p.Status,
			yesNo(p.HasReport),
			p.CreatedAt,
			p.UpdatedAt,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(purchasesSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(purchasesSheet, "B", "D", 20); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
