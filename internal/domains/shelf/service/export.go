package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"Title", "Author", "ISBN", "Status", "Condition", "Note", "Added"}

// ExportShelf xuất toàn bộ kệ sách (kể cả private) của owner ra file xlsx
func (s *shelfService) ExportShelf(ctx context.Context, ownerID uuid.UUID) ([]byte, error) {
	items, err := s.copies.ListByOwner(ctx, ownerID, true)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Shelf"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &exportHeaders); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(sheet, "A1", "G1", style)
	}

	for i, it := range items {
		isbn := ""
		if it.ISBN != nil {
			isbn = *it.ISBN
		}
		row := []interface{}{
			it.Title, it.Author, isbn, string(it.Status), string(it.Condition), it.Note,
			it.CreatedAt.Format("2006-01-02"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
