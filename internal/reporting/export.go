package reporting

import (
	"context"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Alioune4002/boutique-caisse/pkg/enums"
	pkgerrors "github.com/Alioune4002/boutique-caisse/pkg/errors"
)

const exportListingLimit = 100

// ExportXLSX renders the full revenue report as a spreadsheet: one sheet
// per aggregation period plus the raw sale and payment listings.
func (s *service) ExportXLSX(ctx context.Context, from, to time.Time) ([]byte, error) {
	summary, err := s.Summary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	headerStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to build spreadsheet style")
	}

	sheets := []struct {
		name    string
		buckets []Bucket
	}{
		{"CA par jour", summary.ByDay},
		{"CA par semaine", summary.ByWeek},
		{"CA par mois", summary.ByMonth},
		{"CA par annee", summary.ByYear},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := file.SetSheetName(file.GetSheetName(0), sheet.name); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to rename sheet")
			}
		} else {
			if _, err := file.NewSheet(sheet.name); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to add sheet")
			}
		}
		if err := writeBucketSheet(file, sheet.name, sheet.buckets, headerStyle); err != nil {
			return nil, err
		}
	}

	if err := s.writeListingSheets(ctx, file, headerStyle); err != nil {
		return nil, err
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to serialize spreadsheet")
	}
	return buffer.Bytes(), nil
}

func writeBucketSheet(file *excelize.File, sheet string, buckets []Bucket, headerStyle int) error {
	modes := enums.PaymentModes()

	headers := []string{"Periode"}
	for _, mode := range modes {
		headers = append(headers, mode.String())
	}
	headers = append(headers, "Total")

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to address cell")
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to write header")
		}
		if err := file.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to style header")
		}
	}

	for row, bucket := range buckets {
		values := []any{bucket.Key}
		for _, mode := range modes {
			amount := bucket.ByMode[mode.String()]
			values = append(values, amount.InexactFloat64())
		}
		values = append(values, bucket.Total.InexactFloat64())

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to address cell")
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to write row")
			}
		}
	}
	return nil
}

func (s *service) writeListingSheets(ctx context.Context, file *excelize.File, headerStyle int) error {
	sales, err := s.RecentSales(ctx, exportListingLimit)
	if err != nil {
		return err
	}
	if _, err := file.NewSheet("Ventes"); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to add sheet")
	}
	saleRows := make([][]any, 0, len(sales))
	for _, sale := range sales {
		name := ""
		if sale.Product != nil {
			name = sale.Product.Name
		}
		saleRows = append(saleRows, []any{
			sale.SoldAt.UTC().Format("2006-01-02 15:04"),
			name,
			sale.Quantity,
			sale.Total.InexactFloat64(),
		})
	}
	if err := writeListing(file, "Ventes", []string{"Date", "Produit", "Quantite", "Total"}, saleRows, headerStyle); err != nil {
		return err
	}

	payments, err := s.RecentPayments(ctx, exportListingLimit)
	if err != nil {
		return err
	}
	if _, err := file.NewSheet("Paiements"); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to add sheet")
	}
	paymentRows := make([][]any, 0, len(payments))
	for _, payment := range payments {
		paymentRows = append(paymentRows, []any{
			payment.PaidAt.UTC().Format("2006-01-02 15:04"),
			payment.Mode.String(),
			payment.Amount.InexactFloat64(),
		})
	}
	return writeListing(file, "Paiements", []string{"Date", "Mode", "Montant"}, paymentRows, headerStyle)
}

func writeListing(file *excelize.File, sheet string, headers []string, rows [][]any, headerStyle int) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to address cell")
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to write header")
		}
		if err := file.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to style header")
		}
	}
	for rowIdx, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to address cell")
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to write row")
			}
		}
	}
	return nil
}
