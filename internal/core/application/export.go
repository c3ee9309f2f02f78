package application

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

const exportScanLimit = 10000

// ExportScansCSV streams a chain's audit trail as CSV, most recent scan
// first. Only the chain's owning organization may export.
func ExportScansCSV(ctx context.Context, svc Service, orgID, chainID string, w io.Writer) error {
	scans, err := svc.GetScans(ctx, orgID, chainID, exportScanLimit)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{
		"Scan ID", "Value", "Position", "Accepted", "Reason", "IP Address",
		"User Agent", "Scanned At",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, scan := range scans {
		reason := ""
		if !scan.Accepted {
			reason = scan.Reason.String()
		}
		record := []string{
			scan.ID,
			scan.Value,
			strconv.Itoa(scan.Position),
			strconv.FormatBool(scan.Accepted),
			reason,
			scan.IP,
			scan.UserAgent,
			scan.ScannedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
