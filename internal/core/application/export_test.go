package application_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/morphcodes/morphd/internal/core/application"
	"github.com/morphcodes/morphd/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestExportScansCSV(t *testing.T) {
	ctx := context.Background()
	svc, repoManager := newTestService(t)
	chain, values := seedChain(t, repoManager, "export", 3, "org-export")

	_, err := svc.Scan(ctx, chain.ID, values[2], application.ScanMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	_, err = svc.Scan(ctx, chain.ID, "bogus", application.ScanMeta{IP: "10.0.0.2"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(
		t, application.ExportScansCSV(ctx, svc, "org-export", chain.ID, &buf),
	)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "Scan ID", records[0][0])

	// newest first: the rejected scan comes before the accepted one
	require.Equal(t, "false", records[1][3])
	require.Equal(t, domain.ReasonValueNotInChain.String(), records[1][4])
	require.Equal(t, "10.0.0.2", records[1][5])
	require.Equal(t, "true", records[2][3])
	require.Equal(t, "", records[2][4])

	err = application.ExportScansCSV(ctx, svc, "org-other", chain.ID, &buf)
	require.ErrorIs(t, err, domain.ErrChainNotFound)
}
