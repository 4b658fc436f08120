package convert

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtconv/internal/export"
	"github.com/cleared-dev/stmtconv/internal/pdftest"
	"github.com/cleared-dev/stmtconv/internal/statement"
)

func scenarioPDF(lastBalance string) []byte {
	return pdftest.Build(pdftest.Page{
		{"Date", "Description", "Amount", "Balance"},
		{"2024-01-05", "COFFEE SHOP", "-4.50", "1995.50"},
		{"2024-01-06", "SALARY ACME CORP", "2500.00", "4495.50"},
		{"2024-01-07", "GROCERY MART", "-120.25", lastBalance},
	})
}

func newService(t *testing.T, strict bool) (*Service, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	ex := statement.NewExtractor(nil, statement.Options{
		Now: func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
	return New(ex, logger, strict), &logs
}

func TestConvert_CSV(t *testing.T) {
	svc, logs := newService(t, false)

	res, err := svc.Convert(context.Background(), bytes.NewReader(scenarioPDF("4375.25")), Request{Name: "jan.pdf"})
	require.NoError(t, err)
	assert.Equal(t, export.CSV, res.Format)
	assert.Empty(t, res.Issues)
	assert.Equal(t, "date,description,amount,balance\n"+
		"2024-01-05,COFFEE SHOP,-4.50,1995.50\n"+
		"2024-01-06,SALARY ACME CORP,2500.00,4495.50\n"+
		"2024-01-07,GROCERY MART,-120.25,4375.25\n", string(res.Data))
	assert.Contains(t, logs.String(), "statement converted")
	assert.Contains(t, logs.String(), "rows=3")
}

func TestConvert_Deterministic(t *testing.T) {
	svc, _ := newService(t, false)
	data := scenarioPDF("4375.25")

	a, err := svc.Convert(context.Background(), bytes.NewReader(data), Request{})
	require.NoError(t, err)
	b, err := svc.Convert(context.Background(), bytes.NewReader(data), Request{})
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
}

func TestConvert_XLSX(t *testing.T) {
	svc, _ := newService(t, false)

	res, err := svc.Convert(context.Background(), bytes.NewReader(scenarioPDF("4375.25")), Request{Format: export.XLSX})
	require.NoError(t, err)
	assert.Equal(t, []byte("PK"), res.Data[:2], "xlsx is a zip archive")
}

func TestConvert_BalanceMismatchWarns(t *testing.T) {
	svc, logs := newService(t, false)

	res, err := svc.Convert(context.Background(), bytes.NewReader(scenarioPDF("4000.00")), Request{})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Contains(t, logs.String(), "running balance mismatch")
}

func TestConvert_BalanceMismatchStrict(t *testing.T) {
	svc, _ := newService(t, true)

	res, err := svc.Convert(context.Background(), bytes.NewReader(scenarioPDF("4000.00")), Request{})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, statement.ErrBalanceMismatch)
	assert.True(t, IsParseError(err))
}

func TestConvert_Unreadable(t *testing.T) {
	svc, logs := newService(t, false)

	res, err := svc.Convert(context.Background(), bytes.NewReader([]byte("not a pdf")), Request{Name: "x.pdf"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, IsParseError(err))
	assert.ErrorIs(t, err, statement.ErrUnreadable)
	assert.Contains(t, logs.String(), "statement rejected")
}

func TestConvert_LayoutOverride(t *testing.T) {
	svc, _ := newService(t, false)

	_, err := svc.Convert(context.Background(), bytes.NewReader(scenarioPDF("4375.25")), Request{Layout: "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, statement.ErrLayoutNotRecognized)
}

func TestConvert_Canceled(t *testing.T) {
	svc, _ := newService(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Convert(ctx, bytes.NewReader(scenarioPDF("4375.25")), Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsParseError(err))
}

func TestIsParseError(t *testing.T) {
	assert.False(t, IsParseError(errors.New("disk full")))
}
