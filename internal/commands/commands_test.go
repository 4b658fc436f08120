package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtconv/internal/pdftest"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "stmtconv-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "stmtconv")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/stmtconv")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runStmtconv(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "STMTCONV_LOG_LEVEL=warn")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func writeFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func isoStatement(lastBalance string) []byte {
	return pdftest.Build(pdftest.Page{
		{"Date", "Description", "Amount", "Balance"},
		{"2024-01-05", "COFFEE SHOP", "-4.50", "1995.50"},
		{"2024-01-06", "SALARY ACME CORP", "2500.00", "4495.50"},
		{"2024-01-07", "GROCERY MART", "-120.25", lastBalance},
	})
}

func TestParse_WritesCSV(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "jan.pdf", isoStatement("4375.25"))
	out := filepath.Join(dir, "jan.csv")

	stdout, err := runStmtconv(t, dir, "parse", in, out)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "Wrote 3 transactions")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "date,description,amount,balance\n"+
		"2024-01-05,COFFEE SHOP,-4.50,1995.50\n"+
		"2024-01-06,SALARY ACME CORP,2500.00,4495.50\n"+
		"2024-01-07,GROCERY MART,-120.25,4375.25\n", string(data))
}

func TestParse_Deterministic(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "jan.pdf", isoStatement("4375.25"))

	_, err := runStmtconv(t, dir, "parse", in, "a.csv")
	require.NoError(t, err)
	_, err = runStmtconv(t, dir, "parse", in, "b.csv")
	require.NoError(t, err)

	a, err := os.ReadFile(filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, "b.csv"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParse_XLSXFromExtension(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "jan.pdf", isoStatement("4375.25"))

	_, err := runStmtconv(t, dir, "parse", in, "jan.xlsx")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "jan.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "PK", string(data[:2]))
}

func TestParse_USLayoutWithYear(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "statement.pdf", pdftest.Build(pdftest.Page{
		{"08/01", "Purchase Costco Whse", "13.99"},
		{"", "FL S305212532878398"},
		{"08/04", "Mobile Deposit", "64.00"},
	}))

	stdout, err := runStmtconv(t, dir, "parse", in, "out.csv", "--year", "2025")
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "layout: us")

	data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	assert.Equal(t, "date,description,amount,balance\n"+
		"2025-08-01,Purchase Costco Whse FL S305212532878398,-13.99,\n"+
		"2025-08-04,Mobile Deposit,64.00,\n", string(data))
}

func TestParse_UnreadableLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "bad.pdf", []byte("%PDF-1.4\nthis is not really a pdf"))
	out := filepath.Join(dir, "bad.csv")

	stdout, err := runStmtconv(t, dir, "parse", in, out)
	require.Error(t, err)
	assert.Contains(t, stdout, "unreadable PDF")
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output file should be written")
}

func TestParse_NoTable(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "letter.pdf", pdftest.Build(pdftest.Lines("Dear customer,", "Welcome aboard.")))

	stdout, err := runStmtconv(t, dir, "parse", in, "letter.csv")
	require.Error(t, err)
	assert.Contains(t, stdout, "layout not recognized")
	_, statErr := os.Stat(filepath.Join(dir, "letter.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestParse_StrictBalanceMismatch(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "jan.pdf", isoStatement("9999.99"))

	_, err := runStmtconv(t, dir, "parse", in, "lenient.csv")
	require.NoError(t, err)

	stdout, err := runStmtconv(t, dir, "parse", in, "strict.csv", "--strict")
	require.Error(t, err)
	assert.Contains(t, stdout, "running balance mismatch")
	_, statErr := os.Stat(filepath.Join(dir, "strict.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestParse_StrictFromConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "jan.pdf", isoStatement("9999.99"))
	cfg := writeFixture(t, dir, "stmtconv.yaml", []byte("parse:\n  strict: true\n"))

	_, err := runStmtconv(t, dir, "--config", cfg, "parse", in, "out.csv")
	require.Error(t, err)
}

func TestParse_MissingArgs(t *testing.T) {
	stdout, err := runStmtconv(t, t.TempDir(), "parse", "only-one.pdf")
	require.Error(t, err)
	assert.Contains(t, stdout, "accepts 2 arg(s)")
}

func TestParse_MissingInput(t *testing.T) {
	dir := t.TempDir()
	stdout, err := runStmtconv(t, dir, "parse", "nope.pdf", "out.csv")
	require.Error(t, err)
	assert.Contains(t, stdout, "opening input")
}

func TestParse_BadFormat(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "jan.pdf", isoStatement("4375.25"))

	stdout, err := runStmtconv(t, dir, "parse", in, "out.csv", "--format", "ofx")
	require.Error(t, err)
	assert.Contains(t, stdout, "unknown output format")
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()

	stdout, err := runStmtconv(t, dir, "config", "init")
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "Wrote default configuration")

	data, err := os.ReadFile(filepath.Join(dir, "stmtconv.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "port: 3000")
	assert.Contains(t, string(data), "max_upload_mb: 20")

	stdout, err = runStmtconv(t, dir, "config", "init")
	require.Error(t, err)
	assert.Contains(t, stdout, "already exists")

	_, err = runStmtconv(t, dir, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigInit_LoadsBack(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "conf", "custom.yaml")

	_, err := runStmtconv(t, dir, "config", "init", cfgPath)
	require.NoError(t, err)

	in := writeFixture(t, dir, "jan.pdf", isoStatement("4375.25"))
	stdout, err := runStmtconv(t, dir, "--config", cfgPath, "parse", in, "out.csv")
	require.NoError(t, err, stdout)
}

func TestLayouts(t *testing.T) {
	stdout, err := runStmtconv(t, t.TempDir(), "layouts")
	require.NoError(t, err)
	assert.Contains(t, stdout, "us ")
	assert.Contains(t, stdout, "iso ")
}

func TestVersion(t *testing.T) {
	stdout, err := runStmtconv(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stmtconv version dev")
}

func TestInvalidLogLevel(t *testing.T) {
	stdout, err := runStmtconv(t, t.TempDir(), "layouts", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, stdout, "invalid log level")
}
