package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/opportunity"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/store"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"value", "audit", "alpha", "gaps", "import", "scan", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "agenz", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd  string
		flag string
		def  string
	}{
		{"value", "save", "false"},
		{"audit", "purchase-date", ""},
		{"audit", "nationality", ""},
		{"audit", "apply", "false"},
		{"alpha", "min", "-1"},
		{"scan", "save", "false"},
		{"serve", "port", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd+"/"+tt.flag, func(t *testing.T) {
			c, _, err := rootCmd.Find([]string{tt.cmd})
			require.NoError(t, err)
			f := c.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}
}

func execute(t *testing.T, name string, args ...string) (string, error) {
	t.Helper()
	c, _, err := rootCmd.Find([]string{name})
	require.NoError(t, err)
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetContext(context.Background())
	t.Cleanup(func() { c.SetOut(nil) })
	err = c.RunE(c, args)
	return out.String(), err
}

func openStore(t *testing.T, dbPath string) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	return st
}

func TestValueCommand_Save(t *testing.T) {
	env, dbPath := newTestEnv(t)
	env.Close()
	useSQLiteConfig(t, dbPath)

	valueSave = true
	t.Cleanup(func() { valueSave = false })
	out, err := execute(t, "value", "villa-1")
	require.NoError(t, err)

	var res model.ValuationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 850_000, res.ForensicValue, 0.001)

	p, err := openStore(t, dbPath).GetProperty(context.Background(), "villa-1")
	require.NoError(t, err)
	require.NotNil(t, p.ForensicPrice)
	assert.InDelta(t, 850_000, *p.ForensicPrice, 0.001)
	assert.Equal(t, model.GradeB, p.RiskGrade)
}

func TestValueCommand_NotFound(t *testing.T) {
	env, dbPath := newTestEnv(t)
	env.Close()
	useSQLiteConfig(t, dbPath)

	_, err := execute(t, "value", "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuditCommand_Apply(t *testing.T) {
	env, dbPath := newTestEnv(t)
	env.Close()
	useSQLiteConfig(t, dbPath)

	auditPurchaseDate, auditApply = "2015-01-01", true
	t.Cleanup(func() { auditPurchaseDate, auditApply = "", false })

	out, err := execute(t, "audit", "land-hotel")
	require.NoError(t, err)
	var res model.ComplianceResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.LandDeadline.Flagged)
	assert.True(t, res.TaxGate.HighRisk, "no tax clearance on file")

	p, err := openStore(t, dbPath).GetProperty(context.Background(), "land-hotel")
	require.NoError(t, err)
	assert.True(t, p.DeadlineFlag)
	assert.False(t, p.TaxGatePassed)
}

func TestAuditCommand_BadDate(t *testing.T) {
	auditPurchaseDate = "yesterday"
	t.Cleanup(func() { auditPurchaseDate = "" })
	_, err := execute(t, "audit", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestAlphaCommand(t *testing.T) {
	env, dbPath := newTestEnv(t)
	env.Close()
	useSQLiteConfig(t, dbPath)

	out, err := execute(t, "alpha")
	require.NoError(t, err)
	var opps []opportunity.Opportunity
	require.NoError(t, json.Unmarshal([]byte(out), &opps))
	require.Len(t, opps, 1)
	assert.Equal(t, "land-hotel", opps[0].PropertyID)
}

func TestScanCommand(t *testing.T) {
	env, dbPath := newTestEnv(t)
	env.Close()
	useSQLiteConfig(t, dbPath)

	scanSave = true
	t.Cleanup(func() { scanSave = false })
	out, err := execute(t, "scan")
	require.NoError(t, err)

	var res opportunity.ScanResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, int64(1), res.Failed, "the broken record fails validation")
	assert.Len(t, res.Valuations, 3)

	p, err := openStore(t, dbPath).GetProperty(context.Background(), "land-hotel")
	require.NoError(t, err)
	require.NotNil(t, p.ZoningPotential)
	assert.InDelta(t, 14_000_000, *p.ZoningPotential, 0.001)
}

func TestGapsCommand(t *testing.T) {
	useSQLiteConfig(t, filepath.Join(t.TempDir(), "unused.db"))

	path := filepath.Join(t.TempDir(), "listings.json")
	data, _ := json.Marshal([]model.ScrapedListing{
		{Portal: "mubawab", URL: "https://www.mubawab.ma/a/1", Neighborhood: "Gueliz", AskingPrice: 2_000_000, SizeSqm: 100},
	})
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err := execute(t, "gaps", path)
	require.NoError(t, err)
	var res []model.ListingAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res, 1)
	assert.Equal(t, model.ListingOverpriced, res[0].Verdict)

	_, err = execute(t, "gaps", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestImportCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "agenz.db")
	useSQLiteConfig(t, dbPath)

	f := xlsx.NewFile()
	props, err := f.AddSheet("properties")
	require.NoError(t, err)
	docs, err := f.AddSheet("documents")
	require.NoError(t, err)
	for _, rowData := range [][]string{
		{"id", "asset_type", "terrain_area", "market_price", "zoning_code"},
		{"parcel-7", "land", "5000", "10000000", "HOTEL"},
		{"bad", "castle", "", "", ""},
	} {
		row := props.AddRow()
		for _, v := range rowData {
			row.AddCell().SetString(v)
		}
	}
	for _, rowData := range [][]string{
		{"property_id", "type", "status", "qr_verified"},
		{"parcel-7", "quitus_fiscal", "verified", "true"},
	} {
		row := docs.AddRow()
		for _, v := range rowData {
			row.AddCell().SetString(v)
		}
	}
	path := filepath.Join(t.TempDir(), "audit.xlsx")
	require.NoError(t, f.Save(path))

	_, err = execute(t, "import", path)
	require.NoError(t, err)

	st := openStore(t, dbPath)
	all, err := st.ListProperties(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "parcel-7", all[0].ID)

	stored, err := st.ListDocuments(context.Background(), "parcel-7")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].QRVerified)
}
