package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-etl/models"
	"listing-etl/storage"
)

// writeDump stores records the way the scraper exports them: a JSON string
// whose content is the JSON records array.
func writeDump(t *testing.T, dir, records string) string {
	t.Helper()
	outer, err := json.Marshal(records)
	require.NoError(t, err)
	path := filepath.Join(dir, "sample.json")
	require.NoError(t, os.WriteFile(path, outer, 0644))
	return path
}

func newTestPipeline(sinks ...storage.TableWriter) *Pipeline {
	return NewPipeline(newTestLogger(), PipelineOptions{Criteria: DefaultCriteria()}, sinks...)
}

const scenarioRecords = `[
	{"raw_price": "50000.00", "living_area": "80.5", "scraping_date": "2023-05-10", "property_type": "House", "municipality": "X"},
	{"raw_price": "99999999.00", "living_area": "10", "scraping_date": "bad-date", "property_type": "House", "municipality": "Y"}
]`

func TestPipelineScenario(t *testing.T) {
	dir := t.TempDir()
	in := writeDump(t, dir, scenarioRecords)
	out := filepath.Join(dir, "out", "clean.csv")

	table, err := newTestPipeline().Run(in, out)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, 500.0, table.Rows[0].Get(models.ColPrice).Num)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"price,living_area,scraping_date,property_type\n"+
			"500.0,80.5,2023-05-10,house\n",
		string(data))
}

func TestPipelineOutputInvariants(t *testing.T) {
	records := `[
		{"raw_price": "price: 145000.50 EUR", "living_area": "45.0 m2", "scraping_date": "2023-01-02", "property_type": "Apartment", "municipality": "A", "rooms": 2},
		{"raw_price": "N/A", "living_area": "45.0", "scraping_date": "2023-01-02", "property_type": "apartment", "municipality": "A", "rooms": 2},
		{"raw_price": "1500000.00", "living_area": "120.0", "scraping_date": "2023-01-03", "property_type": "house", "municipality": "B", "rooms": 5},
		{"raw_price": "1500001.00", "living_area": "120.0", "scraping_date": "2023-01-03", "property_type": "house", "municipality": "B", "rooms": 5},
		{"raw_price": "49999.00", "living_area": "20.0", "scraping_date": "2023-01-04", "property_type": "apartment", "municipality": "C", "rooms": 1},
		{"raw_price": "90000.00", "living_area": "60.0", "scraping_date": "2023-01-05", "property_type": "garage", "municipality": "D", "rooms": 0},
		{"raw_price": "90000.00", "living_area": "60.0", "scraping_date": "2023-01-05", "property_type": "house", "municipality": "D", "rooms": null},
		{"raw_price": "90000.00", "living_area": "60.0", "scraping_date": "2023-01-05", "property_type": "house", "municipality": "D"}
	]`
	dir := t.TempDir()
	in := writeDump(t, dir, records)

	table, err := newTestPipeline().Run(in, filepath.Join(dir, "clean.csv"))
	require.NoError(t, err)

	assert.Equal(t, []string{"price", "living_area", "scraping_date", "property_type", "rooms"}, table.Columns)
	require.Equal(t, 2, table.Len())
	for _, row := range table.Rows {
		assert.True(t, table.Complete(row))
		price := row.Get(models.ColPrice)
		assert.Equal(t, models.Float, price.Kind)
		assert.GreaterOrEqual(t, price.Num, 500.0)
		assert.LessOrEqual(t, price.Num, 15000.0)
		assert.Contains(t, []string{"apartment", "house"}, row.Get(models.ColPropertyType).Text())
		assert.NotContains(t, row, models.ColRawPrice)
		assert.NotContains(t, row, models.ColMunicipality)
	}
	assert.InDelta(t, 1450.005, table.Rows[0].Get(models.ColPrice).Num, 1e-9)
	assert.Equal(t, 15000.0, table.Rows[1].Get(models.ColPrice).Num)
	assert.Equal(t, "2", table.Rows[0].Get("rooms").Text())
}

func TestPipelineDeterministic(t *testing.T) {
	dir := t.TempDir()
	in := writeDump(t, dir, scenarioRecords)
	first := filepath.Join(dir, "a.csv")
	second := filepath.Join(dir, "b.csv")

	_, err := newTestPipeline().Run(in, first)
	require.NoError(t, err)
	_, err = newTestPipeline().Run(in, second)
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPipelineLoadErrors(t *testing.T) {
	dir := t.TempDir()
	notString := filepath.Join(dir, "plain.json")
	require.NoError(t, os.WriteFile(notString, []byte(`[{"raw_price": "1.0"}]`), 0644))
	badInner := filepath.Join(dir, "bad_inner.json")
	require.NoError(t, os.WriteFile(badInner, []byte(`"[{\"raw_price\": "`), 0644))

	for _, path := range []string{filepath.Join(dir, "missing.json"), notString, badInner} {
		_, err := newTestPipeline().Run(path, filepath.Join(dir, "out.csv"))
		var loadErr *models.LoadError
		assert.ErrorAs(t, err, &loadErr, path)
	}
}

func TestPipelineSchemaError(t *testing.T) {
	dir := t.TempDir()
	in := writeDump(t, dir, `[{"raw_price": "50000.00", "living_area": "80.5", "scraping_date": "2023-05-10", "property_type": "house"}]`)
	out := filepath.Join(dir, "out.csv")

	_, err := newTestPipeline().Run(in, out)

	var schemaErr *models.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, models.ColMunicipality, schemaErr.Column)
	assert.NoFileExists(t, out)
}

func TestPipelineWriteError(t *testing.T) {
	dir := t.TempDir()
	in := writeDump(t, dir, scenarioRecords)
	// a regular file where the output directory should be
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := newTestPipeline().Run(in, filepath.Join(blocker, "out.csv"))

	var writeErr *models.WriteError
	assert.ErrorAs(t, err, &writeErr)
}

func TestPipelineExtraSink(t *testing.T) {
	dir := t.TempDir()
	in := writeDump(t, dir, scenarioRecords)

	db, err := storage.NewSQLiteWriter(filepath.Join(dir, "listings.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = newTestPipeline(db).Run(in, filepath.Join(dir, "out.csv"))
	require.NoError(t, err)

	stored, err := db.FetchAll()
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 500.0, stored[0].Price)
	assert.Equal(t, "house", stored[0].PropertyType)
}
