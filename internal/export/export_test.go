package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobharvest/avharvest/internal/harvest"
	"github.com/jobharvest/avharvest/internal/store/memory"
)

func sampleJob(id, tenant string) harvest.JobRecord {
	meta := harvest.NewMetadata()
	meta.Set("job_title", "Engineer")
	meta.Set("work_location", "Berlin")
	return harvest.JobRecord{
		JobID:       id,
		Tenant:      tenant,
		Title:       "Engineer",
		Description: "<p>Build things.</p>",
		Location:    "Berlin",
		DatePosted:  "2026-01-15",
		ApplyURL:    "/careers/JobDetail/Engineer/" + id,
		Metadata:    meta,
		ScrapedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []harvest.JobRecord{sampleJob("101", "acme")}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "101", decoded[0]["job_id"])
	assert.Equal(t, "acme", decoded[0]["tenant"])

	meta, ok := decoded[0]["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Berlin", meta["work_location"])
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []harvest.JobRecord{sampleJob("101", "acme")}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "101", rows[1][0])
	assert.Equal(t, "acme", rows[1][1])
	assert.Equal(t, "2026-03-01T12:00:00Z", rows[1][8])

	var meta map[string]string
	require.NoError(t, json.Unmarshal([]byte(rows[1][7]), &meta))
	assert.Equal(t, "Engineer", meta["job_title"])
}

func TestWriteToFile(t *testing.T) {
	st := memory.New()
	require.NoError(t, st.InsertJobBatch(context.Background(), []harvest.JobRecord{
		sampleJob("101", "acme"),
		sampleJob("201", "beta"),
	}))

	path := filepath.Join(t.TempDir(), "out", "jobs.json")
	n, err := Write(context.Background(), st, "", path, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded []harvest.JobRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 2)
}

func TestWriteFiltersByTenant(t *testing.T) {
	st := memory.New()
	require.NoError(t, st.InsertJobBatch(context.Background(), []harvest.JobRecord{
		sampleJob("101", "acme"),
		sampleJob("201", "beta"),
	}))

	path := filepath.Join(t.TempDir(), "acme.csv")
	n, err := Write(context.Background(), st, "acme", path, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "acme", rows[1][1])
}
