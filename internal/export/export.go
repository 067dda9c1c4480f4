// Package export writes harvested jobs to files for downstream consumers.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jobharvest/avharvest/internal/harvest"
)

// Format names a supported output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q (want json or csv)", s)
	}
}

var csvHeader = []string{
	"job_id", "tenant", "title", "description", "location",
	"date_posted", "apply_url", "metadata", "scraped_at",
}

// Write dumps jobs from the store to path in the given format. An empty
// tenant exports every tenant.
func Write(ctx context.Context, store harvest.Store, tenant, path string, format Format) (int, error) {
	jobs, err := store.ListJobs(ctx, tenant, 0)
	if err != nil {
		return 0, fmt.Errorf("list jobs for export: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatJSON:
		err = WriteJSON(f, jobs)
	case FormatCSV:
		err = WriteCSV(f, jobs)
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("flush export file: %w", err)
	}
	return len(jobs), nil
}

// WriteJSON emits the jobs as an indented JSON array. Metadata objects keep
// their field order.
func WriteJSON(w io.Writer, jobs []harvest.JobRecord) error {
	if jobs == nil {
		jobs = []harvest.JobRecord{}
	}
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode jobs: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write jobs: %w", err)
	}
	return nil
}

// WriteCSV emits a header row plus one row per job. The metadata column
// holds the field mapping serialized as JSON.
func WriteCSV(w io.Writer, jobs []harvest.JobRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, job := range jobs {
		meta, err := json.Marshal(job.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for job %s: %w", job.JobID, err)
		}
		row := []string{
			job.JobID,
			job.Tenant,
			job.Title,
			job.Description,
			job.Location,
			job.DatePosted,
			job.ApplyURL,
			string(meta),
			job.ScrapedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for job %s: %w", job.JobID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
