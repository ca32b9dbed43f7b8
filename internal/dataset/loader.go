// Package dataset loads the humanitarian CSV files from disk and maps them
// into typed domain records. Every load re-reads the file; there is no
// background refresh and no shared mutable state between requests.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crisismap/crisis-data-api/internal/domain"
	"github.com/crisismap/crisis-data-api/internal/observability"
)

// Fixed file names under the data directory. The collection script writes
// the first three; event_data_pse.csv is the IDMC export downloaded as-is.
const (
	casualtiesFile     = "casualties.csv"
	infrastructureFile = "infrastructure.csv"
	displacementFile   = "displacement.csv"
	eventsFile         = "event_data_pse.csv"
)

// Provider is the read surface consumed by the HTTP adapter. The cache
// decorator wraps it transparently.
type Provider interface {
	Casualties(ctx context.Context) ([]domain.CasualtyRecord, error)
	Infrastructure(ctx context.Context) ([]domain.InfrastructureRecord, error)
	Displacement(ctx context.Context) ([]domain.DisplacementRecord, error)
	DisplacementEvents(ctx context.Context) ([]domain.DisplacementEvent, error)
	CheckReadiness(ctx context.Context) error
}

// Store reads and parses the CSV datasets from a directory.
type Store struct {
	dataDir string
	region  domain.Region
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewStore creates a Store over the given data directory.
func NewStore(dataDir string, region domain.Region, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		dataDir: dataDir,
		region:  region,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil if the data directory exists and is readable.
func (s *Store) CheckReadiness(_ context.Context) error {
	info, err := os.Stat(s.dataDir)
	if err != nil {
		return fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", s.dataDir)
	}
	return nil
}

// Casualties loads and parses casualties.csv.
func (s *Store) Casualties(ctx context.Context) ([]domain.CasualtyRecord, error) {
	rows, err := s.loadRows(ctx, "casualties", casualtiesFile, domain.ParseOptions{
		NumericColumns: []string{"killed", "injured", "children_killed", "women_killed", "latitude", "longitude"},
		LatColumn:      "latitude",
		LngColumn:      "longitude",
		LocationColumn: "location",
	}, false)
	if err != nil {
		return nil, err
	}

	records := make([]domain.CasualtyRecord, len(rows))
	for i, row := range rows {
		records[i] = domain.CasualtyRecord{
			GeographicData: geographicData(row),
			Date:           row.String("date"),
			Killed:         row.Int("killed"),
			Injured:        row.Int("injured"),
			ChildrenKilled: row.Int("children_killed"),
			WomenKilled:    row.Int("women_killed"),
			Source:         row.String("source"),
		}
	}
	return records, nil
}

// Infrastructure loads and parses infrastructure.csv.
func (s *Store) Infrastructure(ctx context.Context) ([]domain.InfrastructureRecord, error) {
	rows, err := s.loadRows(ctx, "infrastructure", infrastructureFile, domain.ParseOptions{
		NumericColumns: []string{"hospitals_damaged", "schools_damaged", "homes_destroyed", "latitude", "longitude"},
		LatColumn:      "latitude",
		LngColumn:      "longitude",
		LocationColumn: "location",
	}, false)
	if err != nil {
		return nil, err
	}

	records := make([]domain.InfrastructureRecord, len(rows))
	for i, row := range rows {
		records[i] = domain.InfrastructureRecord{
			GeographicData:   geographicData(row),
			Date:             row.String("date"),
			HospitalsDamaged: row.Int("hospitals_damaged"),
			SchoolsDamaged:   row.Int("schools_damaged"),
			HomesDestroyed:   row.Int("homes_destroyed"),
			Type:             row.String("type"),
		}
	}
	return records, nil
}

// Displacement loads and parses displacement.csv.
func (s *Store) Displacement(ctx context.Context) ([]domain.DisplacementRecord, error) {
	rows, err := s.loadRows(ctx, "displacement", displacementFile, domain.ParseOptions{
		NumericColumns: []string{"people_displaced", "displacement_centers", "capacity", "latitude", "longitude"},
		LatColumn:      "latitude",
		LngColumn:      "longitude",
		LocationColumn: "location",
	}, false)
	if err != nil {
		return nil, err
	}

	records := make([]domain.DisplacementRecord, len(rows))
	for i, row := range rows {
		records[i] = domain.DisplacementRecord{
			GeographicData:      geographicData(row),
			Date:                row.String("date"),
			PeopleDisplaced:     row.Int("people_displaced"),
			DisplacementCenters: row.Int("displacement_centers"),
			Capacity:            row.Int("capacity"),
		}
	}
	return records, nil
}

// DisplacementEvents loads and parses event_data_pse.csv. The export carries
// a metadata line directly after the header, which is stripped before parsing.
func (s *Store) DisplacementEvents(ctx context.Context) ([]domain.DisplacementEvent, error) {
	rows, err := s.loadRows(ctx, "displacement events", eventsFile, domain.ParseOptions{
		NumericColumns: []string{"latitude", "longitude", "figure", "year"},
		LatColumn:      "latitude",
		LngColumn:      "longitude",
		LocationColumn: "locations_name",
	}, true)
	if err != nil {
		return nil, err
	}

	events := make([]domain.DisplacementEvent, len(rows))
	for i, row := range rows {
		events[i] = domain.DisplacementEvent{
			GeographicData: domain.GeographicData{
				Latitude:  row.Number("latitude"),
				Longitude: row.Number("longitude"),
				Location:  row.String("locations_name"),
				Area:      row.String("country"),
			},
			ID:               row.String("id"),
			Country:          row.String("country"),
			ISO3:             row.String("iso3"),
			Figure:           row.Int("figure"),
			DisplacementDate: row.String("displacement_date"),
			StartDate:        row.String("displacement_start_date"),
			EndDate:          row.String("displacement_end_date"),
			Year:             row.Int("year"),
			EventName:        row.String("event_name"),
			Description:      row.String("description"),
			SourceURL:        row.String("source_url"),
			EventType:        row.String("combined_type"),
			Sources:          row.String("sources"),
		}
	}
	return events, nil
}

// loadRows runs the read-parse cycle for one dataset. Any failure is logged
// with its cause and surfaced as an opaque "failed to load <dataset> data"
// error; callers and HTTP responses never carry file-level detail.
func (s *Store) loadRows(ctx context.Context, dataset, filename string, opts domain.ParseOptions, stripMetadata bool) ([]domain.Row, error) {
	if err := ctx.Err(); err != nil {
		// Cancellation surfaces the same opaque message as any other
		// load failure; the envelope never leaks context errors.
		return nil, s.loadFailed(dataset, filename, err)
	}

	start := time.Now()

	raw, err := os.ReadFile(filepath.Join(s.dataDir, filename))
	if err != nil {
		return nil, s.loadFailed(dataset, filename, err)
	}

	text := string(raw)
	if stripMetadata {
		text = stripMetadataLine(text)
	}

	rows, err := domain.ParseRecords(text, opts, s.region.Box, s.logger)
	if err != nil {
		return nil, s.loadFailed(dataset, filename, err)
	}

	s.metrics.DatasetLoads.WithLabelValues(dataset, "success").Inc()
	s.metrics.LoadDuration.WithLabelValues(dataset).Observe(time.Since(start).Seconds())
	s.metrics.RecordsParsed.WithLabelValues(dataset).Add(float64(len(rows)))
	s.countCoordinateWarnings(dataset, rows, opts)

	return rows, nil
}

func (s *Store) loadFailed(dataset, filename string, cause error) error {
	s.logger.Error("dataset load failed", "dataset", dataset, "file", filename, "error", cause)
	s.metrics.DatasetLoads.WithLabelValues(dataset, "error").Inc()
	return fmt.Errorf("failed to load %s data", dataset)
}

func (s *Store) countCoordinateWarnings(dataset string, rows []domain.Row, opts domain.ParseOptions) {
	if opts.LatColumn == "" || opts.LngColumn == "" {
		return
	}
	for _, row := range rows {
		if !s.region.Box.Contains(row.Number(opts.LatColumn), row.Number(opts.LngColumn)) {
			s.metrics.CoordinateWarnings.WithLabelValues(dataset).Inc()
		}
	}
}

// stripMetadataLine removes line index 1, keeping line 0 as the header and
// everything from line 2 onward as data.
func stripMetadataLine(text string) string {
	parts := strings.SplitN(text, "\n", 3)
	if len(parts) < 3 {
		return parts[0]
	}
	return parts[0] + "\n" + parts[2]
}

func geographicData(row domain.Row) domain.GeographicData {
	return domain.GeographicData{
		Latitude:  row.Number("latitude"),
		Longitude: row.Number("longitude"),
		Location:  row.String("location"),
		Area:      row.String("area"),
	}
}
