package dataset

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisismap/crisis-data-api/internal/domain"
	"github.com/crisismap/crisis-data-api/internal/observability"
)

var testRegion = domain.Region{
	Box:            domain.BoundingBox{MinLat: 29.0, MaxLat: 33.5, MinLng: 34.0, MaxLng: 36.0},
	DefaultBounds:  domain.Bounds{North: 32.6, South: 31.2, East: 35.6, West: 34.2},
	Country:        "Palestine",
	SubregionToken: "gaza",
}

func newTestStore(t *testing.T, files map[string]string) (*Store, *observability.Metrics) {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStore(dir, testRegion, logger, metrics), metrics
}

const casualtiesCSV = "date,killed,injured,children_killed,women_killed,latitude,longitude,location,area,source\n" +
	"2024-01-15,12,45,3,2,31.52,34.45,Gaza City,Gaza,UN OCHA\n" +
	"2024-01-16,5,20,1,1,31.35,34.30,Khan Younis,Gaza,MoH\n"

func TestStore_Casualties(t *testing.T) {
	store, metrics := newTestStore(t, map[string]string{casualtiesFile: casualtiesCSV})

	records, err := store.Casualties(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	want := domain.CasualtyRecord{
		GeographicData: domain.GeographicData{
			Latitude:  31.52,
			Longitude: 34.45,
			Location:  "Gaza City",
			Area:      "Gaza",
		},
		Date:           "2024-01-15",
		Killed:         12,
		Injured:        45,
		ChildrenKilled: 3,
		WomenKilled:    2,
		Source:         "UN OCHA",
	}
	if diff := cmp.Diff(want, records[0]); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("casualties", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.RecordsParsed.WithLabelValues("casualties")))
}

func TestStore_Casualties_MissingFile(t *testing.T) {
	store, metrics := newTestStore(t, nil)

	records, err := store.Casualties(context.Background())
	require.Error(t, err)
	assert.Nil(t, records)
	assert.EqualError(t, err, "failed to load casualties data")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("casualties", "error")))
}

func TestStore_Casualties_MalformedNumeric(t *testing.T) {
	bad := "date,killed,injured,children_killed,women_killed,latitude,longitude,location,area,source\n" +
		"2024-01-15,many,45,3,2,31.52,34.45,Gaza City,Gaza,UN OCHA\n"
	store, _ := newTestStore(t, map[string]string{casualtiesFile: bad})

	_, err := store.Casualties(context.Background())
	require.Error(t, err)
	assert.EqualError(t, err, "failed to load casualties data", "parse detail stays out of the caller-facing error")
}

func TestStore_Infrastructure(t *testing.T) {
	csv := "date,hospitals_damaged,schools_damaged,homes_destroyed,latitude,longitude,location,area,type\n" +
		"2024-02-01,1,4,120,31.50,34.47,Al-Rimal,Gaza,airstrike\n"
	store, _ := newTestStore(t, map[string]string{infrastructureFile: csv})

	records, err := store.Infrastructure(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].HospitalsDamaged)
	assert.Equal(t, 4, records[0].SchoolsDamaged)
	assert.Equal(t, 120, records[0].HomesDestroyed)
	assert.Equal(t, "airstrike", records[0].Type)
}

func TestStore_Displacement(t *testing.T) {
	csv := "date,people_displaced,displacement_centers,capacity,latitude,longitude,location,area\n" +
		"2024-02-10,15000,3,12000,31.34,34.29,Khan Younis,Gaza\n"
	store, _ := newTestStore(t, map[string]string{displacementFile: csv})

	records, err := store.Displacement(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 15000, records[0].PeopleDisplaced)
	assert.Equal(t, 3, records[0].DisplacementCenters)
	assert.Equal(t, 12000, records[0].Capacity)
}

const eventsCSV = "id,country,iso3,latitude,longitude,figure,displacement_date,displacement_start_date,displacement_end_date,year,event_name,locations_name,description,source_url,combined_type,sources\n" +
	"metadata line that must be stripped,,,,,,,,,,,,,,,\n" +
	"1,Palestine,PSE,31.52,34.45,100,2024-01-10,2024-01-09,2024-01-11,2024,Gaza offensive,Gaza City Shelter,shelling,https://example.org/1,Conflict,UN OCHA\n" +
	"2,Palestine,PSE,31.90,35.20,250,2024-01-12,2024-01-12,2024-01-13,2024,Raid,Ramallah Center,raid,https://example.org/2,Conflict,IDMC\n" +
	"3,Palestine,PSE,31.29,34.26,75,2024-02-03,2024-02-02,2024-02-04,2024,Evacuation,Rafah camp,evacuation order,https://example.org/3,Conflict,UN OCHA\n"

func TestStore_DisplacementEvents(t *testing.T) {
	store, _ := newTestStore(t, map[string]string{eventsFile: eventsCSV})

	events, err := store.DisplacementEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 3, "metadata line must not become a record")

	first := events[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "Palestine", first.Country)
	assert.Equal(t, "PSE", first.ISO3)
	assert.Equal(t, 31.52, first.Latitude)
	assert.Equal(t, 34.45, first.Longitude)
	assert.Equal(t, 100, first.Figure)
	assert.Equal(t, "2024-01-10", first.DisplacementDate)
	assert.Equal(t, "2024-01-09", first.StartDate)
	assert.Equal(t, "2024-01-11", first.EndDate)
	assert.Equal(t, 2024, first.Year)
	assert.Equal(t, "Gaza offensive", first.EventName)
	assert.Equal(t, "Gaza City Shelter", first.Location)
	assert.Equal(t, "Conflict", first.EventType)
	assert.Equal(t, "UN OCHA", first.Sources)
}

func TestStore_DisplacementEvents_Deterministic(t *testing.T) {
	store, _ := newTestStore(t, map[string]string{eventsFile: eventsCSV})

	first, err := store.DisplacementEvents(context.Background())
	require.NoError(t, err)
	second, err := store.DisplacementEvents(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("loads differ (-first +second):\n%s", diff)
	}

	s1 := domain.Summarize(domain.ValidEvents(first, testRegion), testRegion)
	s2 := domain.Summarize(domain.ValidEvents(second, testRegion), testRegion)
	assert.Equal(t, s1.TotalDisplaced, s2.TotalDisplaced)
	assert.Equal(t, s1.DateRange, s2.DateRange)
}

func TestStore_CoordinateWarningsMetric(t *testing.T) {
	csv := "date,killed,injured,children_killed,women_killed,latitude,longitude,location,area,source\n" +
		"2024-01-15,1,0,0,0,48.85,2.35,Paris,Nowhere,test\n"
	store, metrics := newTestStore(t, map[string]string{casualtiesFile: csv})

	records, err := store.Casualties(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CoordinateWarnings.WithLabelValues("casualties")))
}

func TestStore_CancelledContext(t *testing.T) {
	store, metrics := newTestStore(t, map[string]string{casualtiesFile: casualtiesCSV})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records, err := store.Casualties(ctx)
	require.Error(t, err)
	assert.Nil(t, records)
	assert.EqualError(t, err, "failed to load casualties data", "context errors never reach the caller verbatim")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("casualties", "error")))
}

func TestStore_CheckReadiness(t *testing.T) {
	t.Run("existing directory", func(t *testing.T) {
		store, _ := newTestStore(t, nil)
		assert.NoError(t, store.CheckReadiness(context.Background()))
	})

	t.Run("missing directory", func(t *testing.T) {
		metrics := observability.NewMetricsForTesting()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		store := NewStore("/nonexistent/data", testRegion, logger, metrics)
		assert.Error(t, store.CheckReadiness(context.Background()))
	})
}

func TestStripMetadataLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"header, metadata, data", "h1,h2\nmeta,meta\na,b\nc,d\n", "h1,h2\na,b\nc,d\n"},
		{"header and metadata only", "h1,h2\nmeta,meta\n", "h1,h2\n"},
		{"header only", "h1,h2\n", "h1,h2"},
		{"no newline", "h1,h2", "h1,h2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMetadataLine(tt.in))
		})
	}
}
