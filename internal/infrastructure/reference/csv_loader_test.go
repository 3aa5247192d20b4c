package reference

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"DevProjectScanner/internal/config"
	"DevProjectScanner/internal/domain"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reference.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

const wideTable = `Site ID,Owner,Address,City,State,Zip,Project Name,Alternate Name
S-001,Acme,1 Main St,Palmyra,VA,22963, Oak Ridge ,ORidge
S-002,Birch,2 Main St,Palmyra,VA,22963,,Hidden Creek
S-003,Cedar,3 Main St,Palmyra,VA,22963,RiverPark,
`

func TestLoadDefaultIndices(t *testing.T) {
	t.Parallel()

	loader := NewCSVLoader(config.ReferenceConfig{
		Path:                writeCSV(t, wideTable),
		SiteIDColumn:        "0",
		PrimaryNameColumn:   "6",
		AlternateNameColumn: "7",
	}, nil)

	got, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	want := []domain.EntityRecord{
		{SiteID: "S-001", PrimaryName: "Oak Ridge", AlternateName: "ORidge"},
		{SiteID: "S-003", PrimaryName: "RiverPark", AlternateName: ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected records:\n got %v\nwant %v", got, want)
	}
}

func TestLoadByHeaderName(t *testing.T) {
	t.Parallel()

	loader := NewCSVLoader(config.ReferenceConfig{
		Path:                writeCSV(t, wideTable),
		SiteIDColumn:        "site id",
		PrimaryNameColumn:   "Project Name",
		AlternateNameColumn: "Alternate Name",
	}, nil)

	got, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(got) != 2 || got[0].SiteID != "S-001" {
		t.Fatalf("unexpected records: %v", got)
	}
}

func TestLoadIndexOutOfRange(t *testing.T) {
	t.Parallel()

	loader := NewCSVLoader(config.ReferenceConfig{
		Path:                writeCSV(t, "Site ID,Name\nS-001,Oak Ridge\n"),
		SiteIDColumn:        "0",
		PrimaryNameColumn:   "6",
		AlternateNameColumn: "7",
	}, nil)

	_, err := loader.Load(context.Background())
	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Column != "primary name" || cfgErr.Selector != "6" {
		t.Fatalf("error must name the offending column and index: %v", cfgErr)
	}
}

func TestLoadUnknownHeader(t *testing.T) {
	t.Parallel()

	loader := NewCSVLoader(config.ReferenceConfig{
		Path:                writeCSV(t, wideTable),
		SiteIDColumn:        "Site ID",
		PrimaryNameColumn:   "Nonexistent",
		AlternateNameColumn: "Alternate Name",
	}, nil)

	_, err := loader.Load(context.Background())
	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	loader := NewCSVLoader(config.ReferenceConfig{
		Path:                filepath.Join(t.TempDir(), "nope.csv"),
		SiteIDColumn:        "0",
		PrimaryNameColumn:   "1",
		AlternateNameColumn: "2",
	}, nil)

	_, err := loader.Load(context.Background())
	var srcErr *domain.DataSourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	t.Parallel()

	loader := NewCSVLoader(config.ReferenceConfig{
		Path:                writeCSV(t, "a,b,c\n\"unterminated\n"),
		SiteIDColumn:        "0",
		PrimaryNameColumn:   "1",
		AlternateNameColumn: "2",
	}, nil)

	_, err := loader.Load(context.Background())
	var srcErr *domain.DataSourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
}
