package fetcher

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/cityscope/cityscope-cli/internal/model"
)

// LoadLocations reads a list of locations from a .csv or .xlsx file.
// Expected columns: name, latitude, longitude. A header row is detected by a
// non-numeric latitude cell and skipped.
func LoadLocations(path string) ([]model.Location, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSXRows(path)
	default:
		return nil, eris.Errorf("locations: unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	var locs []model.Location
	for i, row := range rows {
		if len(row) < 3 {
			return nil, eris.Errorf("locations: row %d has %d columns, want 3 (name, lat, lon)", i+1, len(row))
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if latErr != nil || lonErr != nil {
			if i == 0 {
				continue // header row
			}
			return nil, eris.Errorf("locations: row %d has non-numeric coordinates", i+1)
		}

		loc := model.Location{
			Name:      strings.TrimSpace(row[0]),
			Latitude:  lat,
			Longitude: lon,
		}
		if err := loc.Validate(); err != nil {
			return nil, eris.Wrapf(err, "locations: row %d", i+1)
		}
		locs = append(locs, loc)
	}

	if len(locs) == 0 {
		return nil, eris.Errorf("locations: no usable rows in %s", path)
	}
	return locs, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "locations: open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "locations: read csv")
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "locations: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("locations: xlsx file has no sheets")
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
