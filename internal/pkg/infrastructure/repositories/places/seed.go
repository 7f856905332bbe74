package places

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gorm.io/gorm/clause"
)

// Seed loads places from csv data on the form
// name;category;tenant;lat;lon and upserts them by name.
func (p *placeRepository) Seed(ctx context.Context, seedFile io.Reader) error {
	r := csv.NewReader(seedFile)
	r.Comma = ';'

	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read csv data: %s", err.Error())
	}

	places := make([]Place, 0, len(rows))

	for idx, row := range rows {
		if idx == 0 {
			// Skip the CSV header
			continue
		}

		if len(row) < 5 {
			return fmt.Errorf("too few columns on line %d in seed data", idx+1)
		}

		name := strings.TrimSpace(row[0])
		if name == "" {
			return fmt.Errorf("missing place name on line %d in seed data", idx+1)
		}

		lat, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return fmt.Errorf("failed to parse latitude for place %s: %s", name, err.Error())
		}

		lon, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return fmt.Errorf("failed to parse longitude for place %s: %s", name, err.Error())
		}

		places = append(places, Place{
			Name:     name,
			Category: row[1],
			Tenant:   row[2],
			Lat:      lat,
			Lon:      lon,
		})
	}

	if len(places) == 0 {
		return nil
	}

	result := p.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(&places)

	return result.Error
}
