package results

import (
	"fmt"
	"strconv"
	"strings"
)

// Building is a building summary.
type Building struct {
	URI       string   `json:"uri"`
	UPRN      string   `json:"uprn"`
	Types     []string `json:"types"`
	Lat       string   `json:"lat"`
	Lon       string   `json:"lon"`
	EPCRating string   `json:"epc_rating"`
	Name      string   `json:"name"`
}

// BuildingDetail adds the address and SAP score to a Building.
type BuildingDetail struct {
	Building
	SAPPoints float64 `json:"sap_points"`
	Postcode  string  `json:"postcode"`
	Address   string  `json:"address"`
}

var buildingVars = []string{"building", "uprn_id", "building_types", "epc_rating", "name"}

// MapBuildings converts the buildings query result, one Building per row.
func MapBuildings(bs *BindingSet) ([]Building, error) {
	buildings := make([]Building, 0, bs.Len())
	if bs == nil {
		return buildings, nil
	}
	if err := bs.requireVars(buildingVars...); err != nil {
		return nil, err
	}
	for _, row := range bs.Rows {
		buildings = append(buildings, mapBuilding(row))
	}
	return buildings, nil
}

// MapBuilding converts the first row of the building detail query.
// It fails with ErrNoResults on an empty result.
func MapBuilding(bs *BindingSet) (*BuildingDetail, error) {
	if bs.Len() == 0 {
		return nil, ErrNoResults
	}
	if err := bs.requireVars(buildingVars...); err != nil {
		return nil, err
	}
	if err := bs.requireVars("sap_points", "postcode_literal", "line_of_address_literal"); err != nil {
		return nil, err
	}
	row := bs.Rows[0]
	detail := &BuildingDetail{Building: mapBuilding(row)}
	if raw, ok := value(row, "sap_points"); ok {
		points, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: sap_points %q is not a number", ErrMalformedResponse, raw)
		}
		detail.SAPPoints = points
	}
	detail.Postcode, _ = value(row, "postcode_literal")
	detail.Address, _ = value(row, "line_of_address_literal")
	return detail, nil
}

func mapBuilding(row map[string]Term) Building {
	b := Building{Types: make([]string, 0)}
	b.URI, _ = value(row, "building")
	b.UPRN, _ = value(row, "uprn_id")
	b.Lat, _ = value(row, "lat_literal")
	b.Lon, _ = value(row, "lon_literal")
	b.EPCRating, _ = value(row, "epc_rating")
	b.Name, _ = value(row, "name")
	if types, ok := value(row, "building_types"); ok {
		for _, t := range strings.Split(types, ";") {
			if t = strings.TrimSpace(t); t != "" {
				b.Types = append(b.Types, t)
			}
		}
	}
	return b
}
