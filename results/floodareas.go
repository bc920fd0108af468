package results

// variables of the flood area query
const (
	varFloodWatchArea     = "floodWatchArea"
	varFloodWatchAreaName = "floodWatchAreaName"
	varGeoJSONURI         = "geoJsonUri"
	varFloodArea          = "floodArea"
	varFloodAreaName      = "floodAreaName"
	varFAGeoJSONURI       = "faGeoJsonUri"
)

// FloodArea is a flood area inside a flood watch area.
type FloodArea struct {
	URI        string `json:"uri"`
	Name       string `json:"name"`
	PolygonURI string `json:"polygon_uri"`
}

// FloodWatchArea summarises a flood watch area and the flood areas it contains.
type FloodWatchArea struct {
	URI        string      `json:"uri"`
	Name       string      `json:"name"`
	PolygonURI string      `json:"polygon_uri"`
	FloodAreas []FloodArea `json:"flood_areas"`
}

// MapFloodAreas builds one FloodWatchArea per distinct watch area, in order of
// first occurrence, with its flood areas appended in row order. Variables are
// looked up by name. Rows without a flood area (the optional part of the
// query) contribute only their watch area.
func MapFloodAreas(bs *BindingSet) ([]FloodWatchArea, error) {
	areas := make([]FloodWatchArea, 0)
	if bs == nil {
		return areas, nil
	}
	if err := bs.requireVars(varFloodWatchArea, varFloodWatchAreaName, varGeoJSONURI,
		varFloodArea, varFloodAreaName, varFAGeoJSONURI); err != nil {
		return nil, err
	}
	index := make(map[string]int)
	for _, row := range bs.Rows {
		uri, ok := value(row, varFloodWatchArea)
		if !ok {
			continue
		}
		i, seen := index[uri]
		if !seen {
			name, _ := value(row, varFloodWatchAreaName)
			polygon, _ := value(row, varGeoJSONURI)
			areas = append(areas, FloodWatchArea{
				URI:        uri,
				Name:       name,
				PolygonURI: polygon,
				FloodAreas: make([]FloodArea, 0),
			})
			i = len(areas) - 1
			index[uri] = i
		}
		if child, ok := value(row, varFloodArea); ok {
			name, _ := value(row, varFloodAreaName)
			polygon, _ := value(row, varFAGeoJSONURI)
			areas[i].FloodAreas = append(areas[i].FloodAreas, FloodArea{
				URI:        child,
				Name:       name,
				PolygonURI: polygon,
			})
		}
	}
	return areas, nil
}
