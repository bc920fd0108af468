package queries

import (
	"fmt"
)

// EPCNamespace prefixes the energy performance rating classes.
const EPCNamespace = "http://gov.uk/government/organisations/department-for-levelling-up-housing-and-communities/ontology/epc#"

var floodAreasTemplate = newTemplate("floodAreas", `
SELECT ?floodWatchArea ?floodWatchAreaName ?geoJsonUri ?floodArea ?floodAreaName ?faGeoJsonUri
WHERE {
    ?floodWatchArea rdf:type ies:FloodWatchArea .
    ?floodWatchArea telicent:primaryName ?floodWatchAreaName .
    ?floodWatchArea ies:isRepresentedAs ?geoJsonUri .
    OPTIONAL {
        ?floodArea ies:inLocation ?floodWatchArea .
        ?floodArea telicent:primaryName ?floodAreaName .
        ?floodArea ies:isRepresentedAs ?faGeoJsonUri .
    }
}
`)

var floodAreaPolygonTemplate = newTemplate("floodAreaPolygon", `
SELECT ?geoJsonValue
WHERE {
    <{{.Polygon}}> ies:representationValue ?geoJsonValue .
}
`)

var statesTemplate = newTemplate("states", `
SELECT ?stateUri ?stateType ?starts ?ends ?inPeriod ?repType ?repValue
WHERE {
    ?stateUri ies:isStateOf <{{.Parent}}> .
    ?stateUri a ?stateType .
    OPTIONAL {
        ?stateUri ies:inPeriod ?pp .
        ?pp ies:iso8601PeriodRepresentation ?inPeriod .
    }
    OPTIONAL {
        ?startState ies:isStartOf ?stateUri .
        ?startState ies:inPeriod ?startPP .
        ?startPP ies:iso8601PeriodRepresentation ?starts .
    }
    OPTIONAL {
        ?endState ies:isEndOf ?stateUri .
        ?endState ies:inPeriod ?endPP .
        ?endPP ies:iso8601PeriodRepresentation ?ends .
    }
    OPTIONAL {
        ?stateUri ies:isRepresentedAs ?repObject .
        ?repObject rdf:type ?repType .
        ?repObject ies:representationValue ?repValue
    }
}
`)

var buildingsTemplate = newTemplate("buildings", `
SELECT ?name ?building ?uprn_id (GROUP_CONCAT(DISTINCT ?building_type; SEPARATOR=";") AS ?building_types) ?lat_literal ?lon_literal ?epc_rating
WHERE {
    ?building telicent:primaryName ?name .
    ?building ies:isIdentifiedBy ?uprn .
    ?uprn rdf:type geoplace:UniquePropertyReferenceNumber .
    ?uprn ies:representationValue ?uprn_id .
    ?building rdf:type ?building_type .
    ?building ies:inLocation ?geopoint .
    ?geopoint rdf:type ies:GeoPoint .
    ?geopoint ies:isIdentifiedBy ?lat .
    ?lat rdf:type ies:Latitude .
    ?lat ies:representationValue ?lat_literal .
    ?geopoint ies:isIdentifiedBy ?lon .
    ?lon rdf:type ies:Longitude .
    ?lon ies:representationValue ?lon_literal .
    ?state ies:isStateOf ?building .
    ?state a ?epc_rating .
}
GROUP BY ?name ?uprn_id ?building ?lat_literal ?lon_literal ?epc_rating
`)

var buildingTemplate = newTemplate("building", `
SELECT ?name ({{.UPRN}} as ?uprn_id) ?building (GROUP_CONCAT(DISTINCT ?building_type; SEPARATOR=";") AS ?building_types) ?inspection_date_literal ?epc_rating ?sap_points ?line_of_address_literal ?postcode_literal ?lat_literal ?lon_literal
WHERE {
    ?building telicent:primaryName ?name .
    ?building ies:isIdentifiedBy ?uprn .
    ?uprn ies:representationValue {{.UPRN}} .
    ?building rdf:type ?building_type .
    ?building ies:inLocation ?address .
    ?address ies:isIdentifiedBy ?postcode .
    ?postcode rdf:type ies:PostalCode .
    ?postcode ies:representationValue ?postcode_literal .
    ?address ies:isIdentifiedBy ?line_of_address .
    ?line_of_address rdf:type ies:FirstLineOfAddress .
    ?line_of_address ies:representationValue ?line_of_address_literal .
    OPTIONAL {
        ?building ies:inLocation ?geopoint .
        ?geopoint rdf:type ies:GeoPoint .
        ?geopoint ies:isIdentifiedBy ?lat .
        ?lat rdf:type ies:Latitude .
        ?lat ies:representationValue ?lat_literal .
        ?geopoint ies:isIdentifiedBy ?lon .
        ?lon rdf:type ies:Longitude .
        ?lon ies:representationValue ?lon_literal .
    }
    ?state ies:isStateOf ?building .
    ?state ies:inPeriod ?inspection_date .
    ?inspection_date ies:iso8601PeriodRepresentation ?inspection_date_literal .
    ?state a ?epc_rating .
    ?state ies:hasCharacteristic ?quantity .
    ?quantity qudt:value ?sap_points .
    FILTER (STRSTARTS(STR(?epc_rating), "{{.EPCNamespace}}"))
}
GROUP BY ?name ?building ?inspection_date_literal ?epc_rating ?sap_points ?line_of_address_literal ?postcode_literal ?lat_literal ?lon_literal
`)

// FloodAreas lists flood watch areas with their flood areas.
func (l *Library) FloodAreas() (string, error) {
	return render(floodAreasTemplate, l.data())
}

// FloodAreaPolygon fetches the GeoJSON stored for a polygon representation.
func (l *Library) FloodAreaPolygon(polygon string) (string, error) {
	if err := ValidateIRI(polygon); err != nil {
		return "", err
	}
	return render(floodAreaPolygonTemplate, l.data("Polygon", polygon))
}

// States lists the states of a parent entity with periods and representations.
func (l *Library) States(parent string) (string, error) {
	if err := ValidateIRI(parent); err != nil {
		return "", err
	}
	return render(statesTemplate, l.data("Parent", parent))
}

// Buildings lists all buildings with UPRN, location and EPC rating.
func (l *Library) Buildings() (string, error) {
	return render(buildingsTemplate, l.data())
}

// Building describes the building identified by a UPRN.
func (l *Library) Building(uprn string) (string, error) {
	if !uprnRegex.MatchString(uprn) {
		return "", fmt.Errorf("%w: %q is not a UPRN", ErrInvalidLiteral, uprn)
	}
	lit, err := literal(uprn)
	if err != nil {
		return "", err
	}
	return render(buildingTemplate, l.data("UPRN", lit, "EPCNamespace", EPCNamespace))
}
