package queries

// Direction selects which end of a dependency the asset sits on.
type Direction int

const (
	// Dependents lists the assets that depend on the given asset.
	Dependents Direction = iota
	// Providers lists the assets the given asset depends on.
	Providers
)

func (d Direction) String() string {
	if d == Providers {
		return "providers"
	}
	return "dependents"
}

// the OPTIONAL blocks describing a located, named asset
const assetDetailPatterns = `
    OPTIONAL {
        ?uri ies:isIdentifiedBy ?osmIDobj .
        ?osmIDobj ies:representationValue ?osmID .
        ?osmIDobj a ies:OpenStreetmapIdentifier .
    }
    OPTIONAL {
        ?uri ies:inLocation ?loc .
        ?loc ies:isIdentifiedBy ?latObj .
        ?latObj a ies:Latitude .
        ?latObj ies:representationValue ?lat .
        ?loc ies:isIdentifiedBy ?lonObj .
        ?lonObj a ies:Longitude .
        ?lonObj ies:representationValue ?lon .
    }
    OPTIONAL {
        ?uri rdfs:comment ?desc
    }
    OPTIONAL {
        ?uri ies:isIdentifiedBy ?wikipediaObj .
        ?wikipediaObj a ies:WikipediaPage .
        ?wikipediaObj ies:representationValue ?wikipediaPage
    }
    OPTIONAL {
        ?uri ies:isIdentifiedBy ?webPageObj .
        ?webPageObj a ies:URL .
        ?webPageObj ies:representationValue ?webPage .
    }
    OPTIONAL {
        ?uri ies:hasName ?nameObj .
        ?nameObj ies:representationValue ?name
    }
    OPTIONAL {
        ?uri ies:isIdentifiedBy ?addrObj .
        ?addrObj a ies:LineOfAddress .
        ?addrObj ies:representationValue ?address
    }`

var assetTemplate = newTemplate("asset", `
SELECT DISTINCT ?uri ?assetType ?name ?osmID ?lat ?lon ?desc ?wikipediaPage ?webPage ?address (COUNT(?dependencyUri) AS ?dependentCount) (SUM(?criticalityRating) AS ?dependentCriticalitySum)
WHERE {
    BIND (URI("{{.Asset}}") as ?uri)
    BIND (0.0 as ?defaultCrit)
    ?uri a ?assetType .`+assetDetailPatterns+`
    OPTIONAL {
        ?provider ies:isParticipationOf ?uri .
        ?provider ies:isParticipantIn ?dependencyUri .
        ?provider a ies:Provider .
        OPTIONAL {
            ?dependencyUri ies:criticalityRating ?crit
        }
    }
    BIND (COALESCE(?crit, ?defaultCrit) as ?criticalityRating)
}
GROUP BY ?uri ?assetType ?name ?osmID ?lat ?lon ?desc ?wikipediaPage ?webPage ?address
`)

var dependenciesTemplate = newTemplate("dependencies", `
SELECT ?dependentNode ?dependentNodeType ?dependencyUri ?criticalityRating ?osmID ?providerNode ?providerNodeType ?dependentName ?providerName
WHERE {
    BIND (URI("{{.Asset}}") as ?{{.Bound}})
    ?provider ies:isParticipationOf ?providerNode .
    ?providerNode a ?providerNodeType .
    ?provider ies:isParticipantIn ?dependencyUri .
    ?provider a ies:Provider .
    ?dependent ies:isParticipantIn ?dependencyUri .
    ?dependent a ies:Dependent .
    ?dependent ies:isParticipationOf ?dependentNode .
    ?dependentNode a ?dependentNodeType .
    OPTIONAL {
        ?dependencyUri ies:criticalityRating ?criticalityRating
    }
    OPTIONAL {
        ?dependencyUri ies:isIdentifiedBy ?osmIDobj .
        ?osmIDobj a ies:OpenStreetmapIdentifier .
        ?osmIDobj ies:representationValue ?osmID .
    }
    OPTIONAL {
        ?dependentNode telicent:primaryName ?dependentName .
    }
    OPTIONAL {
        ?providerNode telicent:primaryName ?providerName .
    }
}
`)

var assetPartsTemplate = newTemplate("assetParts", `
SELECT DISTINCT ?uri ?lat1 ?lon1 ?lat2 ?lon2 ?id ?type
WHERE {
    BIND (URI("{{.Asset}}") as ?assetUri)
    ?uri rdf:type ?type .
    ?uri ies:isPartOf ?assetUri .
    OPTIONAL {
        ?uri ies:isConnectedTo ?loc1 .
        ?loc1 ies:isIdentifiedBy ?latObj1 .
        ?latObj1 a ies:Latitude .
        ?latObj1 ies:representationValue ?lat1 .
        ?loc1 ies:isIdentifiedBy ?lonObj1 .
        ?lonObj1 a ies:Longitude .
        ?lonObj1 ies:representationValue ?lon1 .
        ?uri ies:isConnectedTo ?loc2 .
        ?loc2 ies:isIdentifiedBy ?latObj2 .
        ?latObj2 a ies:Latitude .
        ?latObj2 ies:representationValue ?lat2 .
        ?loc2 ies:isIdentifiedBy ?lonObj2 .
        ?lonObj2 a ies:Longitude .
        ?lonObj2 ies:representationValue ?lon2 .
    }
    FILTER (?loc1 != ?loc2)
}
ORDER BY ?uri
`)

var residentsTemplate = newTemplate("residents", `
SELECT DISTINCT ?uri ?type ?name
WHERE {
    BIND (URI("{{.Asset}}") as ?assetUri)
    ?residentState ies:isStateOf ?uri .
    ?residentState ies:residesIn ?assetUri .
    ?uri rdf:type ?type .
    OPTIONAL {
        ?uri ies:hasName ?perNameObj .
        ?perNameObj ies:representationValue ?name
    }
}
ORDER BY ?uri
`)

var participationsTemplate = newTemplate("participations", `
SELECT DISTINCT ?participationType ?event ?eventType
WHERE {
    BIND (URI("{{.Asset}}") as ?assetUri)
    ?participation ies:isParticipationOf ?assetUri .
    ?participation rdf:type ?participationType .
    ?participation ies:isParticipantIn ?event .
    ?event rdf:type ?eventType .
}
ORDER BY ?event
`)

var participantsTemplate = newTemplate("participants", `
SELECT DISTINCT ?participationType ?asset ?assetType
WHERE {
    BIND (URI("{{.Event}}") as ?event)
    ?participation ies:isParticipationOf ?asset .
    ?participation rdf:type ?participationType .
    ?participation ies:isParticipantIn ?event .
    ?asset rdf:type ?assetType .
}
ORDER BY ?asset
`)

var residencesTemplate = newTemplate("residences", `
SELECT DISTINCT ?uri ?assetType ?name ?osmID ?lat ?lon ?desc ?wikipediaPage ?webPage ?address
WHERE {
    BIND (URI("{{.Person}}") as ?resident)
    ?residentState ies:isStateOf ?resident .
    ?residentState ies:residesIn ?uri .
    ?uri rdf:type ?assetType .`+assetDetailPatterns+`
}
ORDER BY ?uri
`)

var assetsByTypeTemplate = newTemplate("assetsByType", `
SELECT ?assetUri (GROUP_CONCAT(?idVal; SEPARATOR=";") AS ?assetIDs)
WHERE {
    ?assetUri a <{{.Type}}> .
    OPTIONAL {
        ?assetUri ies:isIdentifiedBy ?idObj .
        ?idObj ies:representationValue ?idVal .
    }
}
GROUP BY ?assetUri
`)

// Asset describes a single asset with its dependent count and summed criticality.
func (l *Library) Asset(asset string) (string, error) {
	if err := ValidateIRI(asset); err != nil {
		return "", err
	}
	return render(assetTemplate, l.data("Asset", asset))
}

// Dependencies lists the dependencies on either side of an asset.
func (l *Library) Dependencies(asset string, direction Direction) (string, error) {
	if err := ValidateIRI(asset); err != nil {
		return "", err
	}
	// providers of an asset are found by fixing the asset as the dependent node
	bound := "providerNode"
	if direction == Providers {
		bound = "dependentNode"
	}
	return render(dependenciesTemplate, l.data("Asset", asset, "Bound", bound))
}

// AssetParts lists the connected parts of an asset.
func (l *Library) AssetParts(asset string) (string, error) {
	if err := ValidateIRI(asset); err != nil {
		return "", err
	}
	return render(assetPartsTemplate, l.data("Asset", asset))
}

// Residents lists the people residing in an asset.
func (l *Library) Residents(asset string) (string, error) {
	if err := ValidateIRI(asset); err != nil {
		return "", err
	}
	return render(residentsTemplate, l.data("Asset", asset))
}

// Participations lists the events an asset participates in.
func (l *Library) Participations(asset string) (string, error) {
	if err := ValidateIRI(asset); err != nil {
		return "", err
	}
	return render(participationsTemplate, l.data("Asset", asset))
}

// Participants lists the assets taking part in an event.
func (l *Library) Participants(event string) (string, error) {
	if err := ValidateIRI(event); err != nil {
		return "", err
	}
	return render(participantsTemplate, l.data("Event", event))
}

// Residences lists the assets a person resides in.
func (l *Library) Residences(person string) (string, error) {
	if err := ValidateIRI(person); err != nil {
		return "", err
	}
	return render(residencesTemplate, l.data("Person", person))
}

// AssetsByType lists the instances of a type with their concatenated identifiers.
func (l *Library) AssetsByType(assetType string) (string, error) {
	if err := ValidateIRI(assetType); err != nil {
		return "", err
	}
	return render(assetsByTypeTemplate, l.data("Type", assetType))
}
