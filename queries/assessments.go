package queries

var allAssessmentsTemplate = newTemplate("allAssessments", `
SELECT ?uri ?name (COUNT(?asset) AS ?numberOfAssessedItems)
WHERE {
    ?uri a ies:CarverAssessment .
    ?uri ies:hasName ?cAssNameObj .
    ?cAssNameObj ies:representationValue ?name .
    OPTIONAL {
        ?uri ies:assessed ?asset
    }
}
GROUP BY ?uri ?name
`)

var assetsByAssessmentTemplate = newTemplate("assetsByAssessment", `
SELECT DISTINCT ?uri ?type ?lat ?lon (COUNT(?dependencyUri) AS ?dependentCount) (SUM(?criticalityRating) AS ?dependentCriticalitySum) (COUNT(?part) AS ?partCount)
WHERE {
    BIND (URI("{{.Assessment}}") as ?assessment)
    BIND (0.0 as ?defaultCrit)
    ?assessment ies:assessed ?uri .
    ?uri rdf:type ?type .
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
        ?provider ies:isParticipationOf ?uri .
        ?provider ies:isParticipantIn ?dependencyUri .
        ?provider a ies:Provider .
        OPTIONAL {
            ?dependencyUri ies:criticalityRating ?crit
        }
    }
    OPTIONAL {
        ?part ies:isPartOf ?uri .
    }
    BIND (COALESCE(?crit, ?defaultCrit) as ?criticalityRating)
    FILTER NOT EXISTS {
        ?uri a ies:Dependency
    }
    {{inFilter "type" .Types}}
}
GROUP BY ?uri ?type ?lat ?lon
`)

var assetTypesByAssessmentTemplate = newTemplate("assetTypesByAssessment", `
SELECT ?uri (COUNT(?asset) AS ?assetCount)
WHERE {
    BIND (URI("{{.Assessment}}") as ?assessment)
    ?assessment ies:assessed ?asset .
    ?asset rdf:type ?uri .
    FILTER NOT EXISTS {
        ?asset a ies:Dependency
    }
}
GROUP BY ?uri
`)

var dependenciesByAssessmentTemplate = newTemplate("dependenciesByAssessment", `
SELECT DISTINCT ?dependencyUri ?providerNode ?providerNodeType ?dependentNode ?dependentNodeType ?criticalityRating ?osmID
WHERE {
    BIND (URI("{{.Assessment}}") as ?assessment)
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
    {{inFilter "dependentNodeType" .Types}}
    {{inFilter "providerNodeType" .Types}}
}
ORDER BY ?dependencyUri
`)

// AllAssessments lists every CARVER assessment with the number of assessed items.
func (l *Library) AllAssessments() (string, error) {
	return render(allAssessmentsTemplate, l.data())
}

// AssetsByAssessment lists the assets covered by an assessment, optionally
// restricted to the given asset types.
func (l *Library) AssetsByAssessment(assessment string, types []string) (string, error) {
	if err := ValidateIRI(assessment); err != nil {
		return "", err
	}
	if err := validateIRIs(types); err != nil {
		return "", err
	}
	return render(assetsByAssessmentTemplate, l.data("Assessment", assessment, "Types", types))
}

// AssetTypesByAssessment counts the assessed assets per type.
func (l *Library) AssetTypesByAssessment(assessment string) (string, error) {
	if err := ValidateIRI(assessment); err != nil {
		return "", err
	}
	return render(assetTypesByAssessmentTemplate, l.data("Assessment", assessment))
}

// DependenciesByAssessment lists provider/dependent pairs. A non-empty type
// list restricts both ends of the dependency.
func (l *Library) DependenciesByAssessment(assessment string, types []string) (string, error) {
	if err := ValidateIRI(assessment); err != nil {
		return "", err
	}
	if err := validateIRIs(types); err != nil {
		return "", err
	}
	return render(dependenciesByAssessmentTemplate, l.data("Assessment", assessment, "Types", types))
}
