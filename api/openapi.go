package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

const (
	tagAssessments = "assessments"
	tagAssets      = "assets"
	tagPlaces      = "places"
	tagOntology    = "ontology"
)

// registerOpenAPI serves the OpenAPI document as JSON and YAML.
func (s *Server) registerOpenAPI(g *gin.RouterGroup) {
	apispec := s.newAPISpec()
	path := s.cfg.OpenAPIPath
	if path == "" {
		path = "/openapi.json"
	}

	g.GET(path, func(c *gin.Context) {
		c.JSON(http.StatusOK, apispec)
	})

	g.GET("/openapi.yaml", func(c *gin.Context) {
		data, err := yaml.Marshal(apispec)
		if err != nil {
			slog.Error("failed marshaling openapi spec", "error", err)
			c.JSON(http.StatusInternalServerError, JSONError{Message: "Internal Server Error"})
			return
		}
		c.Data(http.StatusOK, "text/yaml", data)
	})
}

// newAPISpec constructs the OpenAPI specification for this service.
func (s *Server) newAPISpec() *openapi3.T {
	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Paralog API",
			Description: "Read API over the Paralog knowledge graph: assessments, assets, dependencies, buildings and flood areas",
			Version:     "v1",
		},
		Servers: openapi3.Servers{
			&openapi3.Server{
				Description: "Production",
				URL:         strings.TrimSuffix(s.cfg.BackendURL, "/") + s.cfg.RootPath,
			},
		},
		Tags: openapi3.Tags{
			&openapi3.Tag{Name: tagAssessments},
			&openapi3.Tag{Name: tagAssets},
			&openapi3.Tag{Name: tagPlaces},
			&openapi3.Tag{Name: tagOntology},
		},
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
			Responses: openapi3.ResponseBodies{
				"ErrorResponse": &openapi3.ResponseRef{
					Value: openapi3.NewResponse().
						WithDescription("Response when errors happen.").
						WithContent(openapi3.NewContentWithJSONSchema(openapi3.NewSchema().
							WithProperty("message", openapi3.NewStringSchema()))),
				},
			},
		},
		Paths: openapi3.NewPaths(),
	}
	if s.cfg.Auth.Header != "" {
		spec.Components.SecuritySchemes = openapi3.SecuritySchemes{
			"jwt": &openapi3.SecuritySchemeRef{Value: openapi3.NewSecurityScheme().
				WithType("apiKey").WithIn("header").WithName(s.cfg.Auth.Header).
				WithDescription("Signed JWT, optionally prefixed with Bearer")},
		}
		spec.Security = openapi3.SecurityRequirements{openapi3.SecurityRequirement{"jwt": []string{}}}
	}

	record := openapi3.NewObjectSchema().WithAnyAdditionalProperties()
	records := openapi3.NewArraySchema().WithItems(record)
	uri := func(name string) *openapi3.Parameter {
		return openapi3.NewQueryParameter(name).WithSchema(openapi3.NewStringSchema())
	}
	uris := func(name string) *openapi3.Parameter {
		return openapi3.NewQueryParameter(name).
			WithSchema(openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))
	}

	addGet(spec, "/assessments", tagAssessments, "List all assessments", records)
	addGet(spec, "/assessments/assets", tagAssessments, "List assets covered by an assessment", records,
		required(uri("assessment")), uris("types"))
	addGet(spec, "/assessments/asset-types", tagAssessments, "Count assessed assets per type", records,
		required(uri("assessment")))
	addGet(spec, "/assessments/dependencies", tagAssessments, "List dependencies between assessed assets", records,
		required(uri("assessment")), uris("types"))
	addGet(spec, "/asset", tagAssets, "Describe one asset", record, required(uri("assetUri")))
	addGet(spec, "/asset/dependents", tagAssets, "List assets depending on an asset", records, required(uri("assetUri")))
	addGet(spec, "/asset/providers", tagAssets, "List assets an asset depends on", records, required(uri("assetUri")))
	addGet(spec, "/asset/parts", tagAssets, "List parts of an asset", records, required(uri("assetUri")))
	addGet(spec, "/asset/residents", tagAssets, "List residents of an asset", records, required(uri("assetUri")))
	addGet(spec, "/asset/participations", tagAssets, "List events an asset took part in", records, required(uri("assetUri")))
	addGet(spec, "/assets/by-type", tagAssets, "List assets of a type", records, required(uri("typeUri")))
	addGet(spec, "/event/participants", tagAssets, "List participants of an event", records, required(uri("eventUri")))
	addGet(spec, "/person/residences", tagAssets, "List residences of a person", records, required(uri("personUri")))
	addGet(spec, "/flood-watch-areas", tagPlaces, "List flood watch areas with their flood areas", records)
	addGet(spec, "/flood-watch-areas/polygon", tagPlaces, "Get the GeoJSON polygon of a flood area",
		openapi3.NewObjectSchema().WithAnyAdditionalProperties().WithNullable(), required(uri("polygon_uri")))
	addGet(spec, "/states", tagPlaces, "List states of an asset keyed by state uri", record, required(uri("parent_uri")))
	addGet(spec, "/buildings", tagPlaces, "List buildings", records)
	addGet(spec, "/buildings/{uprn}", tagPlaces, "Describe one building", record,
		openapi3.NewPathParameter("uprn").WithSchema(openapi3.NewStringSchema()))
	addGet(spec, "/ontology/class", tagOntology, "List superclasses of a class", record, required(uri("classUri")))
	addGet(spec, "/ontology/superclasses", tagOntology, "List superclasses of several classes", record,
		required(uris("classUris")))
	return spec
}

func required(p *openapi3.Parameter) *openapi3.Parameter {
	return p.WithRequired(true)
}

func addGet(spec *openapi3.T, path string, tag string, summary string, schema *openapi3.Schema, params ...*openapi3.Parameter) {
	op := openapi3.NewOperation()
	op.Summary = summary
	op.Tags = []string{tag}
	for _, p := range params {
		op.AddParameter(p)
	}
	errorRef := &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("OK").
			WithJSONSchema(schema)}),
		openapi3.WithStatus(http.StatusBadRequest, errorRef),
		openapi3.WithStatus(http.StatusUnauthorized, errorRef),
		openapi3.WithStatus(http.StatusBadGateway, errorRef),
		openapi3.WithStatus(http.StatusGatewayTimeout, errorRef),
	)
	spec.Paths.Set(path, &openapi3.PathItem{Get: op})
}
