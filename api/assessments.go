package api

import (
	"net/http"
	"paralog-backend/results"
	"paralog-backend/triplestore"

	"github.com/gin-gonic/gin"
)

// runQuery sends a query along with the request's pass-through headers.
func (s *Server) runQuery(c *gin.Context, query string) (*results.BindingSet, error) {
	return s.store.Query(c.Request.Context(), query, triplestore.ForwardedHeaders(c.Request.Header))
}

// respondFlattened runs query, unless building it failed, and writes one
// record per row with fields typed as listed.
func (s *Server) respondFlattened(c *gin.Context, fields results.Fields, query string, err error) {
	if err != nil {
		abortWithError(c, err)
		return
	}
	bs, err := s.runQuery(c, query)
	if err != nil {
		abortWithError(c, err)
		return
	}
	records := results.Flatten(bs)
	fields.Coerce(records...)
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleAssessments(c *gin.Context) {
	query, err := s.library.AllAssessments()
	s.respondFlattened(c, results.AssessmentFields, query, err)
}

func (s *Server) handleAssessmentAssets(c *gin.Context) {
	assessment, err := requireQuery(c, "assessment")
	if err != nil {
		abortWithError(c, err)
		return
	}
	query, err := s.library.AssetsByAssessment(assessment, c.QueryArray("types"))
	s.respondFlattened(c, results.AssetSummaryFields, query, err)
}

func (s *Server) handleAssessmentAssetTypes(c *gin.Context) {
	assessment, err := requireQuery(c, "assessment")
	if err != nil {
		abortWithError(c, err)
		return
	}
	query, err := s.library.AssetTypesByAssessment(assessment)
	s.respondFlattened(c, results.AssetTypeFields, query, err)
}

func (s *Server) handleAssessmentDependencies(c *gin.Context) {
	assessment, err := requireQuery(c, "assessment")
	if err != nil {
		abortWithError(c, err)
		return
	}
	query, err := s.library.DependenciesByAssessment(assessment, c.QueryArray("types"))
	s.respondFlattened(c, results.DependencyFields, query, err)
}
