package api

import (
	"net/http"
	"paralog-backend/results"
	"paralog-backend/triplestore"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleOntologyClass(c *gin.Context) {
	class, err := requireQuery(c, "classUri")
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.respondSuperclasses(c, []string{class})
}

func (s *Server) handleSuperclasses(c *gin.Context) {
	classes, err := requireQueryArray(c, "classUris")
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.respondSuperclasses(c, classes)
}

// respondSuperclasses writes the superclasses grouped by class uri.
func (s *Server) respondSuperclasses(c *gin.Context, classes []string) {
	bs, err := s.ontology.Superclasses(c.Request.Context(), classes, triplestore.ForwardedHeaders(c.Request.Header))
	if err != nil {
		abortWithError(c, err)
		return
	}
	aggregation, err := results.Aggregate(bs, "uri")
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, aggregation)
}
