package api

import (
	"fmt"
	"net/http"
	"paralog-backend/results"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

func (s *Server) handleFloodWatchAreas(c *gin.Context) {
	query, err := s.library.FloodAreas()
	if err != nil {
		abortWithError(c, err)
		return
	}
	bs, err := s.runQuery(c, query)
	if err != nil {
		abortWithError(c, err)
		return
	}
	areas, err := results.MapFloodAreas(bs)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, areas)
}

// handleFloodAreaPolygon returns the stored GeoJSON document as is, or null
// when the polygon is unknown.
func (s *Server) handleFloodAreaPolygon(c *gin.Context) {
	polygon, err := requireQuery(c, "polygon_uri")
	if err != nil {
		abortWithError(c, err)
		return
	}
	query, err := s.library.FloodAreaPolygon(polygon)
	if err != nil {
		abortWithError(c, err)
		return
	}
	bs, err := s.runQuery(c, query)
	if err != nil {
		abortWithError(c, err)
		return
	}
	geoJSON, ok := results.FirstValue(bs)
	if !ok {
		c.JSON(http.StatusOK, nil)
		return
	}
	if !gjson.Valid(geoJSON.Value) {
		abortWithError(c, fmt.Errorf("%w: polygon %s is not valid JSON", results.ErrMalformedResponse, polygon))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(geoJSON.Value))
}

func (s *Server) handleStates(c *gin.Context) {
	parent, err := requireQuery(c, "parent_uri")
	if err != nil {
		abortWithError(c, err)
		return
	}
	query, err := s.library.States(parent)
	if err != nil {
		abortWithError(c, err)
		return
	}
	bs, err := s.runQuery(c, query)
	if err != nil {
		abortWithError(c, err)
		return
	}
	states, err := results.MapStates(bs)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, states)
}

func (s *Server) handleBuildings(c *gin.Context) {
	query, err := s.library.Buildings()
	if err != nil {
		abortWithError(c, err)
		return
	}
	bs, err := s.runQuery(c, query)
	if err != nil {
		abortWithError(c, err)
		return
	}
	buildings, err := results.MapBuildings(bs)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildings)
}

func (s *Server) handleBuilding(c *gin.Context) {
	query, err := s.library.Building(c.Param("uprn"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	bs, err := s.runQuery(c, query)
	if err != nil {
		abortWithError(c, err)
		return
	}
	building, err := results.MapBuilding(bs)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, building)
}
