package api

import (
	"net/http"
	"paralog-backend/queries"
	"paralog-backend/results"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleAsset(c *gin.Context) {
	asset, err := requireQuery(c, "assetUri")
	if err != nil {
		abortWithError(c, err)
		return
	}
	query, err := s.library.Asset(asset)
	if err != nil {
		abortWithError(c, err)
		return
	}
	bs, err := s.runQuery(c, query)
	if err != nil {
		abortWithError(c, err)
		return
	}
	record, err := results.First(bs)
	if err != nil {
		abortWithError(c, err)
		return
	}
	results.AssetFields.Coerce(record)
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleDependents(c *gin.Context) {
	s.handleDependencies(c, queries.Dependents)
}

func (s *Server) handleProviders(c *gin.Context) {
	s.handleDependencies(c, queries.Providers)
}

func (s *Server) handleDependencies(c *gin.Context, direction queries.Direction) {
	asset, err := requireQuery(c, "assetUri")
	if err != nil {
		abortWithError(c, err)
		return
	}
	query, err := s.library.Dependencies(asset, direction)
	s.respondFlattened(c, results.DependencyFields, query, err)
}

func (s *Server) handleAssetParts(c *gin.Context) {
	asset, err := requireQuery(c, "assetUri")
	if err != nil {
		abortWithError(c, err)
		return
	}
	query, err := s.library.AssetParts(asset)
	s.respondFlattened(c, nil, query, err)
}

func (s *Server) handleResidents(c *gin.Context) {
	asset, err := requireQuery(c, "assetUri")
	if err != nil {
		abortWithError(c, err)
		return
	}
	query, err := s.library.Residents(asset)
	s.respondFlattened(c, nil, query, err)
}

func (s *Server) handleParticipations(c *gin.Context) {
	asset, err := requireQuery(c, "assetUri")
	if err != nil {
		abortWithError(c, err)
		return
	}
	query, err := s.library.Participations(asset)
	s.respondFlattened(c, nil, query, err)
}

func (s *Server) handleAssetsByType(c *gin.Context) {
	assetType, err := requireQuery(c, "typeUri")
	if err != nil {
		abortWithError(c, err)
		return
	}
	query, err := s.library.AssetsByType(assetType)
	s.respondFlattened(c, nil, query, err)
}

func (s *Server) handleParticipants(c *gin.Context) {
	event, err := requireQuery(c, "eventUri")
	if err != nil {
		abortWithError(c, err)
		return
	}
	query, err := s.library.Participants(event)
	s.respondFlattened(c, nil, query, err)
}

func (s *Server) handleResidences(c *gin.Context) {
	person, err := requireQuery(c, "personUri")
	if err != nil {
		abortWithError(c, err)
		return
	}
	query, err := s.library.Residences(person)
	s.respondFlattened(c, results.AssetFields, query, err)
}
