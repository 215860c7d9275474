package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cozy-labs/cozy-pokedex/core"
	"github.com/labstack/echo/v4"
)

type createPokemonRequest struct {
	No   *int    `json:"no"`
	Name *string `json:"name"`
}

func (r createPokemonRequest) validate() string {
	if r.No == nil || *r.No < 1 {
		return "no must be a positive integer"
	}
	if r.Name == nil || strings.TrimSpace(*r.Name) == "" {
		return "name must be a non-empty string"
	}
	return ""
}

func validatePatch(patch core.PokemonPatch) string {
	if patch.No != nil && *patch.No < 1 {
		return "no must be a positive integer"
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return "name must be a non-empty string"
	}
	return ""
}

// CreatePokemon is the handler for POST /pokemon.
func (s *Server) CreatePokemon(c echo.Context) error {
	var req createPokemonRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badRequest(c, "The request body is not valid JSON.")
	}
	if reason := req.validate(); reason != "" {
		return badRequest(c, reason)
	}

	input := core.CreatePokemon{No: *req.No, Name: *req.Name}
	pokemon, err := s.Service.Create(c.Request().Context(), input)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, pokemon)
}

// GetAllPokemons is the handler for GET /pokemon.
func (s *Server) GetAllPokemons(c echo.Context) error {
	pokemons, err := s.Service.FindAll(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, pokemons)
}

// GetPokemon is the handler for GET /pokemon/:term. The term can be the
// number, the identifier, or the name of the pokemon.
func (s *Server) GetPokemon(c echo.Context) error {
	pokemon, err := s.Service.FindOne(c.Request().Context(), c.Param("term"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, pokemon)
}

// UpdatePokemon is the handler for PATCH /pokemon/:term. It responds with
// the pokemon after the update.
func (s *Server) UpdatePokemon(c echo.Context) error {
	var patch core.PokemonPatch
	if err := json.NewDecoder(c.Request().Body).Decode(&patch); err != nil {
		return badRequest(c, "The request body is not valid JSON.")
	}
	if reason := validatePatch(patch); reason != "" {
		return badRequest(c, reason)
	}

	pokemon, err := s.Service.Update(c.Request().Context(), c.Param("term"), patch)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, pokemon)
}

// DeletePokemon is the handler for DELETE /pokemon/:id. Only the
// identifier is accepted, not the number or the name.
func (s *Server) DeletePokemon(c echo.Context) error {
	if err := s.Service.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
