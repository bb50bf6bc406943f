package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spiros/phemap"
	"github.com/spiros/phemap/fhir"
)

// httpError maps engine errors onto HTTP status codes. Not-found keys
// are the caller's problem, malformed reference data is the server's.
func httpError(err error) error {
	switch {
	case phemap.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case phemap.IsMalformedInput(err):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return err
	}
}

func (s *Server) allPhecodes(c echo.Context) error {
	records, err := s.eng.AllPhecodes(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) phecodeInfo(c echo.Context) error {
	rec, err := s.eng.PhecodeInfo(c.Request().Context(), c.Param("code"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) exclusions(c echo.Context) error {
	code := c.Param("code")
	codes, err := s.cached.Exclusions(c.Request().Context(), code)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"phecode":    code,
		"exclusions": codes,
	})
}

func (s *Server) icd10ForPhecode(c echo.Context) error {
	code := c.Param("code")
	terms, err := s.cached.ICD10ForPhecode(c.Request().Context(), code)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"phecode": code,
		"icd10":   terms,
	})
}

func (s *Server) phecodesForICD10(c echo.Context) error {
	term := c.Param("term")
	// UK Biobank exports strip the dot; restore it on request.
	if c.QueryParam("undotted") == "true" {
		term = phemap.RestoreICD10Dot(term)
	}

	codes, err := s.eng.PhecodesForICD10(c.Request().Context(), term)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"icd10":    term,
		"phecodes": codes,
	})
}

func (s *Server) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.eng.Metrics().Snapshot())
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "ok",
		"phecodes": s.eng.PhecodeCount(),
		"mappings": s.eng.MappingCount(),
	})
}

func (s *Server) fhirCodeSystem(c echo.Context) error {
	cs, err := fhir.CodeSystem(c.Request().Context(), s.eng)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cs)
}

func (s *Server) fhirExclusionValueSet(c echo.Context) error {
	vs, err := fhir.ExclusionValueSet(c.Request().Context(), s.eng, c.Param("code"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, vs)
}

func (s *Server) fhirICD10ValueSet(c echo.Context) error {
	vs, err := fhir.ICD10ValueSet(c.Request().Context(), s.eng, c.Param("code"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, vs)
}
