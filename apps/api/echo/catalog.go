package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ofertaeducativa/catalogo/core/catalog"
)

type CourseList struct {
	Courses []catalog.Course   `json:"cursos"`
	Filters catalog.Predicates `json:"filtros"`
}

type catalogApi struct {
	service *catalog.Service
}

func registerCatalogAPI(g *echo.Group, svc *catalog.Service) {
	api := catalogApi{service: svc}

	g.GET("/cursos", api.listCourses)
	g.GET("/instituciones", api.listInstitutions)
	g.GET("/instituciones/nombres", api.listInstitutionNames)
	g.GET("/opciones", api.options)
}

// Handlers

func (api *catalogApi) listCourses(ctx echo.Context) error {
	var q CourseQuery
	q.Bind(ctx)
	f, err := q.Filter()
	if err != nil {
		return err
	}

	courses, err := api.service.Courses(ctx.Request().Context(), f)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CourseList{Courses: courses, Filters: f.Predicates()})
}

func (api *catalogApi) listInstitutions(ctx echo.Context) error {
	insts, err := api.service.Institutions(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, insts)
}

func (api *catalogApi) listInstitutionNames(ctx echo.Context) error {
	names, err := api.service.InstitutionNames(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, names)
}

func (api *catalogApi) options(ctx echo.Context) error {
	opts, err := api.service.Options(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, opts)
}
