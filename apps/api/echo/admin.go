package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ofertaeducativa/catalogo/core/admin"
	"github.com/ofertaeducativa/catalogo/core/catalog"
)

type adminApi struct{}

func registerAdminAPI(g *echo.Group, loginPath string) {
	api := adminApi{}

	ag := g.Group("/admin", adminMiddleware(loginPath))
	ag.GET("/cursos", api.listCourses)
	ag.POST("/cursos", api.createCourse)
	ag.PUT("/cursos/:id", api.updateCourse)
	ag.DELETE("/cursos/:id", api.deleteCourse)

	ag.GET("/sedes", api.listSedes)
	ag.POST("/sedes", api.createSede)
	ag.PUT("/sedes/:id", api.updateSede)
	ag.DELETE("/sedes/:id", api.deleteSede)

	ag.GET("/institucion", api.getInstitution)
	ag.PUT("/institucion", api.updateInstitution)
}

// coordinator returns the admin coordinator of the request's session. adminMiddleware guarantees one.
func coordinator(ctx echo.Context) *admin.Coordinator {
	entry, _ := getContextEntry(ctx)
	return entry.Admin
}

// Courses

func (api *adminApi) listCourses(ctx echo.Context) error {
	courses, err := coordinator(ctx).Courses(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *adminApi) createCourse(ctx echo.Context) error {
	var data catalog.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to catalog.NewCourse")
	}
	courses, err := coordinator(ctx).CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, courses)
}

func (api *adminApi) updateCourse(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	var data catalog.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to catalog.UpdateCourse")
	}
	courses, err := coordinator(ctx).UpdateCourse(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *adminApi) deleteCourse(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	courses, err := coordinator(ctx).DeleteCourse(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

// Sedes

func (api *adminApi) listSedes(ctx echo.Context) error {
	sedes, err := coordinator(ctx).Sedes(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sedes)
}

func (api *adminApi) createSede(ctx echo.Context) error {
	var data catalog.NewSede
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to catalog.NewSede")
	}
	sedes, err := coordinator(ctx).CreateSede(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sedes)
}

func (api *adminApi) updateSede(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	var data catalog.UpdateSede
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to catalog.UpdateSede")
	}
	sedes, err := coordinator(ctx).UpdateSede(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sedes)
}

func (api *adminApi) deleteSede(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	sedes, err := coordinator(ctx).DeleteSede(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sedes)
}

// Institution

func (api *adminApi) getInstitution(ctx echo.Context) error {
	inst, err := coordinator(ctx).Institution(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *adminApi) updateInstitution(ctx echo.Context) error {
	var data catalog.UpdateInstitution
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to catalog.UpdateInstitution")
	}
	inst, err := coordinator(ctx).UpdateInstitution(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inst)
}
