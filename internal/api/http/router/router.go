// Package router builds the gin engine of the profile web front end.
package router

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/profilekeeper/internal/api/http/handler"
	"github.com/dtroode/profilekeeper/internal/api/http/middleware"
	"github.com/dtroode/profilekeeper/internal/api/http/view"
	"github.com/dtroode/profilekeeper/internal/logger"
	"github.com/dtroode/profilekeeper/internal/model"
)

// APIPrefix is the mount point of the JSON profile API.
const APIPrefix = "/api/v1/profiles"

// Router holds the collaborators the HTTP routes are bound to.
type Router struct {
	service       handler.ProfileService
	health        model.HealthChecker
	backend       string
	basePath      string
	healthTimeout time.Duration
	logger        *logger.Logger
}

// New creates a Router serving the pages under basePath.
func New(
	service handler.ProfileService,
	health model.HealthChecker,
	backend string,
	basePath string,
	healthTimeout time.Duration,
	logger *logger.Logger,
) *Router {
	return &Router{
		service:       service,
		health:        health,
		backend:       backend,
		basePath:      basePath,
		healthTimeout: healthTimeout,
		logger:        logger,
	}
}

// route binds one controller action to a method and a path template.
type route struct {
	method string
	path   string
	action gin.HandlerFunc
}

// Register builds the engine with middleware and the full route table.
func (r *Router) Register() (*gin.Engine, error) {
	tmpl, err := view.Templates()
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)
	engine.Use(
		middleware.RequestID,
		middleware.NewLogging(r.logger).Handle,
		middleware.Recovery(r.logger),
	)

	pages := handler.NewProfile(r.service, r.basePath, r.logger)
	api := handler.NewAPI(r.service, r.logger)
	health := handler.NewHealth(r.health, r.backend, r.healthTimeout, r.logger)

	base := strings.TrimSuffix(r.basePath, "/")
	routes := []route{
		{http.MethodGet, base + "/index", pages.Index},
		{http.MethodGet, base + "/add", pages.Add},
		{http.MethodPost, base + "/save", pages.Save},
		{http.MethodGet, base + "/edit/:id", pages.Edit},
		{http.MethodGet, base + "/delete/:id", pages.Delete},
		{http.MethodPost, base + "/delete/:id", pages.Delete},

		{http.MethodGet, APIPrefix, api.List},
		{http.MethodGet, APIPrefix + "/:key", api.Get},
		{http.MethodPut, APIPrefix + "/:key", api.Put},
		{http.MethodDelete, APIPrefix + "/:key", api.Delete},

		{http.MethodGet, "/healthz", health.Check},
	}
	if base != "" {
		routes = append(routes,
			route{http.MethodGet, base, pages.Index},
			route{http.MethodGet, "/", redirectTo(base)},
		)
	} else {
		routes = append(routes, route{http.MethodGet, "/", pages.Index})
	}

	for _, rt := range routes {
		engine.Handle(rt.method, rt.path, rt.action)
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no route for %s %s", c.Request.Method, c.Request.URL.Path)})
	})

	return engine, nil
}

func redirectTo(location string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusFound, location)
	}
}
