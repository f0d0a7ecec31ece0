package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/microsync/internal/apps"
	"github.com/danmuck/microsync/internal/history"
	"github.com/danmuck/microsync/internal/location"
	"github.com/danmuck/microsync/internal/observability"
	"github.com/danmuck/microsync/internal/query"
	"github.com/danmuck/microsync/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var errNoLocation = errors.New("href or location is required")

type codecRequest struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// urlRequest carries the shared URL either as an href or as parts.
type urlRequest struct {
	App       string             `json:"app"`
	Href      string             `json:"href"`
	Location  *location.Location `json:"location"`
	Micro     *location.Location `json:"micro"`
	MicroPath string             `json:"microPath"`
	Base      string             `json:"base"`
}

func (r urlRequest) current() (location.Location, error) {
	if r.Location != nil {
		return *r.Location, nil
	}
	if r.Href == "" {
		return location.Location{}, errNoLocation
	}
	return location.FromHref(r.Href), nil
}

func (r urlRequest) micro() location.Location {
	if r.Micro != nil {
		return *r.Micro
	}
	return location.Location{Pathname: r.MicroPath}
}

type stateRequest struct {
	App        string        `json:"app"`
	State      history.State `json:"state"`
	MicroState any           `json:"microState"`
}

type queryParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Bare  bool   `json:"bare,omitempty"`
}

func (s *Server) RegisterRoutes() {
	s.httpRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"uptime":    time.Since(s.appeared).String(),
			"component": s.Name,
			"version":   version,
		})
	})

	s.httpRouter.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":     true,
			"uptime":    time.Since(s.appeared).String(),
			"component": s.Name,
			"version":   version,
		})
	})

	s.httpRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.httpRouter.Group("/v1")

	v1.POST("/codec/encode", func(c *gin.Context) {
		var req codecRequest
		if !bind(c, &req) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"encoded": s.mux.Codec().Encode(req.Path)})
	})

	v1.POST("/codec/decode", func(c *gin.Context) {
		var req codecRequest
		if !bind(c, &req) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"path": s.mux.Codec().Decode(req.Text)})
	})

	v1.POST("/url/query", func(c *gin.Context) {
		var req urlRequest
		if !bind(c, &req) {
			return
		}
		current, err := req.current()
		if err != nil {
			badRequest(c, err)
			return
		}
		lq := router.QueryObjectFromURL(current.Search, current.Hash)
		c.JSON(http.StatusOK, gin.H{
			"searchQuery": queryParams(lq.Search),
			"hashQuery":   queryParams(lq.Hash),
		})
	})

	v1.POST("/url/path", func(c *gin.Context) {
		req, current, ok := s.bindURL(c)
		if !ok {
			return
		}
		path, found := s.mux.MicroPathFromURL(req.App, current)
		c.JSON(http.StatusOK, gin.H{"app": req.App, "path": path, "found": found})
	})

	v1.POST("/url/attach", func(c *gin.Context) {
		req, current, ok := s.bindURL(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, s.mux.SetMicroPathToURL(req.App, req.micro(), current))
	})

	v1.POST("/url/detach", func(c *gin.Context) {
		req, current, ok := s.bindURL(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, s.mux.RemoveMicroPathFromURL(req.App, current))
	})

	v1.POST("/url/nohash", func(c *gin.Context) {
		req, current, ok := s.bindURL(c)
		if !ok {
			return
		}
		if req.Base == "" {
			badRequest(c, errors.New("base is required"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": s.mux.NoHashMicroPathFromURL(req.App, req.Base, current)})
	})

	v1.POST("/sync", func(c *gin.Context) {
		req, current, ok := s.bindURL(c)
		if !ok {
			return
		}
		res := s.mux.SyncApp(req.App, req.micro(), current, s.registry)
		c.JSON(http.StatusOK, gin.H{
			"effective":     apps.IsEffective(s.registry, req.App),
			"fullPath":      res.FullPath,
			"isAttach2Hash": res.AttachedToHash,
			"location":      res.Location,
		})
	})

	v1.POST("/state/attach", func(c *gin.Context) {
		req, ok := bindState(c)
		if !ok {
			return
		}
		observability.RecordStateOp("attach")
		c.JSON(http.StatusOK, gin.H{"state": history.SetMicroState(req.App, req.MicroState, req.State)})
	})

	v1.POST("/state/detach", func(c *gin.Context) {
		req, ok := bindState(c)
		if !ok {
			return
		}
		observability.RecordStateOp("detach")
		c.JSON(http.StatusOK, gin.H{"state": history.RemoveMicroState(req.App, req.State)})
	})

	v1.POST("/state/get", func(c *gin.Context) {
		req, ok := bindState(c)
		if !ok {
			return
		}
		observability.RecordStateOp("get")
		c.JSON(http.StatusOK, gin.H{"microState": history.MicroState(req.App, req.State)})
	})

	v1.GET("/apps", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"apps": s.registry.List()})
	})

	v1.PUT("/apps/:app", s.admin, func(c *gin.Context) {
		var body struct {
			Prefetch bool `json:"prefetch"`
		}
		if c.Request.ContentLength != 0 && !bind(c, &body) {
			return
		}
		entry := apps.Entry{Name: c.Param("app"), Prefetch: body.Prefetch}
		created, err := s.registry.Upsert(entry)
		if err != nil {
			badRequest(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{"app": entry})
	})

	v1.DELETE("/apps/:app", s.admin, func(c *gin.Context) {
		if err := s.registry.Unregister(c.Param("app")); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	})

	v1.GET("/apps/:app/effective", func(c *gin.Context) {
		name := c.Param("app")
		c.JSON(http.StatusOK, gin.H{"app": name, "effective": apps.IsEffective(s.registry, name)})
	})
}

func (s *Server) bindURL(c *gin.Context) (urlRequest, location.Location, bool) {
	var req urlRequest
	if !bind(c, &req) {
		return req, location.Location{}, false
	}
	if err := apps.ValidateName(req.App); err != nil {
		badRequest(c, err)
		return req, location.Location{}, false
	}
	current, err := req.current()
	if err != nil {
		badRequest(c, err)
		return req, location.Location{}, false
	}
	return req, current, true
}

func bindState(c *gin.Context) (stateRequest, bool) {
	var req stateRequest
	if !bind(c, &req) {
		return req, false
	}
	if req.App == "" {
		badRequest(c, errors.New("app is required"))
		return req, false
	}
	return req, true
}

func bind(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func queryParams(q *query.Query) []queryParam {
	if q == nil {
		return nil
	}
	out := make([]queryParam, 0, q.Len())
	for _, key := range q.Keys() {
		for _, v := range q.Values(key) {
			out = append(out, queryParam{Key: key, Value: v.Raw, Bare: v.Bare})
		}
	}
	return out
}
