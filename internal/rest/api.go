package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/picabord/website/api"
	"github.com/picabord/website/blog/application"
	"github.com/picabord/website/blog/domain"
	"github.com/picabord/website/internal/middleware"
)

// Services are the collaborators the handlers call into.
type Services struct {
	Posts    *application.PostService
	Images   domain.ImageRepository
	Sessions *middleware.SessionStore
	SiteURL  string
	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
}

// Api holds the handlers of the public blog API and the CMS.
type Api struct {
	posts    *application.PostService
	images   domain.ImageRepository
	sessions *middleware.SessionStore
	siteURL  string
	now      func() time.Time
}

// NewApi registers every route on router.
func NewApi(router *gin.Engine, svc Services) *Api {
	a := &Api{
		posts:    svc.Posts,
		images:   svc.Images,
		sessions: svc.Sessions,
		siteURL:  strings.TrimSuffix(svc.SiteURL, "/"),
		now:      time.Now,
	}

	router.GET("/healthz", a.Health)
	router.GET("/sitemap.xml", a.Sitemap)
	router.GET("/robots.txt", a.Robots)
	router.GET("/blog/uploads/:name", a.GetUpload)
	if svc.Metrics != nil {
		router.GET("/metrics", gin.WrapH(svc.Metrics))
	}

	public := router.Group("/api")
	{
		public.GET("/posts", a.GetPosts)
		public.GET("/posts/:slug", a.GetPost)
		public.GET("/posts/:slug/related", a.GetRelatedPosts)
		public.GET("/categories", a.GetCategories)
		public.GET("/tags", a.GetTags)
	}

	cms := router.Group("/api/cms")
	{
		cms.POST("/login", a.Login)
		cms.POST("/logout", a.Logout)
		cms.GET("/auth/status", a.AuthStatus)

		authed := cms.Group("/posts", middleware.RequireSession(a.sessions))
		authed.GET("", a.ListCMSPosts)
		authed.POST("", a.CreatePost)
		authed.GET("/:id", a.GetCMSPost)
		authed.PUT("/:id", a.UpdatePost)
		authed.DELETE("/:id", a.DeletePost)
	}

	return a
}

func (a *Api) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail maps store errors to a status. Unexpected errors are attached to the
// context for the request log and answered with a generic message.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, api.Error{Error: err.Error()})
	case errors.Is(err, domain.ErrPostNotFound):
		c.JSON(http.StatusNotFound, api.Error{Error: "post not found"})
	case errors.Is(err, domain.ErrImageNotFound):
		c.JSON(http.StatusNotFound, api.Error{Error: "image not found"})
	case errors.Is(err, domain.ErrInvalidPost):
		_ = c.Error(err)
		c.JSON(http.StatusUnprocessableEntity, api.Error{Error: "post file is invalid"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, api.Error{Error: "internal server error"})
	}
}
