package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/picabord/website/api"
	"github.com/picabord/website/blog/application"
	"github.com/picabord/website/blog/domain"
)

// GetPosts lists published posts, optionally filtered by ?category=.
func (a *Api) GetPosts(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		posts []*domain.Post
		err   error
	)
	if category, ok := c.GetQuery("category"); ok {
		posts, err = a.posts.GetPostsByCategory(ctx, category)
	} else {
		posts, err = a.posts.GetAllPosts(ctx)
	}
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.NewPosts(posts))
}

func (a *Api) GetPost(c *gin.Context) {
	rendered, err := a.posts.RenderPost(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}

	headings := make([]api.Heading, 0, len(rendered.Headings))
	for _, h := range rendered.Headings {
		headings = append(headings, api.Heading{Level: h.Level, ID: h.ID, Text: h.Text})
	}

	c.JSON(http.StatusOK, api.RenderedPost{
		Post:     api.NewPost(rendered.Post),
		HTML:     rendered.HTML,
		Headings: headings,
	})
}

// GetRelatedPosts returns other posts from the category of :slug.
func (a *Api) GetRelatedPosts(c *gin.Context) {
	ctx := c.Request.Context()

	limit := application.DefaultRelatedLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, api.Error{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	current, err := a.posts.GetPostBySlug(ctx, c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}

	related, err := a.posts.GetRelatedPosts(ctx, current.Slug, string(current.Category), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.NewPosts(related))
}

func (a *Api) GetCategories(c *gin.Context) {
	categories, err := a.posts.GetAllCategories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (a *Api) GetTags(c *gin.Context) {
	tags, err := a.posts.GetAllTags(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}
