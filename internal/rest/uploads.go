package rest

import (
	"github.com/gin-gonic/gin"
)

// GetUpload serves an uploaded image referenced from a post body.
func (a *Api) GetUpload(c *gin.Context) {
	img, err := a.images.GetImage(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(img.Path)
}
