package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/picabord/website/api"
	"github.com/picabord/website/internal/middleware"
	"github.com/rs/zerolog/log"
)

func (a *Api) Login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error{Error: "invalid login request"})
		return
	}

	if !a.sessions.CheckCredentials(req.Username, req.Password) {
		log.Warn().Str("username", req.Username).Str("remote_addr", c.ClientIP()).Msg("Rejected CMS login")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	token := a.sessions.Create()
	a.setSessionCookie(c, token, int(a.sessions.TTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Login successful"})
}

func (a *Api) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil {
		a.sessions.Delete(token)
	}
	a.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (a *Api) AuthStatus(c *gin.Context) {
	token, err := c.Cookie(middleware.SessionCookie)
	if err != nil || !a.sessions.Valid(token) {
		c.JSON(http.StatusOK, api.AuthStatus{})
		return
	}
	c.JSON(http.StatusOK, api.AuthStatus{
		IsAuthenticated: true,
		User:            &api.User{Username: a.sessions.Username()},
	})
}

func (a *Api) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", strings.HasPrefix(a.siteURL, "https://"), true)
}

// ListCMSPosts lists every post, drafts included.
func (a *Api) ListCMSPosts(c *gin.Context) {
	posts, err := a.posts.ListAdminPosts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.NewCMSPosts(posts))
}

func (a *Api) GetCMSPost(c *gin.Context) {
	post, err := a.posts.GetAdminPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.NewCMSPost(post))
}

func (a *Api) CreatePost(c *gin.Context) {
	var req api.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error{Error: "invalid post payload"})
		return
	}

	post, err := a.posts.CreatePost(c.Request.Context(), req.Input())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.WriteResult{
		Success: true,
		ID:      post.Key,
		Slug:    post.Slug,
		Message: "Post created successfully",
	})
}

func (a *Api) UpdatePost(c *gin.Context) {
	var req api.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error{Error: "invalid post payload"})
		return
	}

	key := c.Param("id")
	post, err := a.posts.UpdatePost(c.Request.Context(), key, req.Input())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.WriteResult{
		Success: true,
		ID:      post.Key,
		Slug:    post.Slug,
		Message: "Post updated successfully",
	})
}

func (a *Api) DeletePost(c *gin.Context) {
	key := c.Param("id")
	if err := a.posts.DeletePost(c.Request.Context(), key); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.WriteResult{
		Success: true,
		ID:      key,
		Message: "Post deleted successfully",
	})
}
