package transport

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ds124wfegd/gradphoto/internal/entity"
	"github.com/gin-gonic/gin"
)

func (h *SessionHandler) CreateSession(c *gin.Context) {
	session, err := h.service.CreateSession()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.service.DeleteSession(c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

func (h *SessionHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}

	session, err := h.service.SelectFile(c.Param("id"), file)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) SetCaption(c *gin.Context) {
	var req entity.CaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.SetCaption(c.Param("id"), *req.Caption)
	respond(c, http.StatusOK, session, err)
}

func (h *SessionHandler) Generate(c *gin.Context) {
	session, err := h.service.Generate(c.Param("id"))
	respond(c, http.StatusAccepted, session, err)
}

func (h *SessionHandler) Retry(c *gin.Context) {
	session, err := h.service.Retry(c.Param("id"))
	respond(c, http.StatusAccepted, session, err)
}

func (h *SessionHandler) Reset(c *gin.Context) {
	session, err := h.service.Reset(c.Param("id"))
	respond(c, http.StatusOK, session, err)
}

func (h *SessionHandler) DownloadImage(c *gin.Context) {
	data, mimeType, filename, err := h.service.FinalImage(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, mimeType, data)
}

func (h *SessionHandler) DataURL(c *gin.Context) {
	resp, err := h.service.DataURL(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) Share(c *gin.Context) {
	resp, err := h.service.Share(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) Mailto(c *gin.Context) {
	resp, err := h.service.Mailto(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// respond reports a refused workflow command together with the unchanged
// session, so the client can re-render.
func respond(c *gin.Context, status int, session entity.SessionResponse, err error) {
	if err == nil {
		c.JSON(status, session)
		return
	}
	if session.ID == "" {
		abortWithError(c, err)
		return
	}
	c.JSON(statusFor(err), gin.H{"error": err.Error(), "session": session})
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrMalformedInput), errors.Is(err, entity.ErrDecodeFailure):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNoResult), errors.Is(err, entity.ErrNoSource), errors.Is(err, entity.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
