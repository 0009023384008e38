package handler

import (
	"net/http"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/service"
	"anoa.com/perpustakaan/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LibraryHandler struct {
	service service.LibraryService
}

func NewLibraryHandler(service service.LibraryService) *LibraryHandler {
	return &LibraryHandler{service: service}
}

func (h *LibraryHandler) Create(c *gin.Context) {
	var req dto.CreateLibraryRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	library, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, library)
}

func (h *LibraryHandler) GetAll(c *gin.Context) {
	var filter dto.LibraryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	libraries, err := h.service.GetAll(c.Request.Context(), actor, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, libraries)
}

func (h *LibraryHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid library id"})
		return
	}

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	library, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, library)
}

func (h *LibraryHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid library id"})
		return
	}

	var req dto.UpdateLibraryRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	library, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, library)
}

func (h *LibraryHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid library id"})
		return
	}

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "library deleted successfully"})
}
