package handler

import (
	"net/http"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/service"
	"anoa.com/perpustakaan/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookHandler struct {
	service service.BookService
}

func NewBookHandler(service service.BookService) *BookHandler {
	return &BookHandler{service: service}
}

func (h *BookHandler) GetAll(c *gin.Context) {
	var filter dto.BookFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	books, err := h.service.GetAll(c.Request.Context(), actor, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, books)
}

func (h *BookHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	book, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	book, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, book)
}

func (h *BookHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	book, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

// Delete archives a book; ?type=hard removes it and its history for good.
func (h *BookHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if c.DefaultQuery("type", "soft") == "hard" {
		if err := h.service.HardDelete(c.Request.Context(), actor, id); err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "book permanently deleted"})
		return
	}

	if err := h.service.SoftDelete(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "book deleted successfully"})
}

func (h *BookHandler) Restore(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	book, err := h.service.Restore(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) UploadCover(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	fileHeader, err := c.FormFile("cover")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cover file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read cover file"})
		return
	}
	defer file.Close()

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	book, err := h.service.UploadCover(c.Request.Context(), actor, id, &service.CoverFile{
		Reader:   file,
		FileName: fileHeader.Filename,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) GenerateSummary(c *gin.Context) {
	var req dto.GenerateSummaryRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	summary, err := h.service.GenerateSummary(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
