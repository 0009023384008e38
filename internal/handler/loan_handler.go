package handler

import (
	"context"
	"net/http"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/service"
	"anoa.com/perpustakaan/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LoanHandler struct {
	service service.LoanService
}

func NewLoanHandler(service service.LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

func (h *LoanHandler) GetAll(c *gin.Context) {
	var filter dto.LoanFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	loans, err := h.service.GetAll(c.Request.Context(), actor, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, loans)
}

func (h *LoanHandler) GetByID(c *gin.Context) {
	loan, ok := h.call(c, h.service.GetByID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (h *LoanHandler) Assign(c *gin.Context) {
	var req dto.AssignLoanRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	loan, err := h.service.Assign(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, loan)
}

func (h *LoanHandler) RequestReturn(c *gin.Context) {
	loan, ok := h.call(c, h.service.RequestReturn)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (h *LoanHandler) ApproveReturn(c *gin.Context) {
	loan, ok := h.call(c, h.service.ApproveReturn)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (h *LoanHandler) RejectReturn(c *gin.Context) {
	loan, ok := h.call(c, h.service.RejectReturn)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (h *LoanHandler) CancelReturn(c *gin.Context) {
	loan, ok := h.call(c, h.service.CancelReturn)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, loan)
}

// call parses the loan id, resolves the actor and runs one service action.
// Every transition endpoint shares this shape.
func (h *LoanHandler) call(c *gin.Context, action func(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Loan, error)) (*model.Loan, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan id"})
		return nil, false
	}

	actor, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return nil, false
	}

	loan, err := action(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return nil, false
	}
	return loan, true
}
