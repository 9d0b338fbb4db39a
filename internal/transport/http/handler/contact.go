package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vmarchenko/contacts-api/internal/domain"
	"github.com/vmarchenko/contacts-api/internal/transport/http/middleware"
	"github.com/vmarchenko/contacts-api/internal/usecase"
)

type contactUsecaser interface {
	Create(ctx context.Context, ownerID string, input usecase.ContactInput) (*domain.Contact, error)
	List(ctx context.Context, ownerID string, skip, limit int) ([]*domain.Contact, error)
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	Update(ctx context.Context, id, ownerID string, input usecase.ContactInput) (*domain.Contact, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type ContactHandler struct {
	contactUsecase contactUsecaser
	logger         *slog.Logger
}

func NewContactHandler(contactUsecase contactUsecaser, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		contactUsecase: contactUsecase,
		logger:         logger.With("component", "contact_handler"),
	}
}

type contactRequest struct {
	Name     string  `json:"name"     binding:"required"`
	Email    string  `json:"email"    binding:"required,email"`
	Phone    string  `json:"phone"    binding:"required"`
	Birthday *string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
	About    *string `json:"about"    binding:"omitempty,max=250"`
}

func (r *contactRequest) toInput() usecase.ContactInput {
	input := usecase.ContactInput{
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
		About: r.About,
	}
	if r.Birthday != nil {
		// Format already validated by the datetime binding.
		d, _ := time.Parse(time.DateOnly, *r.Birthday)
		input.Birthday = &d
	}
	return input
}

type contactResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  *string   `json:"birthday,omitempty"`
	About     *string   `json:"about,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toContactResponse(c *domain.Contact) contactResponse {
	resp := contactResponse{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		About:     c.About,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Birthday != nil {
		d := c.Birthday.Format(time.DateOnly)
		resp.Birthday = &d
	}
	return resp
}

// POST /contacts
func (h *ContactHandler) Create(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := middleware.CallerFromContext(c)
	contact, err := h.contactUsecase.Create(c.Request.Context(), caller.ID, req.toInput())
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "create contact", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, toContactResponse(contact))
}

// GET /contacts?skip=0&limit=100
func (h *ContactHandler) List(c *gin.Context) {
	var query struct {
		Skip  int `form:"skip"  binding:"omitempty,min=0"`
		Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := middleware.CallerFromContext(c)
	contacts, err := h.contactUsecase.List(c.Request.Context(), caller.ID, query.Skip, query.Limit)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list contacts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	resp := make([]contactResponse, 0, len(contacts))
	for _, contact := range contacts {
		resp = append(resp, toContactResponse(contact))
	}
	c.JSON(http.StatusOK, resp)
}

// GET /contacts/:id — not owner-scoped, any verified caller may read.
func (h *ContactHandler) GetByID(c *gin.Context) {
	contact, err := h.contactUsecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errContactNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "get contact", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, toContactResponse(contact))
}

// PUT /contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := middleware.CallerFromContext(c)
	contact, err := h.contactUsecase.Update(c.Request.Context(), c.Param("id"), caller.ID, req.toInput())
	if err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errContactNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "update contact", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, toContactResponse(contact))
}

// DELETE /contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	caller := middleware.CallerFromContext(c)
	if err := h.contactUsecase.Delete(c.Request.Context(), c.Param("id"), caller.ID); err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errContactNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "delete contact", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusNoContent)
}
