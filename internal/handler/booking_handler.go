package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareloop/service-sharing/internal/application"
	bookingDomain "github.com/shareloop/service-sharing/internal/domain/booking"
	"github.com/shareloop/service-sharing/internal/pkg/apperr"
	"github.com/shareloop/service-sharing/internal/pkg/middleware"
	"github.com/shareloop/service-sharing/internal/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.Identity())
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListByBooker)
		bookings.GET("/owner", h.ListByOwner)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", h.ChangeStatus)
	}
}

// CreateBooking handles POST /bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.BadRequest(c, "missing user identity")
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetBooking handles GET /bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.BadRequest(c, "missing user identity")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListByBooker handles GET /bookings. The state query parameter selects a
// category filter; sort, dir, from and size shape the page.
func (h *BookingHandler) ListByBooker(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.BadRequest(c, "missing user identity")
		return
	}

	state, err := bookingDomain.ParseState(c.DefaultQuery("state", "all"))
	if err != nil {
		response.Error(c, err)
		return
	}

	q, err := parseListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ListByBooker(c.Request.Context(), userID, state, q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListByOwner handles GET /bookings/owner.
func (h *BookingHandler) ListByOwner(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.BadRequest(c, "missing user identity")
		return
	}

	state, err := bookingDomain.ParseState(c.DefaultQuery("state", "all"))
	if err != nil {
		response.Error(c, err)
		return
	}

	q, err := parseListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ListByOwner(c.Request.Context(), userID, state, q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ChangeStatus handles PATCH /bookings/:id?approved=true|false.
func (h *BookingHandler) ChangeStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.BadRequest(c, "missing user identity")
		return
	}

	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		response.BadRequest(c, "approved query parameter must be true or false")
		return
	}

	result, err := h.service.ChangeStatus(c.Request.Context(), bookingID, userID, approved)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parseListQuery reads the page window and sort specification from the
// request, falling back to the defaults.
func parseListQuery(c *gin.Context) (bookingDomain.ListQuery, error) {
	q := bookingDomain.DefaultListQuery()

	if raw := c.Query("from"); raw != "" {
		from, err := strconv.Atoi(raw)
		if err != nil || from < 0 {
			return q, badListParam("from")
		}
		q.Offset = from
	}

	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return q, badListParam("size")
		}
		q.Limit = size
	}

	if sortBy := c.Query("sort"); sortBy != "" {
		q.SortBy = sortBy
	}

	switch dir := c.Query("dir"); dir {
	case "":
	case "asc":
		q.SortDir = bookingDomain.SortAsc
	case "desc":
		q.SortDir = bookingDomain.SortDesc
	default:
		return q, badListParam("dir")
	}

	return q, nil
}

func badListParam(name string) error {
	return apperr.NewValidation("invalid " + name + " query parameter")
}
