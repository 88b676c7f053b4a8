package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"

	"booknet/internal/adapters/persistence/models"
	"booknet/internal/adapters/http/middleware"
	"booknet/internal/core/domain"
	"booknet/internal/core/services"
	"booknet/internal/pkg/pagination"
	"booknet/internal/pkg/response"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// BookHandler handles catalog and lending endpoints
type BookHandler struct {
	bookService *services.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *services.BookService) *BookHandler {
	return &BookHandler{
		bookService: bookService,
	}
}

// CreateBookRequest represents book creation request body
type CreateBookRequest struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
	ISBN       string `json:"isbn"`
	Synopsis   string `json:"synopsis"`
	Shareable  bool   `json:"shareable"`
}

// Validate validates the book creation payload
func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.AuthorName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.ISBN, validation.Length(0, 20)),
	)
}

// Create adds a new book owned by the authenticated user
func (h *BookHandler) Create(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return response.BadRequest(c, err.Error())
	}

	input := &services.CreateBookInput{
		Title:      req.Title,
		AuthorName: req.AuthorName,
		ISBN:       req.ISBN,
		Synopsis:   req.Synopsis,
		Shareable:  req.Shareable,
	}

	bookID, err := h.bookService.CreateBook(c.Context(), input, identity)
	if err != nil {
		log.Printf("Book creation failed: %v", err)
		return response.InternalServerError(c, "Failed to create book")
	}

	return response.Created(c, "Book created successfully", fiber.Map{
		"book_id": bookID,
	})
}

// GetByID returns a single book
func (h *BookHandler) GetByID(c *fiber.Ctx) error {
	bookID, err := parseBookID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid book id")
	}

	book, err := h.bookService.GetBook(c.Context(), bookID)
	if err != nil {
		return h.lendingError(c, err)
	}

	return response.Success(c, "Book retrieved successfully", book.ToResponse())
}

// List returns shareable, unarchived books owned by other users
func (h *BookHandler) List(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	params := pagination.GetParams(c)
	books, total, err := h.bookService.ListDisplayable(c.Context(), identity, params.Offset, params.Limit)
	if err != nil {
		log.Printf("Book listing failed: %v", err)
		return response.InternalServerError(c, "Failed to list books")
	}

	return c.JSON(pagination.NewResponse(toBookResponses(books), params, total))
}

// ListOwned returns the authenticated user's books
func (h *BookHandler) ListOwned(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	params := pagination.GetParams(c)
	books, total, err := h.bookService.ListOwned(c.Context(), identity, params.Offset, params.Limit)
	if err != nil {
		log.Printf("Book listing failed: %v", err)
		return response.InternalServerError(c, "Failed to list books")
	}

	return c.JSON(pagination.NewResponse(toBookResponses(books), params, total))
}

// ListBorrowed returns the authenticated user's open loans
func (h *BookHandler) ListBorrowed(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	params := pagination.GetParams(c)
	loans, total, err := h.bookService.ListBorrowed(c.Context(), identity, params.Offset, params.Limit)
	if err != nil {
		log.Printf("Loan listing failed: %v", err)
		return response.InternalServerError(c, "Failed to list borrowed books")
	}

	return c.JSON(pagination.NewResponse(toBorrowedResponses(loans), params, total))
}

// ListReturned returns returned loans on the authenticated user's books
func (h *BookHandler) ListReturned(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	params := pagination.GetParams(c)
	loans, total, err := h.bookService.ListReturned(c.Context(), identity, params.Offset, params.Limit)
	if err != nil {
		log.Printf("Loan listing failed: %v", err)
		return response.InternalServerError(c, "Failed to list returned books")
	}

	return c.JSON(pagination.NewResponse(toBorrowedResponses(loans), params, total))
}

// UpdateShareable toggles a book's shareable flag (owner only)
func (h *BookHandler) UpdateShareable(c *fiber.Ctx) error {
	return h.ownerToggle(c, h.bookService.UpdateShareable, "Shareable status updated")
}

// UpdateArchived toggles a book's archived flag (owner only)
func (h *BookHandler) UpdateArchived(c *fiber.Ctx) error {
	return h.ownerToggle(c, h.bookService.UpdateArchived, "Archived status updated")
}

// Borrow creates an open loan on a book for the authenticated user
func (h *BookHandler) Borrow(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	bookID, err := parseBookID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid book id")
	}

	loanID, err := h.bookService.BorrowBook(c.Context(), bookID, identity)
	if err != nil {
		return h.lendingError(c, err)
	}

	return response.Success(c, "Book borrowed successfully", fiber.Map{
		"loan_id": loanID,
	})
}

// Return marks the authenticated user's open loan as returned
func (h *BookHandler) Return(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	bookID, err := parseBookID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid book id")
	}

	loanID, err := h.bookService.ReturnBook(c.Context(), bookID, identity)
	if err != nil {
		return h.lendingError(c, err)
	}

	return response.Success(c, "Book returned successfully", fiber.Map{
		"loan_id": loanID,
	})
}

// ApproveReturn lets the owner confirm a returned loan
func (h *BookHandler) ApproveReturn(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	bookID, err := parseBookID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid book id")
	}

	loanID, err := h.bookService.ApproveReturn(c.Context(), bookID, identity)
	if err != nil {
		return h.lendingError(c, err)
	}

	return response.Success(c, "Return approved successfully", fiber.Map{
		"loan_id": loanID,
	})
}

// ownerToggle shares the flow of the two flag toggles
func (h *BookHandler) ownerToggle(
	c *fiber.Ctx,
	op func(ctx context.Context, bookID uint, requester domain.Identity) (uint, error),
	message string,
) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	bookID, err := parseBookID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid book id")
	}

	updatedID, err := op(c.Context(), bookID, identity)
	if err != nil {
		return h.lendingError(c, err)
	}

	return response.Success(c, message, fiber.Map{
		"book_id": updatedID,
	})
}

// lendingError maps lending engine errors to HTTP responses
func (h *BookHandler) lendingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrBookNotFound):
		return response.NotFound(c, "Book not found")
	case errors.Is(err, domain.ErrOperationNotPermitted):
		return response.Forbidden(c, err.Error())
	default:
		log.Printf("Lending operation failed: %v", err)
		return response.InternalServerError(c, "Operation failed")
	}
}

func parseBookID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func toBookResponses(books []*models.Book) []*models.BookResponse {
	out := make([]*models.BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, b.ToResponse())
	}
	return out
}

func toBorrowedResponses(loans []*models.Loan) []*models.BorrowedBookResponse {
	out := make([]*models.BorrowedBookResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, l.ToBorrowedResponse())
	}
	return out
}
