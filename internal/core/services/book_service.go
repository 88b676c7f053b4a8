package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"booknet/internal/adapters/persistence/models"
	"booknet/internal/adapters/persistence/repositories"
	"booknet/internal/core/domain"

	"gorm.io/gorm"
)

// BookService is the lending engine: it owns the borrow/return state
// machine and the ownership and availability checks over book records.
// Every entry point receives an already-authenticated identity; no
// credential verification happens here.
type BookService struct {
	bookRepo repositories.BookRepository
	loanRepo repositories.LoanRepository
}

// NewBookService creates a new book service
func NewBookService(bookRepo repositories.BookRepository, loanRepo repositories.LoanRepository) *BookService {
	return &BookService{
		bookRepo: bookRepo,
		loanRepo: loanRepo,
	}
}

// CreateBookInput represents book creation input
type CreateBookInput struct {
	Title      string
	AuthorName string
	ISBN       string
	Synopsis   string
	Shareable  bool
}

// CreateBook adds a book owned by the requester. Books are never created
// archived.
func (s *BookService) CreateBook(ctx context.Context, input *CreateBookInput, requester domain.Identity) (uint, error) {
	book := &models.Book{
		Title:      input.Title,
		AuthorName: input.AuthorName,
		ISBN:       input.ISBN,
		Synopsis:   input.Synopsis,
		Shareable:  input.Shareable,
		Archived:   false,
		OwnerID:    requester.UserID,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return 0, err
	}

	return book.ID, nil
}

// GetBook gets a book by ID
func (s *BookService) GetBook(ctx context.Context, bookID uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// ListDisplayable lists books the requester can discover and borrow
func (s *BookService) ListDisplayable(ctx context.Context, requester domain.Identity, offset, limit int) ([]*models.Book, int64, error) {
	return s.bookRepo.ListDisplayable(ctx, requester.UserID, offset, limit)
}

// ListOwned lists books owned by the requester
func (s *BookService) ListOwned(ctx context.Context, requester domain.Identity, offset, limit int) ([]*models.Book, int64, error) {
	return s.bookRepo.ListByOwner(ctx, requester.UserID, offset, limit)
}

// ListBorrowed lists the requester's open loans
func (s *BookService) ListBorrowed(ctx context.Context, requester domain.Identity, offset, limit int) ([]*models.Loan, int64, error) {
	return s.loanRepo.ListBorrowedByUser(ctx, requester.UserID, offset, limit)
}

// ListReturned lists returned loans on the requester's books
func (s *BookService) ListReturned(ctx context.Context, requester domain.Identity, offset, limit int) ([]*models.Loan, int64, error) {
	return s.loanRepo.ListReturnedByOwner(ctx, requester.UserID, offset, limit)
}

// BorrowBook creates an open loan on a book. Preconditions are checked in
// order and the first violation wins; the store-level unique open-loan
// index catches the race two concurrent borrowers would otherwise win
// together.
func (s *BookService) BorrowBook(ctx context.Context, bookID uint, requester domain.Identity) (uint, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return 0, err
	}

	if book.Archived || !book.Shareable {
		return 0, fmt.Errorf("%w: the requested book cannot be borrowed since it is archived or not shareable", domain.ErrOperationNotPermitted)
	}

	if book.OwnerID == requester.UserID {
		return 0, fmt.Errorf("%w: you cannot borrow your own book", domain.ErrOperationNotPermitted)
	}

	_, err = s.loanRepo.GetOpenByBookAndUser(ctx, bookID, requester.UserID)
	if err == nil {
		return 0, fmt.Errorf("%w: you already borrowed this book", domain.ErrOperationNotPermitted)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	loan := &models.Loan{
		BookID:     bookID,
		UserID:     requester.UserID,
		OpenBookID: &bookID,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("%w: the requested book is already borrowed", domain.ErrOperationNotPermitted)
		}
		return 0, err
	}

	log.Printf("Book %d borrowed by user %d (loan %d)", bookID, requester.UserID, loan.ID)
	return loan.ID, nil
}

// ReturnBook marks the requester's open loan on the book as returned.
// The loan stays in the owner's returned view until the owner approves.
func (s *BookService) ReturnBook(ctx context.Context, bookID uint, requester domain.Identity) (uint, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return 0, err
	}

	if book.Archived || !book.Shareable {
		return 0, fmt.Errorf("%w: the requested book cannot be returned since it is archived or not shareable", domain.ErrOperationNotPermitted)
	}

	if book.OwnerID == requester.UserID {
		return 0, fmt.Errorf("%w: you cannot borrow or return your own book", domain.ErrOperationNotPermitted)
	}

	loan, err := s.loanRepo.GetOpenByBookAndUser(ctx, bookID, requester.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: you did not borrow this book", domain.ErrOperationNotPermitted)
		}
		return 0, err
	}

	loan.Returned = true
	loan.OpenBookID = nil
	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return 0, err
	}

	return loan.ID, nil
}

// ApproveReturn lets the owner confirm a returned loan, fully closing it
func (s *BookService) ApproveReturn(ctx context.Context, bookID uint, requester domain.Identity) (uint, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return 0, err
	}

	if book.OwnerID != requester.UserID {
		return 0, fmt.Errorf("%w: you cannot approve the return of a book you do not own", domain.ErrOperationNotPermitted)
	}

	loan, err := s.loanRepo.GetReturnedUnapprovedByBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: the book is not returned yet", domain.ErrOperationNotPermitted)
		}
		return 0, err
	}

	loan.ReturnApproved = true
	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return 0, err
	}

	return loan.ID, nil
}

// UpdateShareable toggles the shareable flag; owner only
func (s *BookService) UpdateShareable(ctx context.Context, bookID uint, requester domain.Identity) (uint, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return 0, err
	}

	if book.OwnerID != requester.UserID {
		return 0, fmt.Errorf("%w: you cannot update the shareable status of a book you do not own", domain.ErrOperationNotPermitted)
	}

	book.Shareable = !book.Shareable
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return 0, err
	}

	return book.ID, nil
}

// UpdateArchived toggles the archived flag; owner only
func (s *BookService) UpdateArchived(ctx context.Context, bookID uint, requester domain.Identity) (uint, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return 0, err
	}

	if book.OwnerID != requester.UserID {
		return 0, fmt.Errorf("%w: you cannot update the archived status of a book you do not own", domain.ErrOperationNotPermitted)
	}

	book.Archived = !book.Archived
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return 0, err
	}

	return book.ID, nil
}
