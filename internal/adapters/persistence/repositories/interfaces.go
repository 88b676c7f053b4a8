package repositories

import (
	"context"
	"time"

	"booknet/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RoleRepository defines role repository interface
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*models.Role, error)
	Create(ctx context.Context, role *models.Role) error
}

// ActivationTokenRepository defines activation token repository interface
type ActivationTokenRepository interface {
	Create(ctx context.Context, token *models.ActivationToken) error
	GetByCode(ctx context.Context, code string) (*models.ActivationToken, error)
	Update(ctx context.Context, token *models.ActivationToken) error
	// DeleteStale removes tokens that are validated or expired before the
	// given cutoff. Hygiene only; expiry itself is checked at use time.
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// BookRepository defines book repository interface
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	// ListDisplayable returns shareable, unarchived books not owned by the
	// given user
	ListDisplayable(ctx context.Context, excludeOwnerID uint, offset, limit int) ([]*models.Book, int64, error)
	ListByOwner(ctx context.Context, ownerID uint, offset, limit int) ([]*models.Book, int64, error)
}

// LoanRepository defines loan repository interface
type LoanRepository interface {
	// Create inserts a loan. For open loans the unique index on open_book_id
	// makes a concurrent second borrow of the same book fail with
	// gorm.ErrDuplicatedKey.
	Create(ctx context.Context, loan *models.Loan) error
	Update(ctx context.Context, loan *models.Loan) error
	GetOpenByBookAndUser(ctx context.Context, bookID, userID uint) (*models.Loan, error)
	GetReturnedUnapprovedByBook(ctx context.Context, bookID uint) (*models.Loan, error)
	ListBorrowedByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Loan, int64, error)
	ListReturnedByOwner(ctx context.Context, ownerID uint, offset, limit int) ([]*models.Loan, int64, error)
}
