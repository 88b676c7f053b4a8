package repositories

import (
	"context"

	"booknet/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create creates a new loan
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// Update updates a loan
func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// GetOpenByBookAndUser gets the open loan held by a user on a book
func (r *loanRepository) GetOpenByBookAndUser(ctx context.Context, bookID, userID uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND user_id = ? AND returned = ?", bookID, userID, false).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetReturnedUnapprovedByBook gets the loan on a book awaiting owner approval
func (r *loanRepository) GetReturnedUnapprovedByBook(ctx context.Context, bookID uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND returned = ? AND return_approved = ?", bookID, true, false).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ListBorrowedByUser lists open loans held by a user
func (r *loanRepository) ListBorrowedByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("user_id = ? AND returned = ?", userID, false)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Book").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&loans).Error
	if err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}

// ListReturnedByOwner lists returned loans on books owned by a user
func (r *loanRepository) ListReturnedByOwner(ctx context.Context, ownerID uint, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Loan{}).
		Joins("JOIN books ON books.id = loans.book_id").
		Where("books.owner_id = ? AND loans.returned = ?", ownerID, true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Book").
		Order("loans.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&loans).Error
	if err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}
