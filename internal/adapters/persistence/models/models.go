package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents the users table
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Firstname     string         `gorm:"size:100;not null" json:"firstname"`
	Lastname      string         `gorm:"size:100;not null" json:"lastname"`
	DateOfBirth   *time.Time     `gorm:"type:date" json:"date_of_birth"`
	Email         string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password      string         `gorm:"size:255;not null" json:"-"`
	Enabled       bool           `gorm:"default:false" json:"enabled"`
	AccountLocked bool           `gorm:"default:false" json:"account_locked"`
	Roles         []Role         `gorm:"many2many:user_roles" json:"roles"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// FullName returns the display name used in token claims and emails
func (u *User) FullName() string {
	return u.Firstname + " " + u.Lastname
}

// RoleNames returns the names of the user's roles
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// UserResponse DTO
type UserResponse struct {
	ID          uint       `json:"id"`
	Firstname   string     `json:"firstname"`
	Lastname    string     `json:"lastname"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Email       string     `json:"email"`
	Enabled     bool       `json:"enabled"`
	Roles       []string   `json:"roles"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Firstname:   u.Firstname,
		Lastname:    u.Lastname,
		DateOfBirth: u.DateOfBirth,
		Email:       u.Email,
		Enabled:     u.Enabled,
		Roles:       u.RoleNames(),
		CreatedAt:   u.CreatedAt,
	}
}

// Role represents the roles table
type Role struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Role) TableName() string {
	return "roles"
}

// Role names
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// ActivationToken represents the activation_tokens table.
// A token is consumable only before ExpiresAt and only while ValidatedAt
// is unset. Multiple outstanding tokens per user are tolerated.
type ActivationToken struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Code        string     `gorm:"uniqueIndex;size:20;not null" json:"-"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	ValidatedAt *time.Time `json:"validated_at"`
	User        User       `gorm:"foreignKey:UserID" json:"-"`
}

func (ActivationToken) TableName() string {
	return "activation_tokens"
}

func (t *ActivationToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *ActivationToken) IsValidated() bool {
	return t.ValidatedAt != nil
}

// ============================================================
// Catalog & Lending Tables
// ============================================================

// Book represents the books table. Ownership is immutable after creation.
type Book struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Title      string         `gorm:"size:200;not null" json:"title"`
	AuthorName string         `gorm:"size:200;not null" json:"author_name"`
	ISBN       string         `gorm:"size:20" json:"isbn"`
	Synopsis   string         `gorm:"type:text" json:"synopsis"`
	Shareable  bool           `gorm:"default:false" json:"shareable"`
	Archived   bool           `gorm:"default:false" json:"archived"`
	OwnerID    uint           `gorm:"index;not null" json:"owner_id"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// BookResponse DTO
type BookResponse struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
	ISBN       string `json:"isbn,omitempty"`
	Synopsis   string `json:"synopsis,omitempty"`
	Shareable  bool   `json:"shareable"`
	Archived   bool   `json:"archived"`
	Owner      string `json:"owner,omitempty"`
}

func (b *Book) ToResponse() *BookResponse {
	resp := &BookResponse{
		ID:         b.ID,
		Title:      b.Title,
		AuthorName: b.AuthorName,
		ISBN:       b.ISBN,
		Synopsis:   b.Synopsis,
		Shareable:  b.Shareable,
		Archived:   b.Archived,
	}
	if b.Owner != nil {
		resp.Owner = b.Owner.FullName()
	}
	return resp
}

// Loan represents the loans table (one borrow transaction).
//
// OpenBookID carries the book id while the loan is open and is set to NULL
// once the book is returned. The unique index on it is what enforces "at
// most one open loan per book" at the storage boundary: MySQL ignores NULLs
// in unique indexes, so closed loans never collide while a second concurrent
// borrow of the same book fails with a duplicate-key error.
type Loan struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	BookID         uint      `gorm:"index;not null" json:"book_id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	Returned       bool      `gorm:"default:false" json:"returned"`
	ReturnApproved bool      `gorm:"default:false" json:"return_approved"`
	OpenBookID     *uint     `gorm:"uniqueIndex" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Book *Book `gorm:"foreignKey:BookID" json:"-"`
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Loan) TableName() string {
	return "loans"
}

// BorrowedBookResponse DTO for the borrowed/returned listing views
type BorrowedBookResponse struct {
	LoanID         uint   `json:"loan_id"`
	BookID         uint   `json:"book_id"`
	Title          string `json:"title"`
	AuthorName     string `json:"author_name"`
	ISBN           string `json:"isbn,omitempty"`
	Returned       bool   `json:"returned"`
	ReturnApproved bool   `json:"return_approved"`
}

func (l *Loan) ToBorrowedResponse() *BorrowedBookResponse {
	resp := &BorrowedBookResponse{
		LoanID:         l.ID,
		BookID:         l.BookID,
		Returned:       l.Returned,
		ReturnApproved: l.ReturnApproved,
	}
	if l.Book != nil {
		resp.Title = l.Book.Title
		resp.AuthorName = l.Book.AuthorName
		resp.ISBN = l.Book.ISBN
	}
	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates/updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Role{},
		&User{},
		&ActivationToken{},
		&Book{},
		&Loan{},
	)
}
