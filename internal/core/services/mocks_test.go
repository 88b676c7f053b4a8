package services_test

import (
	"context"
	"sync"
	"time"

	"booknet/internal/adapters/persistence/models"
	"booknet/internal/config"
	"booknet/internal/core/services"

	"gorm.io/gorm"
)

// In-memory fakes for the repository interfaces. They mirror the store
// semantics the services rely on: gorm.ErrRecordNotFound for misses and
// gorm.ErrDuplicatedKey for unique index collisions.

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   uint
	users map[uint]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.seq++
	user.ID = r.seq
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := u
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakeRoleRepo struct {
	mu    sync.Mutex
	seq   uint
	roles map[string]models.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[string]models.Role)}
}

func (r *fakeRoleRepo) GetByName(_ context.Context, name string) (*models.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := role
	return &out, nil
}

func (r *fakeRoleRepo) Create(_ context.Context, role *models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[role.Name]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.seq++
	role.ID = r.seq
	r.roles[role.Name] = *role
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	seq    uint
	tokens map[uint]models.ActivationToken
	users  *fakeUserRepo
}

func newFakeTokenRepo(users *fakeUserRepo) *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[uint]models.ActivationToken), users: users}
}

func (r *fakeTokenRepo) Create(_ context.Context, token *models.ActivationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.Code == token.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	r.seq++
	token.ID = r.seq
	r.tokens[token.ID] = *token
	return nil
}

func (r *fakeTokenRepo) GetByCode(ctx context.Context, code string) (*models.ActivationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.Code == code {
			out := t
			if user, err := r.users.GetByID(ctx, t.UserID); err == nil {
				out.User = *user
			}
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTokenRepo) Update(_ context.Context, token *models.ActivationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.tokens[token.ID] = *token
	return nil
}

func (r *fakeTokenRepo) DeleteStale(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, t := range r.tokens {
		if t.ValidatedAt != nil || t.ExpiresAt.Before(cutoff) {
			delete(r.tokens, id)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

func (r *fakeTokenRepo) forUser(userID uint) []models.ActivationToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ActivationToken
	for _, t := range r.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

type fakeBookRepo struct {
	mu    sync.Mutex
	seq   uint
	books map[uint]models.Book
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[uint]models.Book)}
}

func (r *fakeBookRepo) Create(_ context.Context, book *models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	book.ID = r.seq
	r.books[book.ID] = *book
	return nil
}

func (r *fakeBookRepo) GetByID(_ context.Context, id uint) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := b
	return &out, nil
}

func (r *fakeBookRepo) Update(_ context.Context, book *models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[book.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.books[book.ID] = *book
	return nil
}

func (r *fakeBookRepo) ListDisplayable(_ context.Context, excludeOwnerID uint, offset, limit int) ([]*models.Book, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.Book
	for _, b := range r.books {
		if b.Shareable && !b.Archived && b.OwnerID != excludeOwnerID {
			out := b
			matched = append(matched, &out)
		}
	}
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (r *fakeBookRepo) ListByOwner(_ context.Context, ownerID uint, offset, limit int) ([]*models.Book, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.Book
	for _, b := range r.books {
		if b.OwnerID == ownerID {
			out := b
			matched = append(matched, &out)
		}
	}
	return page(matched, offset, limit), int64(len(matched)), nil
}

type fakeLoanRepo struct {
	mu    sync.Mutex
	seq   uint
	loans map[uint]models.Loan
	books *fakeBookRepo
}

func newFakeLoanRepo(books *fakeBookRepo) *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[uint]models.Loan), books: books}
}

func (r *fakeLoanRepo) Create(_ context.Context, loan *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if loan.OpenBookID != nil {
		for _, l := range r.loans {
			if l.OpenBookID != nil && *l.OpenBookID == *loan.OpenBookID {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	r.seq++
	loan.ID = r.seq
	r.loans[loan.ID] = *loan
	return nil
}

func (r *fakeLoanRepo) Update(_ context.Context, loan *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[loan.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.loans[loan.ID] = *loan
	return nil
}

func (r *fakeLoanRepo) GetOpenByBookAndUser(_ context.Context, bookID, userID uint) (*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.loans {
		if l.BookID == bookID && l.UserID == userID && !l.Returned {
			out := l
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLoanRepo) GetReturnedUnapprovedByBook(_ context.Context, bookID uint) (*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.loans {
		if l.BookID == bookID && l.Returned && !l.ReturnApproved {
			out := l
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLoanRepo) ListBorrowedByUser(_ context.Context, userID uint, offset, limit int) ([]*models.Loan, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.Loan
	for _, l := range r.loans {
		if l.UserID == userID && !l.Returned {
			out := l
			matched = append(matched, &out)
		}
	}
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (r *fakeLoanRepo) ListReturnedByOwner(ctx context.Context, ownerID uint, offset, limit int) ([]*models.Loan, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.Loan
	for _, l := range r.loans {
		book, err := r.books.GetByID(ctx, l.BookID)
		if err != nil {
			continue
		}
		if book.OwnerID == ownerID && l.Returned {
			out := l
			matched = append(matched, &out)
		}
	}
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (r *fakeLoanRepo) openLoanCount(bookID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, l := range r.loans {
		if l.BookID == bookID && !l.Returned {
			count++
		}
	}
	return count
}

func page[T any](items []*T, offset, limit int) []*T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type sentMail struct {
	To            string
	DisplayName   string
	Template      services.EmailTemplate
	ActivationURL string
	Code          string
	Subject       string
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failErr error
}

func (m *fakeMailer) Send(_ context.Context, to, displayName string, tmpl services.EmailTemplate, activationURL, code, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, sentMail{
		To:            to,
		DisplayName:   displayName,
		Template:      tmpl,
		ActivationURL: activationURL,
		Code:          code,
		Subject:       subject,
	})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) lastSent() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

// testEnv wires the services over the fakes with a USER role seeded
type testEnv struct {
	users  *fakeUserRepo
	roles  *fakeRoleRepo
	tokens *fakeTokenRepo
	books  *fakeBookRepo
	loans  *fakeLoanRepo
	mailer *fakeMailer

	cfg        *config.Config
	activation *services.ActivationService
	auth       *services.AuthService
	bookSvc    *services.BookService
}

func newTestEnv() *testEnv {
	users := newFakeUserRepo()
	roles := newFakeRoleRepo()
	tokens := newFakeTokenRepo(users)
	books := newFakeBookRepo()
	loans := newFakeLoanRepo(books)
	mailer := &fakeMailer{}

	cfg := &config.Config{
		AppMode: "dev",
		Token: config.TokenConfig{
			Secret:     "test-secret",
			TTLMinutes: 60,
		},
		Activation: config.ActivationConfig{
			TTLMinutes: 15,
			CodeLength: 6,
			URL:        "http://localhost:4200/activate-account",
		},
	}

	roles.roles[models.RoleUser] = models.Role{ID: 1, Name: models.RoleUser}

	activation := services.NewActivationService(tokens, users, mailer, cfg)

	return &testEnv{
		users:      users,
		roles:      roles,
		tokens:     tokens,
		books:      books,
		loans:      loans,
		mailer:     mailer,
		cfg:        cfg,
		activation: activation,
		auth:       services.NewAuthService(users, roles, activation, cfg),
		bookSvc:    services.NewBookService(books, loans),
	}
}
