package account

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage.
// Transactions are serialised on the write lock and their writes are staged
// until fn returns successfully.
type InMemoryRepository struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]User
	emails   map[string]uuid.UUID
	orgs     map[uuid.UUID]Organization
	orgOrder []uuid.UUID
	doctors  map[uuid.UUID]DoctorProfile // keyed by user id
	now      func() time.Time
}

// NewInMemoryRepository creates a new in-memory account repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:   make(map[uuid.UUID]User),
		emails:  make(map[string]uuid.UUID),
		orgs:    make(map[uuid.UUID]Organization),
		doctors: make(map[uuid.UUID]DoctorProfile),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *InMemoryRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[NormalizeEmail(email)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return r.users[id], nil
}

func (r *InMemoryRepository) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryRepository) MarkEmailVerified(ctx context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.emails[NormalizeEmail(email)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	user := r.users[id]
	user.EmailVerified = true
	user.UpdatedAt = r.now()
	r.users[id] = user
	return user, nil
}

func (r *InMemoryRepository) SetUserActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.Active = active
	user.UpdatedAt = r.now()
	r.users[id] = user
	return nil
}

func (r *InMemoryRepository) GetOrganization(ctx context.Context, id uuid.UUID) (Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, ok := r.orgs[id]
	if !ok {
		return Organization{}, ErrOrganizationNotFound
	}
	return org, nil
}

func (r *InMemoryRepository) ListOrganizations(ctx context.Context) ([]Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orgs := make([]Organization, 0, len(r.orgOrder))
	for _, id := range r.orgOrder {
		orgs = append(orgs, r.orgs[id])
	}
	return orgs, nil
}

func (r *InMemoryRepository) SetOrganizationStatus(ctx context.Context, id uuid.UUID, status OrganizationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	org, ok := r.orgs[id]
	if !ok {
		return ErrOrganizationNotFound
	}
	org.Status = status
	r.orgs[id] = org
	return nil
}

func (r *InMemoryRepository) GetDoctorProfileByUserID(ctx context.Context, userID uuid.UUID) (DoctorProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.doctors[userID]
	if !ok {
		return DoctorProfile{}, ErrDoctorProfileNotFound
	}
	return profile, nil
}

func (r *InMemoryRepository) WithTx(ctx context.Context, fn func(tx TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &inMemoryTx{
		repo:    r,
		users:   make(map[uuid.UUID]User),
		emails:  make(map[string]uuid.UUID),
		orgs:    make(map[uuid.UUID]Organization),
		doctors: make(map[uuid.UUID]DoctorProfile),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for id, u := range tx.users {
		r.users[id] = u
	}
	for email, id := range tx.emails {
		r.emails[email] = id
	}
	for _, id := range tx.orgOrder {
		r.orgs[id] = tx.orgs[id]
		r.orgOrder = append(r.orgOrder, id)
	}
	for userID, p := range tx.doctors {
		r.doctors[userID] = p
	}
	return nil
}

// inMemoryTx sees committed state plus its own staged writes. The parent
// repository's write lock is held for its whole lifetime.
type inMemoryTx struct {
	repo     *InMemoryRepository
	users    map[uuid.UUID]User
	emails   map[string]uuid.UUID
	orgs     map[uuid.UUID]Organization
	orgOrder []uuid.UUID
	doctors  map[uuid.UUID]DoctorProfile
}

func (tx *inMemoryTx) CreateOrganization(ctx context.Context, params CreateOrganizationParams) (Organization, error) {
	org := Organization{
		ID:            uuid.New(),
		Name:          OrganizationName(params.AdminFullName),
		AdminFullName: params.AdminFullName,
		Status:        OrganizationActive,
		Type:          params.Type,
		CreatedAt:     tx.repo.now(),
	}
	if org.Type == "" {
		org.Type = OrganizationClinic
	}
	tx.orgs[org.ID] = org
	tx.orgOrder = append(tx.orgOrder, org.ID)
	return org, nil
}

func (tx *inMemoryTx) GetOrganization(ctx context.Context, id uuid.UUID) (Organization, error) {
	if org, ok := tx.orgs[id]; ok {
		return org, nil
	}
	if org, ok := tx.repo.orgs[id]; ok {
		return org, nil
	}
	return Organization{}, ErrOrganizationNotFound
}

func (tx *inMemoryTx) FindDefaultOrganization(ctx context.Context) (Organization, error) {
	var candidates []Organization
	for _, id := range tx.repo.orgOrder {
		candidates = append(candidates, tx.repo.orgs[id])
	}
	for _, id := range tx.orgOrder {
		candidates = append(candidates, tx.orgs[id])
	}
	// Stable keeps insertion order for equal timestamps.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	for _, org := range candidates {
		if org.Status == OrganizationActive {
			return org, nil
		}
	}
	return Organization{}, ErrOrganizationNotFound
}

func (tx *inMemoryTx) GetUserByEmail(ctx context.Context, email string) (User, error) {
	email = NormalizeEmail(email)
	if id, ok := tx.emails[email]; ok {
		return tx.users[id], nil
	}
	if id, ok := tx.repo.emails[email]; ok {
		return tx.repo.users[id], nil
	}
	return User{}, ErrUserNotFound
}

func (tx *inMemoryTx) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	email := NormalizeEmail(params.Email)
	if _, err := tx.GetUserByEmail(ctx, email); err == nil {
		return User{}, ErrEmailExists
	}

	now := tx.repo.now()
	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		TenantID:     params.TenantID,
		Active:       true,
		Profile:      params.Profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	tx.users[user.ID] = user
	tx.emails[email] = user.ID
	return user, nil
}

func (tx *inMemoryTx) CreateDoctorProfile(ctx context.Context, userID, organizationID uuid.UUID) (DoctorProfile, error) {
	if _, err := tx.GetOrganization(ctx, organizationID); err != nil {
		return DoctorProfile{}, err
	}
	profile := DoctorProfile{
		ID:             uuid.New(),
		UserID:         userID,
		OrganizationID: organizationID,
		CreatedAt:      tx.repo.now(),
	}
	tx.doctors[userID] = profile
	return profile, nil
}
