package setup

import (
	"context"
	"errors"
	"sync"
	"testing"

	"church-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memoryStore implements Store with the same contract as the Postgres store:
// the initialized re-check and both inserts happen under one lock, and a
// failure persists nothing.
type memoryStore struct {
	mu       sync.Mutex
	churches []model.Church
	users    []model.User
	nextID   uint

	failCreate error // injected fault for the create path
}

func (m *memoryStore) SuperAdminCount(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.superAdminCountLocked(), nil
}

func (m *memoryStore) superAdminCountLocked() int64 {
	var n int64
	for _, u := range m.users {
		if u.Role == model.RoleSuperAdmin {
			n++
		}
	}
	return n
}

func (m *memoryStore) CreateChurchWithAdmin(ctx context.Context, church *model.Church, admin *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.superAdminCountLocked() > 0 {
		return ErrAlreadyInitialized
	}

	if m.failCreate != nil {
		return m.failCreate
	}

	m.nextID++
	church.ID = m.nextID
	m.churches = append(m.churches, *church)

	m.nextID++
	admin.ID = m.nextID
	admin.ChurchID = &church.ID
	m.users = append(m.users, *admin)
	return nil
}

func validRequest() *InitializeRequest {
	return &InitializeRequest{
		Email:      "pastor@igreja.org",
		Password:   "secret123",
		FirstName:  "João",
		LastName:   "Silva",
		ChurchName: "Igreja Batista Central",
	}
}

func TestInitializeCreatesChurchAndSuperAdmin(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store)
	ctx := context.Background()

	initialized, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, initialized)

	user, church, err := svc.Initialize(ctx, validRequest())
	require.NoError(t, err)

	assert.Equal(t, model.RoleSuperAdmin, user.Role)
	assert.Equal(t, "pastor@igreja.org", user.Email)
	require.NotNil(t, user.ChurchID)
	assert.Equal(t, church.ID, *user.ChurchID)

	assert.Equal(t, "Igreja Batista Central", church.Name)
	assert.Equal(t, "igreja-batista-central", church.Slug)
	assert.True(t, church.Active)

	// Credential is stored as a verifiable hash, never the plaintext
	assert.NotEqual(t, "secret123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")))

	initialized, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, initialized)
}

func TestInitializeTwiceFails(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store)
	ctx := context.Background()

	_, _, err := svc.Initialize(ctx, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Email = "second@igreja.org"
	_, _, err = svc.Initialize(ctx, req)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	assert.Len(t, store.churches, 1)
	assert.Len(t, store.users, 1)
}

func TestInitializeConcurrentSingleWinner(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store)
	ctx := context.Background()

	reqs := []*InitializeRequest{validRequest(), validRequest()}
	reqs[1].Email = "other@igreja.org"
	reqs[1].ChurchName = "Comunidade da Graça"

	errs := make([]error, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req *InitializeRequest) {
			defer wg.Done()
			_, _, errs[i] = svc.Initialize(ctx, req)
		}(i, req)
	}
	wg.Wait()

	var successes, rejections int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrAlreadyInitialized):
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, rejections)
	assert.Len(t, store.churches, 1)
	assert.Len(t, store.users, 1)
}

func TestInitializeFailureLeavesNoRecords(t *testing.T) {
	store := &memoryStore{failCreate: errors.New("user insert failed")}
	svc := NewService(store)
	ctx := context.Background()

	_, _, err := svc.Initialize(ctx, validRequest())
	require.Error(t, err)

	assert.Empty(t, store.churches)
	assert.Empty(t, store.users)

	initialized, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, initialized)
}

func TestInitializeValidation(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*InitializeRequest)
		wantField string
	}{
		{"short password", func(r *InitializeRequest) { r.Password = "five5" }, "password"},
		{"malformed email", func(r *InitializeRequest) { r.Email = "not-an-email" }, "email"},
		{"missing email", func(r *InitializeRequest) { r.Email = "" }, "email"},
		{"missing first name", func(r *InitializeRequest) { r.FirstName = "" }, "first_name"},
		{"missing last name", func(r *InitializeRequest) { r.LastName = "" }, "last_name"},
		{"missing church name", func(r *InitializeRequest) { r.ChurchName = "" }, "church_name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memoryStore{}
			svc := NewService(store)

			req := validRequest()
			tc.mutate(req)

			_, _, err := svc.Initialize(context.Background(), req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)

			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tc.wantField)

			// Rejected requests never touch the store
			assert.Empty(t, store.churches)
			assert.Empty(t, store.users)
		})
	}
}
