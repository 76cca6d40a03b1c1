package identity

import (
	"context"
	"encoding/json"
	"testing"

	"church-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore implements Store over in-memory maps.
type fakeStore struct {
	users    map[uint]model.User
	churches map[uint]model.Church
	members  map[uint]model.Member // keyed by user id
}

func (f *fakeStore) UserByID(ctx context.Context, id uint) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, ErrNotFound
}

func (f *fakeStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) ChurchByID(ctx context.Context, id uint) (*model.Church, error) {
	if ch, ok := f.churches[id]; ok {
		return &ch, nil
	}
	return nil, ErrNotFound
}

func (f *fakeStore) MemberByUserID(ctx context.Context, userID uint) (*model.Member, error) {
	if m, ok := f.members[userID]; ok {
		return &m, nil
	}
	return nil, ErrNotFound
}

func uintPtr(v uint) *uint { return &v }

func TestByIDAssemblesChurchAndMember(t *testing.T) {
	store := &fakeStore{
		users: map[uint]model.User{
			1: {ID: 1, Email: "pastor@igreja.org", Role: model.RoleSuperAdmin, ChurchID: uintPtr(10)},
		},
		churches: map[uint]model.Church{
			10: {ID: 10, Name: "Igreja Batista Central", Slug: "igreja-batista-central"},
		},
		members: map[uint]model.Member{
			1: {ID: 100, ChurchID: 10, UserID: uintPtr(1), FirstName: "João", Status: model.MemberStatusActive},
		},
	}
	r := NewResolver(store)

	ident, err := r.ByID(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, uint(1), ident.ID)
	assert.Equal(t, "pastor@igreja.org", ident.Email)
	require.NotNil(t, ident.Church)
	assert.Equal(t, "igreja-batista-central", ident.Church.Slug)
	require.NotNil(t, ident.Member)
	assert.Equal(t, uint(100), ident.Member.ID)
}

func TestByEmailSharesAssembly(t *testing.T) {
	store := &fakeStore{
		users: map[uint]model.User{
			2: {ID: 2, Email: "admin@igreja.org", Password: "$2a$10$hash", ChurchID: uintPtr(10)},
		},
		churches: map[uint]model.Church{
			10: {ID: 10, Name: "Igreja Batista Central"},
		},
		members: map[uint]model.Member{},
	}
	r := NewResolver(store)

	ident, err := r.ByEmail(context.Background(), "admin@igreja.org")
	require.NoError(t, err)

	assert.Equal(t, uint(2), ident.ID)
	require.NotNil(t, ident.Church)
	assert.Nil(t, ident.Member)

	// The hash is readable for credential verification but never serialized
	assert.Equal(t, "$2a$10$hash", ident.Password)
	raw, err := json.Marshal(ident)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "$2a$10$hash")
}

func TestAbsentRelationsAreOmitted(t *testing.T) {
	store := &fakeStore{
		users: map[uint]model.User{
			3: {ID: 3, Email: "orphan@igreja.org"},
		},
		churches: map[uint]model.Church{},
		members:  map[uint]model.Member{},
	}
	r := NewResolver(store)

	ident, err := r.ByID(context.Background(), 3)
	require.NoError(t, err)

	assert.Nil(t, ident.Church)
	assert.Nil(t, ident.Member)

	// Absent relations disappear from the JSON entirely; they are not
	// rendered as empty objects
	raw, err := json.Marshal(ident)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "church")
	assert.NotContains(t, decoded, "member")
	assert.NotContains(t, decoded, "password")
}

func TestDanglingChurchReferenceCollapses(t *testing.T) {
	store := &fakeStore{
		users: map[uint]model.User{
			4: {ID: 4, Email: "stale@igreja.org", ChurchID: uintPtr(99)},
		},
		churches: map[uint]model.Church{},
		members:  map[uint]model.Member{},
	}
	r := NewResolver(store)

	ident, err := r.ByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Nil(t, ident.Church)
}

func TestNotFound(t *testing.T) {
	store := &fakeStore{users: map[uint]model.User{}}
	r := NewResolver(store)

	_, err := r.ByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.ByEmail(context.Background(), "nobody@igreja.org")
	assert.ErrorIs(t, err, ErrNotFound)
}
