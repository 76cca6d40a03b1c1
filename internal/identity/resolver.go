package identity

import (
	"context"
	"errors"

	"church-service/internal/model"
)

// ErrNotFound is returned when no user matches the lookup key. It is a normal
// outcome; handlers translate it into an HTTP 404 (or 401 on the login path).
var ErrNotFound = errors.New("identity not found")

// Store is the read-only persistence boundary for identity resolution. Every
// lookup returns at most one record or ErrNotFound.
type Store interface {
	UserByID(ctx context.Context, id uint) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	ChurchByID(ctx context.Context, id uint) (*model.Church, error)
	MemberByUserID(ctx context.Context, userID uint) (*model.Member, error)
}

// Resolver assembles the identity view of a user: the user row joined with its
// church and member profile, either of which may be absent.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// ByID resolves the identity for a user id.
func (r *Resolver) ByID(ctx context.Context, id uint) (*model.Identity, error) {
	user, err := r.store.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.assemble(ctx, user)
}

// ByEmail resolves the identity for an email address. This is the
// pre-authentication path: the password hash is readable on the returned user
// for credential verification but is never serialized.
func (r *Resolver) ByEmail(ctx context.Context, email string) (*model.Identity, error) {
	user, err := r.store.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return r.assemble(ctx, user)
}

// assemble attaches the optional church and member records. A missing relation
// leaves the field nil rather than pointing at a zero-valued record.
func (r *Resolver) assemble(ctx context.Context, user *model.User) (*model.Identity, error) {
	ident := &model.Identity{User: *user}

	if user.ChurchID != nil {
		church, err := r.store.ChurchByID(ctx, *user.ChurchID)
		switch {
		case err == nil:
			ident.Church = church
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}

	member, err := r.store.MemberByUserID(ctx, user.ID)
	switch {
	case err == nil:
		ident.Member = member
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	return ident, nil
}
