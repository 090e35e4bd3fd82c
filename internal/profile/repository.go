package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/docstore"
	"github.com/bapti-church/bapti-web/internal/role"
)

// Collection holds one profile document per identity, keyed by uid.
const Collection = "users"

type repository struct {
	store docstore.Store
}

func (r repository) get(ctx context.Context, uid string) (*account.Profile, error) {
	rec, err := r.store.Get(ctx, Collection, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrProfileNotFound
	}

	if err != nil {
		return nil, storeError(err)
	}

	return fromRecord(uid, rec)
}

func (r repository) create(ctx context.Context, p *account.Profile) error {
	return storeError(r.store.Set(ctx, Collection, p.UID, toRecord(p)))
}

func (r repository) update(ctx context.Context, uid string, fields docstore.Record) error {
	err := r.store.Update(ctx, Collection, uid, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrProfileNotFound
	}

	return storeError(err)
}

func (r repository) list(ctx context.Context) ([]*account.Profile, error) {
	docs, err := r.store.List(ctx, Collection, docstore.OrderBy("createdAt", true))
	if err != nil {
		return nil, storeError(err)
	}

	out := make([]*account.Profile, 0, len(docs))

	for _, doc := range docs {
		p, err := fromRecord(doc.ID, doc.Data)
		if err != nil {
			return nil, err
		}

		out = append(out, p)
	}

	return out, nil
}

func toRecord(p *account.Profile) docstore.Record {
	rec := docstore.Record{
		"uid":           p.UID,
		"email":         p.Email,
		"displayName":   p.DisplayName,
		"photoURL":      p.PhotoURL,
		"role":          string(p.Role),
		"createdAt":     docstore.Millis(p.CreatedAt),
		"lastLoginAt":   docstore.Millis(p.LastLoginAt),
		"loginCount":    p.LoginCount,
		"provider":      p.Provider,
		"emailVerified": p.EmailVerified,
		"phoneNumber":   p.PhoneNumber,
	}

	if !p.LastUpdatedAt.IsZero() {
		rec["lastUpdatedAt"] = docstore.Millis(p.LastUpdatedAt)
		rec["updatedBy"] = p.UpdatedBy
	}

	return rec
}

func fromRecord(uid string, rec docstore.Record) (*account.Profile, error) {
	var p account.Profile
	if err := docstore.Decode(rec, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", uid, err)
	}

	if p.UID == "" {
		p.UID = uid
	}

	// a role is never absent; anything unreadable counts as the lowest role
	if !p.Role.Valid() {
		p.Role = role.Guest
	}

	return &p, nil
}

func storeError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, docstore.ErrPermissionDenied) {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}

	return fmt.Errorf("profile store: %w", err)
}
