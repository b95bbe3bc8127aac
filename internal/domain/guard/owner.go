package guard

import (
	"fmt"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/apperror"
)

// Owned is any resource that belongs to exactly one user.
type Owned interface {
	OwnerID() string
}

// AssertOwner fails closed: a nil resource, an empty id on either side, or a
// mismatch is an authorization error. A typed nil pointer reports an empty
// owner. Call it before any side effect.
func AssertOwner(resource Owned, userID string) error {
	if resource == nil || userID == "" {
		return apperror.ErrAuthorization
	}
	owner := resource.OwnerID()
	if owner == "" || owner != userID {
		return fmt.Errorf("resource owned by another user: %w", apperror.ErrAuthorization)
	}
	return nil
}
