package repository

import (
	"github.com/inkbase/inkbase/internal/models"
	"github.com/inkbase/inkbase/pkg/errors"
)

// authorize is the single ownership/role predicate applied by every
// repository: a record may be mutated by its owner or by an admin
func authorize(ownerID, requesterID, role string) error {
	if requesterID == ownerID || role == models.RoleAdmin {
		return nil
	}
	return errors.ErrForbidden
}
