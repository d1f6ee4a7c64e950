package security

import (
	"github.com/cockroachdb/errors"

	"github.com/offerlookup/offer-backend/models"
)

type EnforceSecurity interface {
	Permission(permission models.Permission) error
}

type EnforceSecurityImpl struct {
	Credentials models.Credentials
}

func (e *EnforceSecurityImpl) Permission(permission models.Permission) error {
	if !e.Credentials.Role.HasPermission(permission) {
		return errors.Wrapf(models.ForbiddenError, "role %s is missing permission %s", e.Credentials.Role, permission)
	}
	return nil
}
