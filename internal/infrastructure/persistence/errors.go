package persistence

import (
	domainerrors "github.com/Haleralex/storehub/internal/domain/errors"
)

// Classify applies the Unit of Work error policy: business errors pass
// through unchanged, anything else becomes an InfrastructureError.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if domainerrors.IsBusiness(err) || domainerrors.IsInfrastructure(err) {
		return err
	}
	return domainerrors.NewInfrastructure(op, err)
}
