package store

import (
	"errors"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

var ErrNoIdentity = errors.New("no user identity")

// LoadIdentity reads the persisted end user; ErrNoIdentity when nobody logged in.
func LoadIdentity(s SessionStore) (*models.UserIdentity, error) {
	userID, ok := s.Get(KeyUserID)
	if !ok {
		return nil, ErrNoIdentity
	}

	identity := &models.UserIdentity{UserID: userID}
	identity.UserToken, _ = s.Get(KeyUserToken)
	identity.Email, _ = s.Get(KeyUserEmail)
	return identity, nil
}

func SaveIdentity(s SessionStore, identity models.UserIdentity) error {
	if identity.UserID == "" {
		return ErrNoIdentity
	}

	if err := s.Set(KeyUserID, identity.UserID); err != nil {
		return err
	}
	if err := s.Set(KeyUserToken, identity.UserToken); err != nil {
		return err
	}
	return s.Set(KeyUserEmail, identity.Email)
}

// ClearIdentity logs the end user out; the provider credential is left alone.
func ClearIdentity(s SessionStore) error {
	return s.Clear(KeyUserID, KeyUserToken, KeyUserEmail)
}
