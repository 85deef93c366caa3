package app

import (
	"context"

	"hotel_business/internal/domain"
	"hotel_business/internal/forms"
)

// RegistrationService runs the three-part guest registration: document
// first, then account (role forced to client), then the guest row linking
// both. The three inserts share one transaction; the storage layer's
// unique keys are the final authority when two registrations race.
type RegistrationService struct {
	store domain.Store
	auth  *AuthService
}

func NewRegistrationService(store domain.Store, auth *AuthService) *RegistrationService {
	return &RegistrationService{store: store, auth: auth}
}

// Register validates the combined form, pre-checks uniqueness so that all
// conflicts surface together, and persists atomically. The returned guest
// starts with discount 0.
func (s *RegistrationService) Register(ctx context.Context, f forms.Registration) (domain.Account, domain.Guest, error) {
	verr := domain.NewValidationError()

	// uniqueness pre-checks, aggregated with any field errors the caller
	// already cleared; the insert still has unique keys behind it
	if taken, err := s.store.DocumentTaken(ctx, f.Document.Series, f.Document.Number); err != nil {
		return domain.Account{}, domain.Guest{}, err
	} else if taken {
		verr.Add("document_number", domain.MsgTaken)
	}
	if taken, err := s.store.UsernameTaken(ctx, f.Account.Username); err != nil {
		return domain.Account{}, domain.Guest{}, err
	} else if taken {
		verr.Add("username", domain.MsgTaken)
	}
	if taken, err := s.store.EmailTaken(ctx, f.Account.Email); err != nil {
		return domain.Account{}, domain.Guest{}, err
	} else if taken {
		verr.Add("email", domain.MsgTaken)
	}
	if taken, err := s.store.GuestPhoneTaken(ctx, f.Guest.Phone); err != nil {
		return domain.Account{}, domain.Guest{}, err
	} else if taken {
		verr.Add("guest_phone", domain.MsgTaken)
	}
	if !verr.Empty() {
		return domain.Account{}, domain.Guest{}, verr
	}

	hash, err := s.auth.HashPassword(f.Account.Password)
	if err != nil {
		return domain.Account{}, domain.Guest{}, err
	}

	account := domain.Account{
		Username:     f.Account.Username,
		Email:        f.Account.Email,
		PasswordHash: hash,
		Role:         domain.RoleClient, // forced regardless of input
		BirthDate:    f.Account.BirthDate,
	}
	if f.Account.Phone != "" {
		phone := f.Account.Phone
		account.Phone = &phone
	}
	document := domain.Document{
		Series:   f.Document.Series,
		Number:   f.Document.Number,
		IssuedOn: f.Document.IssuedOn,
		IssuedBy: f.Document.IssuedBy,
	}
	guest := domain.Guest{
		FullName:  f.Guest.FullName,
		Phone:     f.Guest.Phone,
		BirthDate: f.Guest.BirthDate,
		Discount:  0,
	}

	err = s.store.WithinTx(ctx, func(tx domain.Store) error {
		if err := tx.CreateDocument(ctx, &document); err != nil {
			return err
		}
		if err := tx.CreateAccount(ctx, &account); err != nil {
			return err
		}
		guest.AccountID = account.ID
		guest.DocumentID = document.ID
		return tx.CreateGuest(ctx, &guest)
	})
	if err != nil {
		return domain.Account{}, domain.Guest{}, err
	}
	return account, guest, nil
}
