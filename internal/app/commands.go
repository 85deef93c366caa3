package app

import (
	"context"
	"fmt"
	"time"

	"hotel_business/internal/domain"
)

// StaffService carries the privileged write workflows: service assignment,
// booking, reservation status transitions and discount changes. Each
// workflow is one transaction.
type StaffService struct {
	store domain.Store
}

func NewStaffService(store domain.Store) *StaffService {
	return &StaffService{store: store}
}

// AssignService links one service occurrence to a reservation. Lookup
// failures are reported per entity; the reservation must belong to the
// named guest.
func (s *StaffService) AssignService(ctx context.Context, guestID, reservationID, serviceID int64, quantity int, providedOn time.Time) (domain.ServiceProvision, error) {
	if quantity <= 0 {
		quantity = 1
	}
	var provision domain.ServiceProvision
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		guest, err := tx.GuestByID(ctx, guestID)
		if err != nil {
			return err
		}
		res, err := tx.ReservationByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.GuestID != guest.ID {
			verr := domain.NewValidationError()
			verr.Add("reservation_id", "reservation does not belong to this guest")
			return verr
		}
		svc, err := tx.ServiceByID(ctx, serviceID)
		if err != nil {
			return err
		}
		provision = domain.ServiceProvision{
			ReservationID: res.ID,
			ServiceID:     svc.ID,
			Quantity:      quantity,
			ProvidedOn:    providedOn,
		}
		return tx.CreateProvision(ctx, &provision)
	})
	if err != nil {
		return domain.ServiceProvision{}, err
	}
	return provision, nil
}

// Book creates an active reservation for a guest on a room. Date order is
// validated in the form layer; existence of both ends is checked here.
func (s *StaffService) Book(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		if _, err := tx.GuestByID(ctx, r.GuestID); err != nil {
			return err
		}
		r.Status = domain.ReservationActive
		return tx.CreateReservation(ctx, &r)
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return r, nil
}

// ChangeReservationStatus moves a reservation along the allowed
// transitions. Completed reservations stay on record; nothing is deleted.
func (s *StaffService) ChangeReservationStatus(ctx context.Context, id int64, next domain.ReservationStatus) error {
	return s.store.WithinTx(ctx, func(tx domain.Store) error {
		res, err := tx.ReservationByID(ctx, id)
		if err != nil {
			return err
		}
		if !res.Status.CanTransitionTo(next) {
			verr := domain.NewValidationError()
			verr.Add("status", fmt.Sprintf("cannot change %s reservation to %s", res.Status, next))
			return verr
		}
		return tx.UpdateReservationStatus(ctx, id, next)
	})
}

// SetDiscount updates a guest's discount fraction. Only staff reach this
// path; the guest never mutates their own discount.
func (s *StaffService) SetDiscount(ctx context.Context, guestID int64, discount float64) error {
	if discount < 0 || discount >= 1 {
		verr := domain.NewValidationError()
		verr.Add("discount", "must be a fraction in [0,1)")
		return verr
	}
	return s.store.WithinTx(ctx, func(tx domain.Store) error {
		if _, err := tx.GuestByID(ctx, guestID); err != nil {
			return err
		}
		return tx.SetDiscount(ctx, guestID, discount)
	})
}
