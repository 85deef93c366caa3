package app

import (
	"context"
	"strings"

	"hotel_business/internal/domain"
)

// QueryService serves the read side: catalog listings and searches.
// Reads hit the store directly every time; there is no caching layer, so
// results always reflect current persisted state.
type QueryService struct {
	store domain.Store
}

func NewQueryService(store domain.Store) *QueryService {
	return &QueryService{store: store}
}

func (s *QueryService) Guests(ctx context.Context, q domain.GuestQuery) ([]domain.GuestView, error) {
	q.Search = strings.ToLower(strings.TrimSpace(q.Search))
	switch q.Sort {
	case domain.GuestSortDefault, domain.GuestSortNameAsc, domain.GuestSortNameDesc,
		domain.GuestSortDiscountDesc, domain.GuestSortBirthDateAsc:
	default:
		q.Sort = domain.GuestSortDefault
	}
	return s.store.ListGuests(ctx, q)
}

func (s *QueryService) Rooms(ctx context.Context, q domain.RoomQuery) (domain.RoomsPage, error) {
	return s.store.ListRooms(ctx, q)
}

func (s *QueryService) Services(ctx context.Context, q domain.ServiceQuery) (domain.ServicesPage, error) {
	q.Search = strings.ToLower(strings.TrimSpace(q.Search))
	return s.store.ListServices(ctx, q)
}

// PublicServices is the unauthenticated service list: active offerings only.
func (s *QueryService) PublicServices(ctx context.Context) ([]domain.Service, error) {
	page, err := s.store.ListServices(ctx, domain.ServiceQuery{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// GuestForAccount resolves the guest profile behind an account, or nil
// when the account has none (staff accounts).
func (s *QueryService) GuestForAccount(ctx context.Context, accountID int64) (*domain.Guest, error) {
	g, err := s.store.GuestByAccount(ctx, accountID)
	if err != nil {
		if _, ok := domain.AsNotFound(err); ok {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// ServiceQuote prices a service for the guest linked to accountID.
// A missing guest profile prices as discount 0.
func (s *QueryService) ServiceQuote(ctx context.Context, serviceID int64, accountID *int64) (domain.PriceQuote, error) {
	svc, err := s.store.ServiceByID(ctx, serviceID)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	var guest *domain.Guest
	if accountID != nil {
		g, err := s.store.GuestByAccount(ctx, *accountID)
		if err == nil {
			guest = &g
		} else if _, ok := domain.AsNotFound(err); !ok {
			return domain.PriceQuote{}, err
		}
	}
	return domain.Quote(svc.Price, guest), nil
}
