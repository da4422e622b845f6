package appointment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

const defaultSlotDuration = time.Hour

type GetSlots struct {
	repo     domain.Repository
	settings Settings
}

func NewGetSlots(repo domain.Repository, settings Settings) *GetSlots {
	return &GetSlots{repo: repo, settings: settings}
}

// Execute marks every grid slot of date as past, booked or available. With
// a service, a slot is booked when the whole service would not fit.
func (uc *GetSlots) Execute(
	ctx context.Context,
	date string,
	serviceID *uint,
) ([]domain.Slot, error) {

	day, err := timezone.ParseDate(uc.settings.Timezone, date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	duration := defaultSlotDuration
	if serviceID != nil {
		svc, err := uc.repo.GetActiveService(ctx, *serviceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, httperr.ErrBusiness("service_not_found")
			}
			return nil, err
		}
		duration = time.Duration(svc.Duration) * time.Minute
	}

	grid := uc.settings.Grid
	busyApps, err := uc.repo.Conflicts(ctx, grid.Span(day, duration), nil)
	if err != nil {
		return nil, err
	}

	busy := make([]domain.Window, 0, len(busyApps))
	for i := range busyApps {
		busy = append(busy, domain.WindowOf(&busyApps[i]))
	}

	return grid.BuildSlots(day, duration, uc.settings.now(), uc.settings.MinAdvance, busy), nil
}
