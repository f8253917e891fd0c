package execution

import (
	"fmt"

	"batrun/internal/config"
	"batrun/internal/domain"
)

// Scheduler orders the (unit, device) pairs of a run
type Scheduler interface {
	Plan(units []domain.TestUnit, devices []domain.Device) []domain.Pair
}

// NewScheduler returns the scheduler for an execution order
func NewScheduler(order string) (Scheduler, error) {
	switch order {
	case config.OrderDeviceMajor:
		return NewDeviceMajorScheduler(), nil
	case config.OrderUnitMajor:
		return NewUnitMajorScheduler(), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidOrder, order)
	}
}

// DeviceMajorScheduler runs every unit on a device before moving to the next device
type DeviceMajorScheduler struct{}

// NewDeviceMajorScheduler creates a new DeviceMajorScheduler
func NewDeviceMajorScheduler() *DeviceMajorScheduler {
	return &DeviceMajorScheduler{}
}

// Plan returns the pairs ordered by device, then by unit
func (s *DeviceMajorScheduler) Plan(units []domain.TestUnit, devices []domain.Device) []domain.Pair {
	pairs := make([]domain.Pair, 0, len(units)*len(devices))
	for _, device := range devices {
		for _, unit := range units {
			pairs = append(pairs, domain.Pair{Unit: unit, Device: device})
		}
	}
	return pairs
}

// UnitMajorScheduler runs a unit on every device before moving to the next unit
type UnitMajorScheduler struct{}

// NewUnitMajorScheduler creates a new UnitMajorScheduler
func NewUnitMajorScheduler() *UnitMajorScheduler {
	return &UnitMajorScheduler{}
}

// Plan returns the pairs ordered by unit, then by device
func (s *UnitMajorScheduler) Plan(units []domain.TestUnit, devices []domain.Device) []domain.Pair {
	pairs := make([]domain.Pair, 0, len(units)*len(devices))
	for _, unit := range units {
		for _, device := range devices {
			pairs = append(pairs, domain.Pair{Unit: unit, Device: device})
		}
	}
	return pairs
}
