package state

import (
	"fmt"

	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrUnknownSeat         = types.NewError(types.InvalidReference, "seat number out of range")
	ErrAlreadySeated       = types.NewError(types.InvalidState, "delegate already holds a seat")
	ErrInsufficientSupport = types.NewError(types.PreconditionUnmet, "insufficient support")
)

// Seat returns seat idx. A seat nobody ever claimed has a zero delegate.
func (s *State) Seat(idx uint64) (*types.Seat, error) {
	seat := &types.Seat{Index: idx}
	_, err := s.getJSON(fmt.Sprintf(KeySeat, idx), seat)
	if err != nil {
		return nil, err
	}
	return seat, nil
}

func (s *State) setSeat(seat *types.Seat) error {
	return s.setJSON(fmt.Sprintf(KeySeat, seat.Index), seat)
}

func (s *State) Seats() ([]types.Seat, error) {
	params, err := s.Params()
	if err != nil {
		return nil, err
	}
	seats := make([]types.Seat, 0, params.SeatCount)
	for i := uint64(0); i < params.SeatCount; i++ {
		seat, err := s.Seat(i)
		if err != nil {
			return nil, err
		}
		seats = append(seats, *seat)
	}
	return seats, nil
}

// ClaimSeat seats the caller. Taking an occupied seat needs strictly more
// appointments than the occupant has; a vacated seat is free for anyone.
func (s *State) ClaimSeat(caller common.Address, idx uint64) error {
	params, err := s.Params()
	if err != nil {
		return err
	}
	if idx >= params.SeatCount {
		return ErrUnknownSeat
	}
	m, err := s.activeMember(caller)
	if err != nil {
		return err
	}
	if m == nil || m.Role != types.RoleDelegate {
		return ErrCallerNotDelegate
	}
	if m.Seated {
		return ErrAlreadySeated
	}
	seat, err := s.Seat(idx)
	if err != nil {
		return err
	}
	var previous common.Address
	switch {
	case seat.Delegate == (common.Address{}):
		if m.AppointCount() == 0 {
			return ErrInsufficientSupport
		}
	case seat.Vacant:
	default:
		occ, err := s.activeMember(seat.Delegate)
		if err != nil {
			return err
		}
		if occ != nil {
			if m.AppointCount() <= occ.AppointCount() {
				return ErrInsufficientSupport
			}
			occ.Seated = false
			if err = s.setMember(occ); err != nil {
				return err
			}
		}
		previous = seat.Delegate
	}
	seat.Delegate = caller
	seat.Vacant = false
	if err = s.setSeat(seat); err != nil {
		return err
	}
	m.Seated = true
	m.Seat = idx
	if err = s.setMember(m); err != nil {
		return err
	}
	ev := &types.EventSeat{Seat: idx, Delegate: caller.Hex()}
	if previous != (common.Address{}) {
		ev.Previous = previous.Hex()
	}
	s.emit(types.EncodeEventSeat(ev))
	return s.refreshOpenTallies()
}
