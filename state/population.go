package state

import (
	"fmt"

	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrNotHuman           = types.NewError(types.PreconditionUnmet, "not a human")
	ErrAlreadyMember      = types.NewError(types.InvalidState, "already a member")
	ErrNotCitizen         = types.NewError(types.PreconditionUnmet, "caller is not a citizen")
	ErrCallerNotDelegate  = types.NewError(types.PreconditionUnmet, "caller is not a delegate")
	ErrNotDelegate        = types.NewError(types.InvalidReference, "not a delegate")
	ErrAlreadyAppointed   = types.NewError(types.InvalidParameter, "delegate already appointed")
	ErrUnknownMember      = types.NewError(types.InvalidReference, "unknown member")
	ErrAlreadyDistrusted  = types.NewError(types.InvalidState, "member already distrusted")
	ErrCannotExpel        = types.NewError(types.PreconditionUnmet, "member is human and trusted")
	ErrPopulationUnderrun = types.NewError(types.InvalidState, "population count underrun")
)

// Member returns the membership record of addr, or nil if it never applied.
func (s *State) Member(addr common.Address) (*types.Member, error) {
	m := new(types.Member)
	found, err := s.getJSON(fmt.Sprintf(KeyMember, addr.Bytes()), m)
	if err != nil || !found {
		return nil, err
	}
	return m, nil
}

func (s *State) setMember(m *types.Member) error {
	return s.setJSON(fmt.Sprintf(KeyMember, m.Address.Bytes()), m)
}

// activeMember is Member restricted to addresses currently holding a role.
func (s *State) activeMember(addr common.Address) (*types.Member, error) {
	m, err := s.Member(addr)
	if err != nil {
		return nil, err
	}
	if m == nil || m.Role == types.RoleNone {
		return nil, nil
	}
	return m, nil
}

func (s *State) Population() (*types.Population, error) {
	pop := new(types.Population)
	_, err := s.getJSON(KeyPopulation, pop)
	if err != nil {
		return nil, err
	}
	return pop, nil
}

func (s *State) setPopulation(pop *types.Population) error {
	return s.setJSON(KeyPopulation, pop)
}

func (s *State) ApplyForCitizenship(caller common.Address) error {
	return s.apply(caller, types.RoleCitizen)
}

func (s *State) ApplyForDelegation(caller common.Address) error {
	return s.apply(caller, types.RoleDelegate)
}

func (s *State) apply(caller common.Address, role types.Role) error {
	human, err := s.IsHuman(caller)
	if err != nil {
		return err
	}
	if !human {
		return ErrNotHuman
	}
	m, err := s.Member(caller)
	if err != nil {
		return err
	}
	if m != nil && m.Role != types.RoleNone {
		return ErrAlreadyMember
	}
	if m == nil {
		m = &types.Member{Address: caller}
	}
	pop, err := s.Population()
	if err != nil {
		return err
	}
	m.Role = role
	m.Seq = pop.NextSeq
	m.Joined = s.Now()
	m.Distrusted = false
	pop.NextSeq++
	if role == types.RoleCitizen {
		pop.Citizens++
	} else {
		pop.Delegates++
	}
	if err = s.setMember(m); err != nil {
		return err
	}
	if err = s.setPopulation(pop); err != nil {
		return err
	}
	s.emit(types.EncodeEventMember(&types.EventMember{
		Address: caller.Hex(),
		Role:    role,
		Action:  types.MemberActionApply,
	}))
	return nil
}

func removeAddress(list []common.Address, addr common.Address) []common.Address {
	for i, a := range list {
		if a == addr {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// AppointDelegate moves the caller's single appointment unit to delegate.
func (s *State) AppointDelegate(caller, delegate common.Address) error {
	m, err := s.activeMember(caller)
	if err != nil {
		return err
	}
	if m == nil || m.Role != types.RoleCitizen {
		return ErrNotCitizen
	}
	d, err := s.activeMember(delegate)
	if err != nil {
		return err
	}
	if d == nil || d.Role != types.RoleDelegate {
		return ErrNotDelegate
	}
	if m.Appointee == delegate {
		return ErrAlreadyAppointed
	}
	previous := m.Appointee
	if previous != (common.Address{}) {
		old, err := s.activeMember(previous)
		if err != nil {
			return err
		}
		if old != nil {
			old.Appointers = removeAddress(old.Appointers, caller)
			if err = s.setMember(old); err != nil {
				return err
			}
		}
	}
	d.Appointers = append(d.Appointers, caller)
	if err = s.setMember(d); err != nil {
		return err
	}
	m.Appointee = delegate
	if err = s.setMember(m); err != nil {
		return err
	}
	ev := &types.EventAppoint{Citizen: caller.Hex(), Delegate: delegate.Hex()}
	if previous != (common.Address{}) {
		ev.Previous = previous.Hex()
	}
	s.emit(types.EncodeEventAppoint(ev))
	return s.refreshOpenTallies()
}

func (s *State) Distrust(caller, member common.Address) error {
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	m, err := s.activeMember(member)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrUnknownMember
	}
	if m.Distrusted {
		return ErrAlreadyDistrusted
	}
	m.Distrusted = true
	if err = s.setMember(m); err != nil {
		return err
	}
	s.emit(types.EncodeEventMember(&types.EventMember{
		Address: member.Hex(),
		Role:    m.Role,
		Action:  types.MemberActionDistrust,
	}))
	return nil
}

// Expel removes a member that lost its human flag or was distrusted, and
// takes its votes and weight out of every tally still running.
func (s *State) Expel(caller, member common.Address) error {
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	m, err := s.activeMember(member)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrUnknownMember
	}
	human, err := s.IsHuman(member)
	if err != nil {
		return err
	}
	if human && !m.Distrusted {
		return ErrCannotExpel
	}
	pop, err := s.Population()
	if err != nil {
		return err
	}
	role := m.Role
	switch role {
	case types.RoleCitizen:
		if pop.Citizens == 0 {
			return ErrPopulationUnderrun
		}
		pop.Citizens--
		err = s.expelCitizen(m)
	case types.RoleDelegate:
		if pop.Delegates == 0 {
			return ErrPopulationUnderrun
		}
		pop.Delegates--
		err = s.expelDelegate(m)
	}
	if err != nil {
		return err
	}
	if err = s.setPopulation(pop); err != nil {
		return err
	}
	m.Role = types.RoleNone
	m.Appointee = common.Address{}
	m.Appointers = nil
	m.Seated = false
	m.Distrusted = false
	if err = s.setMember(m); err != nil {
		return err
	}
	s.emit(types.EncodeEventMember(&types.EventMember{
		Address: member.Hex(),
		Role:    role,
		Action:  types.MemberActionExpel,
	}))
	return s.refreshOpenTallies()
}

func (s *State) expelCitizen(m *types.Member) error {
	if m.Appointee != (common.Address{}) {
		d, err := s.activeMember(m.Appointee)
		if err != nil {
			return err
		}
		if d != nil {
			d.Appointers = removeAddress(d.Appointers, m.Address)
			if err = s.setMember(d); err != nil {
				return err
			}
		}
	}
	return s.forEachRunningTally(func(t *types.Tally) (bool, error) {
		changed := false
		if m.Seq < t.CitizenSeq && t.CitizenCount > 0 {
			t.CitizenCount--
			changed = true
		}
		vote, err := s.vote(t.Index, m.Address)
		if err != nil {
			return false, err
		}
		switch vote {
		case types.VoteYay:
			t.CitizenYays--
		case types.VoteNay:
			t.CitizenNays--
		}
		if vote != types.VoteNone {
			changed = true
			if err = s.clearVote(t.Index, m.Address); err != nil {
				return false, err
			}
		}
		return changed, nil
	})
}

func (s *State) expelDelegate(m *types.Member) error {
	for _, a := range m.Appointers {
		c, err := s.activeMember(a)
		if err != nil {
			return err
		}
		if c == nil || c.Appointee != m.Address {
			continue
		}
		c.Appointee = common.Address{}
		if err = s.setMember(c); err != nil {
			return err
		}
		s.emit(types.EncodeEventAppoint(&types.EventAppoint{
			Citizen:  a.Hex(),
			Previous: m.Address.Hex(),
		}))
	}
	if m.Seated {
		seat, err := s.Seat(m.Seat)
		if err != nil {
			return err
		}
		seat.Vacant = true
		if err = s.setSeat(seat); err != nil {
			return err
		}
		s.emit(types.EncodeEventSeat(&types.EventSeat{
			Seat:     seat.Index,
			Delegate: m.Address.Hex(),
			Vacated:  true,
		}))
	}
	return s.forEachRunningTally(func(t *types.Tally) (bool, error) {
		vote, err := s.vote(t.Index, m.Address)
		if err != nil || vote == types.VoteNone {
			return false, err
		}
		t.Yays = removeAddress(t.Yays, m.Address)
		return true, s.clearVote(t.Index, m.Address)
	})
}
