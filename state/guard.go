package state

import (
	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
)

func (s *State) requireCreator(caller common.Address) error {
	roles, err := s.Roles()
	if err != nil {
		return err
	}
	if caller != roles.Creator {
		return types.ErrNotCreator
	}
	return nil
}

func (s *State) requireOwner(caller common.Address) error {
	roles, err := s.Roles()
	if err != nil {
		return err
	}
	if caller != roles.Owner {
		return types.ErrNotOwner
	}
	return nil
}

// requireAuthority admits only the engine's own identity, which is what
// the enact path executes proposals as.
func (s *State) requireAuthority(caller common.Address) error {
	roles, err := s.Roles()
	if err != nil {
		return err
	}
	if caller != roles.Assembly {
		return types.ErrNotAuthority
	}
	return nil
}

func (s *State) requireTrusted(caller common.Address) error {
	m, err := s.Member(caller)
	if err != nil {
		return err
	}
	if m == nil || m.Role == types.RoleNone {
		return types.ErrNotTrusted
	}
	return nil
}

func (s *State) requireUpdater(caller common.Address) error {
	roles, err := s.Roles()
	if err != nil {
		return err
	}
	if caller != roles.OracleUpdater {
		return types.ErrNotUpdater
	}
	return nil
}
