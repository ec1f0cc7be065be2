package state

import (
	"math/big"

	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
)

// Transfer moves the caller's own balance.
func (s *State) Transfer(caller, to common.Address, amount *big.Int) error {
	l, err := s.Ledger()
	if err != nil {
		return err
	}
	ev, err := l.Send(caller, to, amount)
	if err != nil {
		return err
	}
	s.emit(types.EncodeEventTransfer(ev))
	return nil
}

// GovernorSend lets the owner move funds between any two accounts,
// blocked ones included.
func (s *State) GovernorSend(caller, from, to common.Address, amount *big.Int) error {
	l, err := s.Ledger()
	if err != nil {
		return err
	}
	ev, err := l.GovernorSend(caller, from, to, amount)
	if err != nil {
		return err
	}
	s.emit(types.EncodeEventTransfer(ev))
	return nil
}

func (s *State) BlockAddress(caller, addr common.Address) error {
	l, err := s.Ledger()
	if err != nil {
		return err
	}
	ev, err := l.Block(caller, addr)
	if err != nil {
		return err
	}
	s.emit(types.EncodeEventBlock(ev))
	return nil
}

func (s *State) UnblockAddress(caller, addr common.Address) error {
	l, err := s.Ledger()
	if err != nil {
		return err
	}
	ev, err := l.Unblock(caller, addr)
	if err != nil {
		return err
	}
	s.emit(types.EncodeEventBlock(ev))
	return nil
}

func (s *State) BalanceOf(addr common.Address) (*big.Int, error) {
	l, err := s.Ledger()
	if err != nil {
		return nil, err
	}
	return l.BalanceOf(addr)
}
