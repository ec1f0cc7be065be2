package ledger

import (
	"fmt"
	"math/big"

	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
)

const (
	KeyBalance = "b%x"
	KeyBlocked = "blk%x"
)

var (
	ErrInsufficientBalance = types.NewError(types.PreconditionUnmet, "insufficient balance")
	ErrSenderBlocked       = types.NewError(types.PreconditionUnmet, "the sender address is blocked")
	ErrRecipientBlocked    = types.NewError(types.PreconditionUnmet, "the recipient address is blocked")
	ErrAlreadyBlocked      = types.NewError(types.InvalidState, "address is already blocked")
	ErrNotBlocked          = types.NewError(types.InvalidState, "address is not blocked")
	ErrInvalidAmount       = types.NewError(types.InvalidParameter, "invalid amount")
	ErrZeroAddress         = types.NewError(types.InvalidParameter, "zero address")
)

// Store is the key/value surface the ledger keeps its balances in.
type Store interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
}

// Ledger moves fungible value between addresses and enforces the
// block/unblock transfer policy. The governor may move funds regardless
// of the policy.
type Ledger struct {
	store    Store
	governor common.Address
}

func New(store Store, governor common.Address) *Ledger {
	return &Ledger{
		store:    store,
		governor: governor,
	}
}

func (l *Ledger) Governor() common.Address {
	return l.governor
}

func (l *Ledger) BalanceOf(addr common.Address) (*big.Int, error) {
	val, err := l.store.Get([]byte(fmt.Sprintf(KeyBalance, addr.Bytes())))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(val), nil
}

func (l *Ledger) setBalance(addr common.Address, amount *big.Int) error {
	key := []byte(fmt.Sprintf(KeyBalance, addr.Bytes()))
	if amount.Sign() == 0 {
		return l.store.Delete(key)
	}
	return l.store.Set(key, amount.Bytes())
}

func (l *Ledger) IsBlocked(addr common.Address) (bool, error) {
	val, err := l.store.Get([]byte(fmt.Sprintf(KeyBlocked, addr.Bytes())))
	if err != nil {
		return false, err
	}
	return len(val) > 0, nil
}

// Mint credits new supply. Only genesis uses it.
func (l *Ledger) Mint(to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	bal, err := l.BalanceOf(to)
	if err != nil {
		return err
	}
	return l.setBalance(to, bal.Add(bal, amount))
}

// Send is a policy-checked transfer.
func (l *Ledger) Send(from, to common.Address, amount *big.Int) (event *types.EventTransfer, err error) {
	blocked, err := l.IsBlocked(from)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrSenderBlocked
	}
	blocked, err = l.IsBlocked(to)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrRecipientBlocked
	}
	return l.move(from, to, amount)
}

// GovernorSend moves funds between any two addresses, blocked or not.
func (l *Ledger) GovernorSend(caller, from, to common.Address, amount *big.Int) (event *types.EventTransfer, err error) {
	if caller != l.governor {
		return nil, types.ErrNotGovernor
	}
	return l.move(from, to, amount)
}

func (l *Ledger) move(from, to common.Address, amount *big.Int) (event *types.EventTransfer, err error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	if to == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	fromBal, err := l.BalanceOf(from)
	if err != nil {
		return nil, err
	}
	if fromBal.Cmp(amount) < 0 {
		return nil, ErrInsufficientBalance
	}
	if from != to {
		if err = l.setBalance(from, fromBal.Sub(fromBal, amount)); err != nil {
			return nil, err
		}
		toBal, err := l.BalanceOf(to)
		if err != nil {
			return nil, err
		}
		if err = l.setBalance(to, toBal.Add(toBal, amount)); err != nil {
			return nil, err
		}
	}
	event = &types.EventTransfer{
		From:   from.Hex(),
		To:     to.Hex(),
		Amount: amount.String(),
	}
	return
}

func (l *Ledger) Block(caller, addr common.Address) (event *types.EventBlock, err error) {
	if caller != l.governor {
		return nil, types.ErrNotGovernor
	}
	blocked, err := l.IsBlocked(addr)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrAlreadyBlocked
	}
	if err = l.store.Set([]byte(fmt.Sprintf(KeyBlocked, addr.Bytes())), []byte{1}); err != nil {
		return nil, err
	}
	return &types.EventBlock{Address: addr.Hex(), Blocked: true}, nil
}

func (l *Ledger) Unblock(caller, addr common.Address) (event *types.EventBlock, err error) {
	if caller != l.governor {
		return nil, types.ErrNotGovernor
	}
	blocked, err := l.IsBlocked(addr)
	if err != nil {
		return nil, err
	}
	if !blocked {
		return nil, ErrNotBlocked
	}
	if err = l.store.Delete([]byte(fmt.Sprintf(KeyBlocked, addr.Bytes()))); err != nil {
		return nil, err
	}
	return &types.EventBlock{Address: addr.Hex(), Blocked: false}, nil
}
