package state

import (
	"fmt"

	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrEmptyBatch           = types.NewError(types.InvalidParameter, "empty batch")
	ErrBatchTooLarge        = types.NewError(types.InvalidParameter, "batch too large")
	ErrCounterNotIncreasing = types.NewError(types.InvalidParameter, "submission counter must increase")
)

const ParamSubmissionCounter = "submissionCounter"

func (s *State) IsHuman(addr common.Address) (bool, error) {
	return s.getFlag(fmt.Sprintf(KeyHuman, addr.Bytes()))
}

func (s *State) OracleInfo() (*types.OracleInfo, error) {
	info := new(types.OracleInfo)
	if _, err := s.getJSON(KeyOracle, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (s *State) RegisterHumans(caller common.Address, addrs []common.Address) error {
	return s.updateHumans(caller, addrs, true)
}

func (s *State) DeregisterHumans(caller common.Address, addrs []common.Address) error {
	return s.updateHumans(caller, addrs, false)
}

func (s *State) updateHumans(caller common.Address, addrs []common.Address, human bool) error {
	if err := s.requireUpdater(caller); err != nil {
		return err
	}
	params, err := s.Params()
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		return ErrEmptyBatch
	}
	if uint64(len(addrs)) > params.OracleBatchMax {
		return ErrBatchTooLarge
	}
	for _, a := range addrs {
		if a == (common.Address{}) {
			return ErrZeroAddress
		}
	}
	info, err := s.OracleInfo()
	if err != nil {
		return err
	}
	changed, err := s.setHumans(info, addrs, human)
	if err != nil {
		return err
	}
	info.LastUpdate = s.Now()
	if err = s.setJSON(KeyOracle, info); err != nil {
		return err
	}
	action := types.HumansActionRegister
	if !human {
		action = types.HumansActionDeregister
	}
	shown := make([]string, len(changed))
	for i, a := range changed {
		shown[i] = a.Hex()
	}
	s.emit(types.EncodeEventHumans(&types.EventHumans{
		Action:     action,
		Addresses:  shown,
		HumanCount: info.HumanCount,
		Timestamp:  info.LastUpdate,
	}))
	return nil
}

// setHumans flips the flags that differ and keeps humanCount net.
func (s *State) setHumans(info *types.OracleInfo, addrs []common.Address, human bool) (changed []common.Address, err error) {
	for _, a := range addrs {
		cur, err := s.IsHuman(a)
		if err != nil {
			return nil, err
		}
		if cur == human {
			continue
		}
		if err = s.setFlag(fmt.Sprintf(KeyHuman, a.Bytes()), human); err != nil {
			return nil, err
		}
		if human {
			info.HumanCount++
		} else {
			info.HumanCount--
		}
		changed = append(changed, a)
	}
	return changed, nil
}

func (s *State) SetSubmissionCounter(caller common.Address, n uint64) error {
	if err := s.requireUpdater(caller); err != nil {
		return err
	}
	info, err := s.OracleInfo()
	if err != nil {
		return err
	}
	if n <= info.SubmissionCounter {
		return ErrCounterNotIncreasing
	}
	info.SubmissionCounter = n
	info.LastUpdate = s.Now()
	if err = s.setJSON(KeyOracle, info); err != nil {
		return err
	}
	s.emit(types.EncodeEventParam(&types.EventParam{Name: ParamSubmissionCounter, Value: fmt.Sprintf("%d", n)}))
	return nil
}
