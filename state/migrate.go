package state

import (
	"github.com/calehh/assembly-app/types"
	"github.com/ethereum/go-ethereum/common"
)

// CurrentSchemaVersion is the layout genesis writes.
const CurrentSchemaVersion = 2

var (
	ErrMigrationTarget = types.NewError(types.InvalidParameter, "target version not above current")
	ErrNoMigrationPath = types.NewError(types.InvalidParameter, "no migration registered")
)

// migrations maps version N to the function rewriting an N store into N+1.
var migrations = map[uint64]func(st *State) error{
	1: migrateV1ToV2,
}

// migrateV1ToV2 backfills the parameters v1 did not have.
func migrateV1ToV2(st *State) error {
	params, err := st.Params()
	if err != nil {
		return err
	}
	if params.ExecRewardBase == 0 {
		params.ExecRewardBase = types.DefaultExecRewardBase
	}
	if params.OracleBatchMax == 0 {
		params.OracleBatchMax = types.DefaultOracleBatchMax
	}
	return st.setParams(params)
}

func (s *State) SchemaVersion() (uint64, error) {
	return s.getUint(KeySchema)
}

// Migrate applies the registered migrations up to version to, all or none.
func (s *State) Migrate(caller common.Address, to uint64) error {
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	cur, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	if to <= cur {
		return ErrMigrationTarget
	}
	branch := s.Branch()
	for v := cur; v < to; v++ {
		m, ok := migrations[v]
		if !ok {
			return ErrNoMigrationPath
		}
		if err = m(branch); err != nil {
			return err
		}
	}
	if err = branch.setUint(KeySchema, to); err != nil {
		return err
	}
	branch.emit(types.EncodeEventMigrate(&types.EventMigrate{From: cur, To: to}))
	return branch.Write()
}
