package state

import (
	"math/big"
	"testing"

	"github.com/calehh/assembly-app/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetParamValidation(t *testing.T) {
	st := newTestState(t, testGenesis())
	cases := []struct {
		name  string
		value int64
		err   error
	}{
		{types.ParamSeatCount, 2, ErrParamUnchanged},
		{types.ParamSeatCount, 1, ErrSeatDecrease},
		{types.ParamSeatCount, 4, nil},
		{types.ParamVotingPercent, 49, ErrThresholdRange},
		{types.ParamVotingPercent, 101, ErrThresholdRange},
		{types.ParamVotingPercent, 66, nil},
		{types.ParamQuorum, 3, ErrParamUnchanged},
		{types.ParamQuorum, 0, nil},
		{types.ParamTallyDuration, 0, ErrDurationZero},
		{types.ParamTallyDuration, -5, ErrDurationZero},
		{types.ParamTallyDuration, 60, nil},
		{types.ParamExecRewardBase, 0, ErrExecBaseZero},
		{types.ParamExecRewardBase, 3, nil},
		{types.ParamExecRewardExponentMax, 256, ErrExponentTooLarge},
		{types.ParamExecRewardExponentMax, 255, nil},
		{types.ParamExecRewardExponentMax, 4, nil},
		{types.ParamOracleBatchMax, 0, ErrBatchMaxZero},
		{types.ParamOracleBatchMax, 10, nil},
		{types.ParamDelegationRewardRate, -1, ErrNegativeAmount},
		{"unknown", 1, ErrUnknownParam},
	}
	for _, c := range cases {
		err := st.SetParam(owner, c.name, big.NewInt(c.value), nil, zero)
		if c.err == nil {
			assert.NoError(t, err, "%s=%d", c.name, c.value)
		} else {
			assert.ErrorIs(t, err, c.err, "%s=%d", c.name, c.value)
		}
	}

	params, err := st.Params()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), params.SeatCount)
	assert.Equal(t, uint64(66), params.VotingPercentThreshold)
	assert.Equal(t, uint64(0), params.Quorum)
	assert.Equal(t, int64(60), params.TallyDuration)
	assert.Equal(t, uint64(3), params.ExecRewardBase)
	assert.Equal(t, uint64(4), params.ExecRewardExponentMax)
	assert.Equal(t, uint64(10), params.OracleBatchMax)

	assert.ErrorIs(t, st.SetParam(owner, types.ParamQuorum, nil, nil, zero), ErrParamMissing)
	assert.ErrorIs(t, st.SetParam(creator, types.ParamQuorum, big.NewInt(1), nil, zero), types.ErrNotOwner)
}

func TestReferralRewardParam(t *testing.T) {
	st := newTestState(t, testGenesis())
	assert.ErrorIs(t, st.SetParam(owner, types.ParamReferralReward, big.NewInt(0), big.NewInt(0), zero), ErrParamUnchanged)
	assert.ErrorIs(t, st.SetParam(owner, types.ParamReferralReward, big.NewInt(1), nil, zero), ErrParamMissing)
	require.NoError(t, st.SetParam(owner, types.ParamReferralReward, big.NewInt(7), big.NewInt(3), zero))

	params, err := st.Params()
	require.NoError(t, err)
	assert.Equal(t, int64(7), params.ReferredAmount.Int64())
	assert.Equal(t, int64(3), params.ReferrerAmount.Int64())

	events := st.Events()
	ev := types.DecodeEventParam(events[len(events)-1])
	require.NotNil(t, ev)
	assert.Equal(t, "7,3", ev.Value)
}

func TestRoleParams(t *testing.T) {
	st := newTestState(t, testGenesis())
	next := addr(0xc1)

	assert.ErrorIs(t, st.SetParam(owner, types.ParamCreator, nil, nil, next), types.ErrNotCreator)
	assert.ErrorIs(t, st.SetParam(creator, types.ParamCreator, nil, nil, zero), ErrZeroAddress)
	assert.ErrorIs(t, st.SetParam(creator, types.ParamCreator, nil, nil, creator), ErrParamUnchanged)
	require.NoError(t, st.SetParam(creator, types.ParamCreator, nil, nil, next))
	_, err := st.CreateProposal(creator)
	assert.ErrorIs(t, err, types.ErrNotCreator)
	_, err = st.CreateProposal(next)
	require.NoError(t, err)

	pool := addr(0x9a)
	require.NoError(t, st.SetParam(owner, types.ParamRewardPool, nil, nil, pool))
	newOwner := addr(0x0c)
	require.NoError(t, st.SetParam(owner, types.ParamOwner, nil, nil, newOwner))
	assert.ErrorIs(t, st.SetParam(owner, types.ParamQuorum, big.NewInt(1), nil, zero), types.ErrNotOwner)

	roles, err := st.Roles()
	require.NoError(t, err)
	assert.Equal(t, pool, roles.RewardPool)
	assert.Equal(t, newOwner, roles.Owner)
	assert.Equal(t, types.TreasuryAddress, roles.Treasury)
}

func TestMigrate(t *testing.T) {
	st := newTestState(t, testGenesis())
	// rewrite the store the way a v1 deployment left it
	params, err := st.Params()
	require.NoError(t, err)
	params.ExecRewardBase = 0
	params.OracleBatchMax = 0
	require.NoError(t, st.setParams(params))
	require.NoError(t, st.setUint(KeySchema, 1))

	assert.ErrorIs(t, st.Migrate(creator, 2), types.ErrNotOwner)
	assert.ErrorIs(t, st.Migrate(owner, 1), ErrMigrationTarget)
	assert.ErrorIs(t, st.Migrate(owner, 3), ErrNoMigrationPath)
	v, err := st.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
	params, err = st.Params()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), params.ExecRewardBase)

	require.NoError(t, st.Migrate(owner, 2))
	v, err = st.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)
	params, err = st.Params()
	require.NoError(t, err)
	assert.Equal(t, uint64(types.DefaultExecRewardBase), params.ExecRewardBase)
	assert.Equal(t, uint64(types.DefaultOracleBatchMax), params.OracleBatchMax)
}

func TestExecRewardExponentBound(t *testing.T) {
	g := testGenesis()
	g.Params.ExecRewardExponentMax = types.MaxExecRewardExponent + 1
	_, err := paramsFromGenesis(&g.Params)
	assert.ErrorIs(t, err, ErrExponentTooLarge)

	// a record written before the bound still pays at most base^255
	params := types.DefaultParams()
	params.ExecRewardExponentMax = 1000
	want := new(big.Int).Exp(big.NewInt(2), big.NewInt(types.MaxExecRewardExponent), nil)
	assert.Equal(t, 0, want.Cmp(executionReward(params, 5000)))
}
