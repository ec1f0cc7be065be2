package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// TreasuryAddress holds the funds proposals spend. No key controls it.
	TreasuryAddress = common.BytesToAddress(crypto.Keccak256([]byte("assembly/treasury"))[12:])
	// AssemblyAddress is the identity proposals are executed as.
	AssemblyAddress = common.BytesToAddress(crypto.Keccak256([]byte("assembly/engine"))[12:])
)

type Member struct {
	Address         common.Address   `json:"address"`
	Role            Role             `json:"role"`
	Seq             uint64           `json:"seq"`
	Joined          int64            `json:"joined"`
	Appointee       common.Address   `json:"appointee"`
	Appointers      []common.Address `json:"appointers"`
	Seated          bool             `json:"seated"`
	Seat            uint64           `json:"seat"`
	Distrusted      bool             `json:"distrusted"`
	ReferralClaimed bool             `json:"referral_claimed"`
}

// AppointCount is the delegate's vote weight.
func (m *Member) AppointCount() uint64 {
	return uint64(len(m.Appointers))
}

type Seat struct {
	Index    uint64         `json:"index"`
	Delegate common.Address `json:"delegate"`
	Vacant   bool           `json:"vacant"`
}

// Occupied reports whether a live delegate holds the seat.
func (s *Seat) Occupied() bool {
	return s.Delegate != (common.Address{}) && !s.Vacant
}

type Population struct {
	Citizens  uint64 `json:"citizens"`
	Delegates uint64 `json:"delegates"`
	NextSeq   uint64 `json:"next_seq"`
}

type OracleInfo struct {
	HumanCount        uint64 `json:"human_count"`
	SubmissionCounter uint64 `json:"submission_counter"`
	LastUpdate        int64  `json:"last_update"`
}

type Roles struct {
	Creator       common.Address `json:"creator"`
	Owner         common.Address `json:"owner"`
	OracleUpdater common.Address `json:"oracle_updater"`
	Treasury      common.Address `json:"treasury"`
	RewardPool    common.Address `json:"reward_pool"`
	Assembly      common.Address `json:"assembly"`
}

type Params struct {
	SeatCount              uint64   `json:"seat_count"`
	VotingPercentThreshold uint64   `json:"voting_percent_threshold"`
	Quorum                 uint64   `json:"quorum"`
	TallyDuration          int64    `json:"tally_duration"`
	DelegationRewardRate   *big.Int `json:"delegation_reward_rate"`
	ReferredAmount         *big.Int `json:"referred_amount"`
	ReferrerAmount         *big.Int `json:"referrer_amount"`
	ExecRewardBase         uint64   `json:"exec_reward_base"`
	ExecRewardExponentMax  uint64   `json:"exec_reward_exponent_max"`
	OracleBatchMax         uint64   `json:"oracle_batch_max"`
}

const (
	DefaultSeatCount             = 7
	DefaultVotingPercent         = 50
	DefaultQuorum                = 3
	DefaultTallyDuration         = 7 * 24 * 3600
	DefaultExecRewardBase        = 2
	DefaultExecRewardExponentMax = 16
	DefaultOracleBatchMax        = 200

	MaxExecRewardExponent = 255
)

func DefaultParams() *Params {
	return &Params{
		SeatCount:              DefaultSeatCount,
		VotingPercentThreshold: DefaultVotingPercent,
		Quorum:                 DefaultQuorum,
		TallyDuration:          DefaultTallyDuration,
		DelegationRewardRate:   big.NewInt(0),
		ReferredAmount:         big.NewInt(0),
		ReferrerAmount:         big.NewInt(0),
		ExecRewardBase:         DefaultExecRewardBase,
		ExecRewardExponentMax:  DefaultExecRewardExponentMax,
		OracleBatchMax:         DefaultOracleBatchMax,
	}
}

const (
	ParamSeatCount             = "seatCount"
	ParamVotingPercent         = "votingPercentThreshold"
	ParamQuorum                = "quorum"
	ParamTallyDuration         = "tallyDuration"
	ParamDelegationRewardRate  = "delegationRewardRate"
	ParamReferralReward        = "referralReward"
	ParamExecRewardBase        = "execRewardBase"
	ParamExecRewardExponentMax = "execRewardExponentMax"
	ParamOracleBatchMax        = "oracleBatchMax"
	ParamOracleUpdater         = "oracleUpdater"
	ParamCreator               = "creator"
	ParamOwner                 = "owner"
	ParamRewardPool            = "rewardPool"
)

type Incentives struct {
	LastDistribution int64 `json:"last_distribution"`
}
