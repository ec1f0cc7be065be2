package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Proposal is a treasury action request. Steps hold transaction ids and
// are executed strictly in order.
type Proposal struct {
	Index         uint64         `json:"index"`
	Status        ProposalStatus `json:"status"`
	Steps         [][]uint64     `json:"steps"`
	StepCount     uint64         `json:"step_count"`
	ExecutedSteps uint64         `json:"executed_steps"`
}

func (p *Proposal) TxCount() (n int) {
	for _, step := range p.Steps {
		n += len(step)
	}
	return
}

type Transaction struct {
	Index       uint64         `json:"index"`
	Proposal    uint64         `json:"proposal"`
	Step        uint64         `json:"step"`
	Destination common.Address `json:"destination"`
	Value       *big.Int       `json:"value"`
	Data        []byte         `json:"data"`
	Executed    bool           `json:"executed"`
}

// ProposalView is the read model served to tooling.
type ProposalView struct {
	Proposal
	Transactions [][]Transaction `json:"transactions"`
}

type Tally struct {
	Index           uint64           `json:"index"`
	Proposal        uint64           `json:"proposal"`
	Creator         common.Address   `json:"creator"`
	Submission      int64            `json:"submission"`
	RevocationStart int64            `json:"revocation_start"`
	VotingEnd       int64            `json:"voting_end"`
	DelegatedYays   uint64           `json:"delegated_yays"`
	CitizenYays     uint64           `json:"citizen_yays"`
	CitizenNays     uint64           `json:"citizen_nays"`
	CitizenCount    uint64           `json:"citizen_count"`
	CitizenSeq      uint64           `json:"citizen_seq"`
	Status          TallyStatus      `json:"status"`
	Yays            []common.Address `json:"yays"`
}

// PhaseAt derives the phase from the tally timestamps.
func (t *Tally) PhaseAt(now int64) Phase {
	switch {
	case now < t.RevocationStart:
		return PhaseDeliberation
	case now < t.VotingEnd:
		return PhaseRevocation
	default:
		return PhaseEnded
	}
}

type TallyView struct {
	Tally
	Phase Phase `json:"phase"`
	Now   int64 `json:"now"`
}
