package types

type TallyStatus uint64

const (
	TallyProvisionalNotApproved TallyStatus = 0
	TallyProvisionalApproved    TallyStatus = 1
	TallyNotApproved            TallyStatus = 2
	TallyApproved               TallyStatus = 3
	TallyEnacted                TallyStatus = 4
)

func (s TallyStatus) String() string {
	switch s {
	case TallyProvisionalNotApproved:
		return "provisional_not_approved"
	case TallyProvisionalApproved:
		return "provisional_approved"
	case TallyNotApproved:
		return "not_approved"
	case TallyApproved:
		return "approved"
	case TallyEnacted:
		return "enacted"
	}
	return "unknown"
}

// Final reports whether the status can no longer change through tallyUp.
func (s TallyStatus) Final() bool {
	return s == TallyNotApproved || s == TallyApproved || s == TallyEnacted
}

type Phase uint8

const (
	PhaseDeliberation Phase = 0
	PhaseRevocation   Phase = 1
	PhaseEnded        Phase = 2
)

func (p Phase) String() string {
	switch p {
	case PhaseDeliberation:
		return "deliberation"
	case PhaseRevocation:
		return "revocation"
	case PhaseEnded:
		return "ended"
	}
	return "unknown"
}

type Vote uint8

const (
	VoteNone Vote = 0
	VoteYay  Vote = 1
	VoteNay  Vote = 2
)

func (v Vote) String() string {
	switch v {
	case VoteYay:
		return "yay"
	case VoteNay:
		return "nay"
	}
	return "none"
}

type ProposalStatus uint64

const (
	ProposalCreated           ProposalStatus = 0
	ProposalSubmitted         ProposalStatus = 1
	ProposalPartiallyExecuted ProposalStatus = 2
	ProposalFullyExecuted     ProposalStatus = 3
)

func (s ProposalStatus) String() string {
	switch s {
	case ProposalCreated:
		return "created"
	case ProposalSubmitted:
		return "submitted"
	case ProposalPartiallyExecuted:
		return "partially_executed"
	case ProposalFullyExecuted:
		return "fully_executed"
	}
	return "unknown"
}

type Role uint8

const (
	RoleNone     Role = 0
	RoleCitizen  Role = 1
	RoleDelegate Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleCitizen:
		return "citizen"
	case RoleDelegate:
		return "delegate"
	}
	return "none"
}
