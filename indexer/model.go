package indexer

// sqlite models
//
// Chain indexes start at 0, so tallies, proposals, transactions and seats
// keep their chain index in a unique column next to the row id.

type Height struct {
	Id     uint64 `gorm:"primary_key" json:"id"`
	Height uint64 `json:"height"`
}

type Member struct {
	Address    string `gorm:"primary_key" json:"address"`
	Role       uint8  `json:"role"`
	Delegate   string `json:"delegate"`
	Distrusted bool   `json:"distrusted"`
	Expelled   bool   `json:"expelled"`
	Height     uint64 `json:"height"`
}

type Seat struct {
	Id       uint64 `gorm:"primary_key" json:"-"`
	Seat     uint64 `gorm:"unique_index" json:"seat"`
	Delegate string `json:"delegate"`
	Vacant   bool   `json:"vacant"`
	Height   uint64 `json:"height"`
}

type Tally struct {
	Id              uint64 `gorm:"primary_key" json:"-"`
	Tally           uint64 `gorm:"unique_index" json:"tally"`
	Proposal        uint64 `json:"proposal"`
	Creator         string `json:"creator"`
	Submission      int64  `json:"submission"`
	RevocationStart int64  `json:"revocation_start"`
	VotingEnd       int64  `json:"voting_end"`
	Status          uint64 `json:"status"`
	DelegatedYays   uint64 `json:"delegated_yays"`
	CitizenYays     uint64 `json:"citizen_yays"`
	CitizenNays     uint64 `json:"citizen_nays"`
	CitizenCount    uint64 `json:"citizen_count"`
	Executor        string `json:"executor"`
	NewHeight       uint64 `json:"new_height"`
	SettleHeight    uint64 `json:"settle_height"`
}

type Vote struct {
	Id     uint64 `gorm:"primary_key" json:"id"`
	Tally  uint64 `gorm:"index" json:"tally"`
	Voter  string `json:"voter"`
	Role   uint8  `json:"role"`
	Vote   uint8  `json:"vote"`
	Height uint64 `json:"height"`
}

type Proposal struct {
	Id            uint64 `gorm:"primary_key" json:"-"`
	Proposal      uint64 `gorm:"unique_index" json:"proposal"`
	Status        uint64 `json:"status"`
	StepCount     uint64 `json:"step_count"`
	ExecutedSteps uint64 `json:"executed_steps"`
	NewHeight     uint64 `json:"new_height"`
}

type Transaction struct {
	Id          uint64 `gorm:"primary_key" json:"-"`
	TxId        uint64 `gorm:"unique_index" json:"tx_id"`
	Proposal    uint64 `gorm:"index" json:"proposal"`
	Step        uint64 `json:"step"`
	Destination string `json:"destination"`
	Value       string `json:"value"`
	Data        string `json:"data"`
}

type Reward struct {
	Id      uint64 `gorm:"primary_key" json:"id"`
	Address string `gorm:"index" json:"address"`
	Kind    string `json:"kind"`
	Amount  string `json:"amount"`
	Height  uint64 `json:"height"`
}

type Human struct {
	Address string `gorm:"primary_key" json:"address"`
	Height  uint64 `json:"height"`
}

// EventRecord keeps every indexed event verbatim.
type EventRecord struct {
	Id              string `gorm:"primary_key" json:"id"`
	Height          uint64 `gorm:"index" json:"height"`
	TxIndex         int    `json:"tx_index"`
	EventIndex      int    `json:"event_index"`
	Type            string `gorm:"index" json:"type"`
	Attributes      string `json:"attributes"`
	CreateTimestamp int64  `json:"create_timestamp"`
}
