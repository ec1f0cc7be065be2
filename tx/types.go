package tx

import (
	"errors"
)

type TxType uint8

const (
	TxTypeUnknown TxType = 0

	TxTypeApplyCitizenship TxType = 1
	TxTypeApplyDelegation  TxType = 2
	TxTypeAppointDelegate  TxType = 3
	TxTypeClaimSeat        TxType = 4
	TxTypeDistrust         TxType = 5
	TxTypeExpel            TxType = 6

	TxTypeCreateTally  TxType = 10
	TxTypeDelegateVote TxType = 11
	TxTypeCitizenVote  TxType = 12
	TxTypeTallyUp      TxType = 13
	TxTypeEnact        TxType = 14
	TxTypeExecute      TxType = 15

	TxTypeCreateProposal    TxType = 20
	TxTypeSubmitTransaction TxType = 21
	TxTypeSubmitProposal    TxType = 22

	TxTypeDistributeReward TxType = 30
	TxTypeClaimRewards     TxType = 31
	TxTypeClaimReferral    TxType = 32

	TxTypeSetParam TxType = 40
	TxTypeMigrate  TxType = 41

	TxTypeRegisterHumans       TxType = 50
	TxTypeDeregisterHumans     TxType = 51
	TxTypeSetSubmissionCounter TxType = 52

	TxTypeTransfer     TxType = 60
	TxTypeGovernorSend TxType = 61
	TxTypeBlock        TxType = 62
	TxTypeUnblock      TxType = 63
)

var txTypeNames = map[TxType]string{
	TxTypeApplyCitizenship:     "applyForCitizenship",
	TxTypeApplyDelegation:      "applyForDelegation",
	TxTypeAppointDelegate:      "appointDelegate",
	TxTypeClaimSeat:            "claimSeat",
	TxTypeDistrust:             "distrust",
	TxTypeExpel:                "expel",
	TxTypeCreateTally:          "createTally",
	TxTypeDelegateVote:         "castDelegateVote",
	TxTypeCitizenVote:          "castCitizenVote",
	TxTypeTallyUp:              "tallyUp",
	TxTypeEnact:                "enact",
	TxTypeExecute:              "execute",
	TxTypeCreateProposal:       "createProposal",
	TxTypeSubmitTransaction:    "submitTransaction",
	TxTypeSubmitProposal:       "submitProposal",
	TxTypeDistributeReward:     "distributeDelegationReward",
	TxTypeClaimRewards:         "claimRewards",
	TxTypeClaimReferral:        "claimReferralReward",
	TxTypeSetParam:             "setParam",
	TxTypeMigrate:              "migrate",
	TxTypeRegisterHumans:       "registerHumans",
	TxTypeDeregisterHumans:     "deregisterHumans",
	TxTypeSetSubmissionCounter: "setSubmissionCounter",
	TxTypeTransfer:             "transfer",
	TxTypeGovernorSend:         "governorSend",
	TxTypeBlock:                "blockAddress",
	TxTypeUnblock:              "unblockAddress",
}

func (t TxType) String() string {
	if name, ok := txTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTxType resolves an operation name such as "setParam".
func ParseTxType(name string) (TxType, bool) {
	for tp, n := range txTypeNames {
		if n == name {
			return tp, true
		}
	}
	return TxTypeUnknown, false
}

const (
	TxVersion0 uint8 = 0
	TxVersion1 uint8 = 1
)

var (
	ErrInvalidTx            = errors.New("invalid tx")
	ErrUnsupportedTxType    = errors.New("unsupported tx type")
	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
	ErrTxSigInvalid         = errors.New("signature invalid")
	ErrTxSenderMismatch     = errors.New("signer does not match sender")
)

// Inner reports whether a proposal transaction may carry a call of this
// type. Calls that drive tallies or author proposals are excluded.
func (t TxType) Inner() bool {
	switch t {
	case TxTypeCreateTally, TxTypeEnact, TxTypeExecute,
		TxTypeCreateProposal, TxTypeSubmitTransaction, TxTypeSubmitProposal:
		return false
	}
	_, ok := txTypeNames[t]
	return ok
}
