package tx

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AssemblyTx is the signed envelope of every operation. Sender is the
// account the signature must recover to.
type AssemblyTx struct {
	Version uint8          `json:"version"`
	Type    TxType         `json:"type"`
	Nonce   uint64         `json:"nonce"`
	Sender  common.Address `json:"sender"`
	Tx      any            `json:"tx"`
	Sig     []byte         `json:"sig"`
}

type EmptyTx struct{}

type AppointDelegateTx struct {
	Delegate common.Address `json:"delegate"`
}

type ClaimSeatTx struct {
	Seat uint64 `json:"seat"`
}

// MemberTx targets a member for distrust or expulsion.
type MemberTx struct {
	Member common.Address `json:"member"`
}

type ProposalRefTx struct {
	Proposal uint64 `json:"proposal"`
}

type TallyRefTx struct {
	Tally uint64 `json:"tally"`
}

type VoteTx struct {
	Tally uint64 `json:"tally"`
	Yay   bool   `json:"yay"`
}

type SubmitTransactionTx struct {
	Proposal    uint64         `json:"proposal"`
	Step        uint64         `json:"step"`
	Destination common.Address `json:"destination"`
	Value       *big.Int       `json:"value"`
	Data        []byte         `json:"data"`
}

type ClaimReferralTx struct {
	Referrer common.Address `json:"referrer"`
}

// SetParamTx changes one governance parameter. Extra is only read by
// parameters that take two values; Address by parameters that name a role.
type SetParamTx struct {
	Param   string         `json:"param"`
	Value   *big.Int       `json:"value,omitempty"`
	Extra   *big.Int       `json:"extra,omitempty"`
	Address common.Address `json:"address,omitempty"`
}

type MigrateTx struct {
	Version uint64 `json:"version"`
}

type HumansTx struct {
	Addresses []common.Address `json:"addresses"`
}

type SubmissionCounterTx struct {
	Counter uint64 `json:"counter"`
}

type TransferTx struct {
	From   common.Address `json:"from,omitempty"`
	To     common.Address `json:"to"`
	Amount *big.Int       `json:"amount"`
}

type AddressTx struct {
	Address common.Address `json:"address"`
}

// Call is an operation carried in the data of a proposal transaction and
// dispatched when its step executes.
type Call struct {
	Type TxType `json:"type"`
	Tx   any    `json:"tx"`
}

type rawEnvelope struct {
	Version uint8           `json:"version"`
	Type    TxType          `json:"type"`
	Nonce   uint64          `json:"nonce"`
	Sender  common.Address  `json:"sender"`
	Tx      json.RawMessage `json:"tx"`
	Sig     []byte          `json:"sig"`
}

func decodeBody[Tx any](raw json.RawMessage) (body any, err error) {
	t := new(Tx)
	if len(raw) > 0 && string(raw) != "null" {
		err = json.Unmarshal(raw, t)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// DecodeBody decodes the body of a transaction of the given type into its
// concrete struct pointer.
func DecodeBody(tp TxType, raw json.RawMessage) (any, error) {
	switch tp {
	case TxTypeApplyCitizenship, TxTypeApplyDelegation, TxTypeCreateProposal,
		TxTypeDistributeReward, TxTypeClaimRewards:
		return decodeBody[EmptyTx](raw)
	case TxTypeAppointDelegate:
		return decodeBody[AppointDelegateTx](raw)
	case TxTypeClaimSeat:
		return decodeBody[ClaimSeatTx](raw)
	case TxTypeDistrust, TxTypeExpel:
		return decodeBody[MemberTx](raw)
	case TxTypeCreateTally, TxTypeSubmitProposal:
		return decodeBody[ProposalRefTx](raw)
	case TxTypeTallyUp, TxTypeEnact, TxTypeExecute:
		return decodeBody[TallyRefTx](raw)
	case TxTypeDelegateVote, TxTypeCitizenVote:
		return decodeBody[VoteTx](raw)
	case TxTypeSubmitTransaction:
		return decodeBody[SubmitTransactionTx](raw)
	case TxTypeClaimReferral:
		return decodeBody[ClaimReferralTx](raw)
	case TxTypeSetParam:
		return decodeBody[SetParamTx](raw)
	case TxTypeMigrate:
		return decodeBody[MigrateTx](raw)
	case TxTypeRegisterHumans, TxTypeDeregisterHumans:
		return decodeBody[HumansTx](raw)
	case TxTypeSetSubmissionCounter:
		return decodeBody[SubmissionCounterTx](raw)
	case TxTypeTransfer, TxTypeGovernorSend:
		return decodeBody[TransferTx](raw)
	case TxTypeBlock, TxTypeUnblock:
		return decodeBody[AddressTx](raw)
	default:
		return nil, ErrUnsupportedTxType
	}
}

func UnmarshalAssemblyTx(dat []byte) (btx *AssemblyTx, err error) {
	var env rawEnvelope
	err = json.Unmarshal(dat, &env)
	if err != nil {
		return
	}
	if env.Version != TxVersion1 {
		return nil, ErrUnsupportedTxVersion
	}
	body, err := DecodeBody(env.Type, env.Tx)
	if err != nil {
		return
	}
	btx = &AssemblyTx{
		Version: env.Version,
		Type:    env.Type,
		Nonce:   env.Nonce,
		Sender:  env.Sender,
		Tx:      body,
		Sig:     env.Sig,
	}
	return
}

func MarshalAssemblyTx(btx *AssemblyTx) (dat []byte, err error) {
	return json.Marshal(btx)
}

func EncodeCall(tp TxType, body any) ([]byte, error) {
	return json.Marshal(&Call{Type: tp, Tx: body})
}

func DecodeCall(dat []byte) (call *Call, err error) {
	var raw struct {
		Type TxType          `json:"type"`
		Tx   json.RawMessage `json:"tx"`
	}
	err = json.Unmarshal(dat, &raw)
	if err != nil {
		return nil, ErrInvalidTx
	}
	body, err := DecodeBody(raw.Type, raw.Tx)
	if err != nil {
		return nil, err
	}
	return &Call{Type: raw.Type, Tx: body}, nil
}
