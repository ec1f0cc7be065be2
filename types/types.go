package types

import (
	"fmt"
	"strconv"
	"strings"

	abci "github.com/cometbft/cometbft/abci/types"
)

const (
	EventMemberType      = "member"
	EventAppointType     = "appoint"
	EventSeatType        = "seat"
	EventTallyType       = "tally"
	EventVoteType        = "vote"
	EventTalliedType     = "tallied"
	EventEnactedType     = "enacted"
	EventProposalType    = "proposal"
	EventTransactionType = "transaction"
	EventStepType        = "step"
	EventRewardType      = "reward"
	EventParamType       = "param"
	EventHumansType      = "humans"
	EventTransferType    = "transfer"
	EventBlockType       = "block"
	EventMigrateType     = "migrate"
)

const (
	MemberActionApply    = "apply"
	MemberActionDistrust = "distrust"
	MemberActionExpel    = "expel"

	RewardKindDelegation = "delegation"
	RewardKindExecution  = "execution"
	RewardKindReferred   = "referred"
	RewardKindReferrer   = "referrer"
	RewardKindClaim      = "claim"

	HumansActionRegister   = "register"
	HumansActionDeregister = "deregister"
)

func parseU64(v string) (uint64, bool) {
	n, err := strconv.ParseUint(v, 10, 64)
	return n, err == nil
}

func parseI64(v string) (int64, bool) {
	n, err := strconv.ParseInt(v, 10, 64)
	return n, err == nil
}

type EventMember struct {
	Address string `json:"address"`
	Role    Role   `json:"role"`
	Action  string `json:"action"`
}

func EncodeEventMember(event *EventMember) abci.Event {
	return abci.Event{
		Type: EventMemberType,
		Attributes: []abci.EventAttribute{
			{Key: "address", Value: event.Address, Index: true},
			{Key: "role", Value: fmt.Sprintf("%v", uint8(event.Role)), Index: false},
			{Key: "action", Value: event.Action, Index: true},
		},
	}
}

func DecodeEventMember(originEvent abci.Event) *EventMember {
	event := &EventMember{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "address":
			event.Address = v.Value
		case "role":
			role, ok := parseU64(v.Value)
			if !ok {
				return nil
			}
			event.Role = Role(role)
		case "action":
			event.Action = v.Value
		}
	}
	return event
}

type EventAppoint struct {
	Citizen  string `json:"citizen"`
	Delegate string `json:"delegate"`
	Previous string `json:"previous"`
}

func EncodeEventAppoint(event *EventAppoint) abci.Event {
	return abci.Event{
		Type: EventAppointType,
		Attributes: []abci.EventAttribute{
			{Key: "citizen", Value: event.Citizen, Index: true},
			{Key: "delegate", Value: event.Delegate, Index: true},
			{Key: "previous", Value: event.Previous, Index: false},
		},
	}
}

func DecodeEventAppoint(originEvent abci.Event) *EventAppoint {
	event := &EventAppoint{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "citizen":
			event.Citizen = v.Value
		case "delegate":
			event.Delegate = v.Value
		case "previous":
			event.Previous = v.Value
		}
	}
	return event
}

type EventSeat struct {
	Seat     uint64 `json:"seat"`
	Delegate string `json:"delegate"`
	Previous string `json:"previous"`
	Vacated  bool   `json:"vacated"`
}

func EncodeEventSeat(event *EventSeat) abci.Event {
	return abci.Event{
		Type: EventSeatType,
		Attributes: []abci.EventAttribute{
			{Key: "seat", Value: fmt.Sprintf("%v", event.Seat), Index: true},
			{Key: "delegate", Value: event.Delegate, Index: true},
			{Key: "previous", Value: event.Previous, Index: false},
			{Key: "vacated", Value: fmt.Sprintf("%v", event.Vacated), Index: false},
		},
	}
}

func DecodeEventSeat(originEvent abci.Event) *EventSeat {
	event := &EventSeat{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "seat":
			seat, ok := parseU64(v.Value)
			if !ok {
				return nil
			}
			event.Seat = seat
		case "delegate":
			event.Delegate = v.Value
		case "previous":
			event.Previous = v.Value
		case "vacated":
			vacated, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.Vacated = vacated
		}
	}
	return event
}

type EventTally struct {
	Tally           uint64 `json:"tally"`
	Proposal        uint64 `json:"proposal"`
	Creator         string `json:"creator"`
	Submission      int64  `json:"submission"`
	RevocationStart int64  `json:"revocationStart"`
	VotingEnd       int64  `json:"votingEnd"`
	CitizenCount    uint64 `json:"citizenCount"`
}

func EncodeEventTally(event *EventTally) abci.Event {
	return abci.Event{
		Type: EventTallyType,
		Attributes: []abci.EventAttribute{
			{Key: "tally", Value: fmt.Sprintf("%v", event.Tally), Index: true},
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "creator", Value: event.Creator, Index: false},
			{Key: "submission", Value: fmt.Sprintf("%v", event.Submission), Index: false},
			{Key: "revocationStart", Value: fmt.Sprintf("%v", event.RevocationStart), Index: false},
			{Key: "votingEnd", Value: fmt.Sprintf("%v", event.VotingEnd), Index: false},
			{Key: "citizenCount", Value: fmt.Sprintf("%v", event.CitizenCount), Index: false},
		},
	}
}

func DecodeEventTally(originEvent abci.Event) *EventTally {
	event := &EventTally{}
	for _, v := range originEvent.Attributes {
		var ok = true
		switch v.Key {
		case "tally":
			event.Tally, ok = parseU64(v.Value)
		case "proposal":
			event.Proposal, ok = parseU64(v.Value)
		case "creator":
			event.Creator = v.Value
		case "submission":
			event.Submission, ok = parseI64(v.Value)
		case "revocationStart":
			event.RevocationStart, ok = parseI64(v.Value)
		case "votingEnd":
			event.VotingEnd, ok = parseI64(v.Value)
		case "citizenCount":
			event.CitizenCount, ok = parseU64(v.Value)
		}
		if !ok {
			return nil
		}
	}
	return event
}

type EventVote struct {
	Tally uint64 `json:"tally"`
	Voter string `json:"voter"`
	Role  Role   `json:"role"`
	Vote  Vote   `json:"vote"`
}

func EncodeEventVote(event *EventVote) abci.Event {
	return abci.Event{
		Type: EventVoteType,
		Attributes: []abci.EventAttribute{
			{Key: "tally", Value: fmt.Sprintf("%v", event.Tally), Index: true},
			{Key: "voter", Value: event.Voter, Index: true},
			{Key: "role", Value: fmt.Sprintf("%v", uint8(event.Role)), Index: false},
			{Key: "vote", Value: fmt.Sprintf("%v", uint8(event.Vote)), Index: false},
		},
	}
}

func DecodeEventVote(originEvent abci.Event) *EventVote {
	event := &EventVote{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "tally":
			tally, ok := parseU64(v.Value)
			if !ok {
				return nil
			}
			event.Tally = tally
		case "voter":
			event.Voter = v.Value
		case "role":
			role, ok := parseU64(v.Value)
			if !ok {
				return nil
			}
			event.Role = Role(role)
		case "vote":
			vote, ok := parseU64(v.Value)
			if !ok {
				return nil
			}
			event.Vote = Vote(vote)
		}
	}
	return event
}

type EventTallied struct {
	Tally         uint64      `json:"tally"`
	Status        TallyStatus `json:"status"`
	DelegatedYays uint64      `json:"delegatedYays"`
	CitizenYays   uint64      `json:"citizenYays"`
	CitizenNays   uint64      `json:"citizenNays"`
	CitizenCount  uint64      `json:"citizenCount"`
}

func EncodeEventTallied(event *EventTallied) abci.Event {
	return abci.Event{
		Type: EventTalliedType,
		Attributes: []abci.EventAttribute{
			{Key: "tally", Value: fmt.Sprintf("%v", event.Tally), Index: true},
			{Key: "status", Value: fmt.Sprintf("%v", uint64(event.Status)), Index: true},
			{Key: "delegatedYays", Value: fmt.Sprintf("%v", event.DelegatedYays), Index: false},
			{Key: "citizenYays", Value: fmt.Sprintf("%v", event.CitizenYays), Index: false},
			{Key: "citizenNays", Value: fmt.Sprintf("%v", event.CitizenNays), Index: false},
			{Key: "citizenCount", Value: fmt.Sprintf("%v", event.CitizenCount), Index: false},
		},
	}
}

func DecodeEventTallied(originEvent abci.Event) *EventTallied {
	event := &EventTallied{}
	for _, v := range originEvent.Attributes {
		n, ok := parseU64(v.Value)
		if !ok {
			return nil
		}
		switch v.Key {
		case "tally":
			event.Tally = n
		case "status":
			event.Status = TallyStatus(n)
		case "delegatedYays":
			event.DelegatedYays = n
		case "citizenYays":
			event.CitizenYays = n
		case "citizenNays":
			event.CitizenNays = n
		case "citizenCount":
			event.CitizenCount = n
		}
	}
	return event
}

type EventEnacted struct {
	Tally    uint64 `json:"tally"`
	Proposal uint64 `json:"proposal"`
	Executor string `json:"executor"`
}

func EncodeEventEnacted(event *EventEnacted) abci.Event {
	return abci.Event{
		Type: EventEnactedType,
		Attributes: []abci.EventAttribute{
			{Key: "tally", Value: fmt.Sprintf("%v", event.Tally), Index: true},
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "executor", Value: event.Executor, Index: false},
		},
	}
}

func DecodeEventEnacted(originEvent abci.Event) *EventEnacted {
	event := &EventEnacted{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "tally":
			tally, ok := parseU64(v.Value)
			if !ok {
				return nil
			}
			event.Tally = tally
		case "proposal":
			proposal, ok := parseU64(v.Value)
			if !ok {
				return nil
			}
			event.Proposal = proposal
		case "executor":
			event.Executor = v.Value
		}
	}
	return event
}

type EventProposal struct {
	Proposal  uint64         `json:"proposal"`
	Status    ProposalStatus `json:"status"`
	StepCount uint64         `json:"stepCount"`
}

func EncodeEventProposal(event *EventProposal) abci.Event {
	return abci.Event{
		Type: EventProposalType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "status", Value: fmt.Sprintf("%v", uint64(event.Status)), Index: false},
			{Key: "stepCount", Value: fmt.Sprintf("%v", event.StepCount), Index: false},
		},
	}
}

func DecodeEventProposal(originEvent abci.Event) *EventProposal {
	event := &EventProposal{}
	for _, v := range originEvent.Attributes {
		n, ok := parseU64(v.Value)
		if !ok {
			return nil
		}
		switch v.Key {
		case "proposal":
			event.Proposal = n
		case "status":
			event.Status = ProposalStatus(n)
		case "stepCount":
			event.StepCount = n
		}
	}
	return event
}

type EventTransaction struct {
	Proposal    uint64 `json:"proposal"`
	Step        uint64 `json:"step"`
	Transaction uint64 `json:"transaction"`
	Destination string `json:"destination"`
	Value       string `json:"value"`
	Data        []byte `json:"data"`
}

func EncodeEventTransaction(event *EventTransaction) abci.Event {
	return abci.Event{
		Type: EventTransactionType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "step", Value: fmt.Sprintf("%v", event.Step), Index: false},
			{Key: "transaction", Value: fmt.Sprintf("%v", event.Transaction), Index: true},
			{Key: "destination", Value: event.Destination, Index: false},
			{Key: "value", Value: event.Value, Index: false},
			{Key: "data", Value: string(event.Data), Index: false},
		},
	}
}

func DecodeEventTransaction(originEvent abci.Event) *EventTransaction {
	event := &EventTransaction{}
	for _, v := range originEvent.Attributes {
		var ok = true
		switch v.Key {
		case "proposal":
			event.Proposal, ok = parseU64(v.Value)
		case "step":
			event.Step, ok = parseU64(v.Value)
		case "transaction":
			event.Transaction, ok = parseU64(v.Value)
		case "destination":
			event.Destination = v.Value
		case "value":
			event.Value = v.Value
		case "data":
			event.Data = []byte(v.Value)
		}
		if !ok {
			return nil
		}
	}
	return event
}

type EventStep struct {
	Proposal      uint64         `json:"proposal"`
	Step          uint64         `json:"step"`
	ExecutedSteps uint64         `json:"executedSteps"`
	Status        ProposalStatus `json:"status"`
}

func EncodeEventStep(event *EventStep) abci.Event {
	return abci.Event{
		Type: EventStepType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "step", Value: fmt.Sprintf("%v", event.Step), Index: false},
			{Key: "executedSteps", Value: fmt.Sprintf("%v", event.ExecutedSteps), Index: false},
			{Key: "status", Value: fmt.Sprintf("%v", uint64(event.Status)), Index: false},
		},
	}
}

func DecodeEventStep(originEvent abci.Event) *EventStep {
	event := &EventStep{}
	for _, v := range originEvent.Attributes {
		n, ok := parseU64(v.Value)
		if !ok {
			return nil
		}
		switch v.Key {
		case "proposal":
			event.Proposal = n
		case "step":
			event.Step = n
		case "executedSteps":
			event.ExecutedSteps = n
		case "status":
			event.Status = ProposalStatus(n)
		}
	}
	return event
}

type EventReward struct {
	Address string `json:"address"`
	Kind    string `json:"kind"`
	Amount  string `json:"amount"`
}

func EncodeEventReward(event *EventReward) abci.Event {
	return abci.Event{
		Type: EventRewardType,
		Attributes: []abci.EventAttribute{
			{Key: "address", Value: event.Address, Index: true},
			{Key: "kind", Value: event.Kind, Index: true},
			{Key: "amount", Value: event.Amount, Index: false},
		},
	}
}

func DecodeEventReward(originEvent abci.Event) *EventReward {
	event := &EventReward{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "address":
			event.Address = v.Value
		case "kind":
			event.Kind = v.Value
		case "amount":
			event.Amount = v.Value
		}
	}
	return event
}

type EventParam struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func EncodeEventParam(event *EventParam) abci.Event {
	return abci.Event{
		Type: EventParamType,
		Attributes: []abci.EventAttribute{
			{Key: "name", Value: event.Name, Index: true},
			{Key: "value", Value: event.Value, Index: false},
		},
	}
}

func DecodeEventParam(originEvent abci.Event) *EventParam {
	event := &EventParam{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "name":
			event.Name = v.Value
		case "value":
			event.Value = v.Value
		}
	}
	return event
}

type EventHumans struct {
	Action     string   `json:"action"`
	Addresses  []string `json:"addresses"`
	HumanCount uint64   `json:"humanCount"`
	Timestamp  int64    `json:"timestamp"`
}

func EncodeEventHumans(event *EventHumans) abci.Event {
	return abci.Event{
		Type: EventHumansType,
		Attributes: []abci.EventAttribute{
			{Key: "action", Value: event.Action, Index: true},
			{Key: "addresses", Value: strings.Join(event.Addresses, ","), Index: false},
			{Key: "humanCount", Value: fmt.Sprintf("%v", event.HumanCount), Index: false},
			{Key: "timestamp", Value: fmt.Sprintf("%v", event.Timestamp), Index: false},
		},
	}
}

func DecodeEventHumans(originEvent abci.Event) *EventHumans {
	event := &EventHumans{Addresses: []string{}}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "action":
			event.Action = v.Value
		case "addresses":
			if v.Value != "" {
				event.Addresses = strings.Split(v.Value, ",")
			}
		case "humanCount":
			count, ok := parseU64(v.Value)
			if !ok {
				return nil
			}
			event.HumanCount = count
		case "timestamp":
			ts, ok := parseI64(v.Value)
			if !ok {
				return nil
			}
			event.Timestamp = ts
		}
	}
	return event
}

type EventTransfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func EncodeEventTransfer(event *EventTransfer) abci.Event {
	return abci.Event{
		Type: EventTransferType,
		Attributes: []abci.EventAttribute{
			{Key: "from", Value: event.From, Index: true},
			{Key: "to", Value: event.To, Index: true},
			{Key: "amount", Value: event.Amount, Index: false},
		},
	}
}

type EventBlock struct {
	Address string `json:"address"`
	Blocked bool   `json:"blocked"`
}

func EncodeEventBlock(event *EventBlock) abci.Event {
	return abci.Event{
		Type: EventBlockType,
		Attributes: []abci.EventAttribute{
			{Key: "address", Value: event.Address, Index: true},
			{Key: "blocked", Value: fmt.Sprintf("%v", event.Blocked), Index: false},
		},
	}
}

type EventMigrate struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

func EncodeEventMigrate(event *EventMigrate) abci.Event {
	return abci.Event{
		Type: EventMigrateType,
		Attributes: []abci.EventAttribute{
			{Key: "from", Value: fmt.Sprintf("%v", event.From), Index: false},
			{Key: "to", Value: fmt.Sprintf("%v", event.To), Index: true},
		},
	}
}
