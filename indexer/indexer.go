package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"time"

	"github.com/calehh/assembly-app/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	cmtos "github.com/cometbft/cometbft/libs/os"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

var ErrDecodeEvent = errors.New("decode event fail")

// ChainIndexer follows a node over RPC and mirrors the assembly events of
// every committed block into sqlite.
type ChainIndexer struct {
	logger        cmtlog.Logger
	Url           string
	Height        int64
	interval      time.Duration
	db            *gorm.DB
	cli           *comethttp.HTTP
	eventHandlers map[string]eventHandler
}

type eventHandler func(db *gorm.DB, event abci.Event, height int64) error

func OpenDB(dbPath string) (*gorm.DB, error) {
	if err := cmtos.EnsureDir(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Height{}, &Member{}, &Seat{}, &Tally{}, &Vote{}, &Proposal{},
		&Transaction{}, &Reward{}, &Human{}, &EventRecord{}).Error; err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func NewChainIndexer(logger cmtlog.Logger, dbPath string, chainUrl string, interval time.Duration) (*ChainIndexer, error) {
	logger.Info("NewChainIndexer", "dbPath", dbPath, "url", chainUrl)
	cli, err := comethttp.New(chainUrl, "/websocket")
	if err != nil {
		return nil, err
	}
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	h := Height{Id: 1}
	if err = db.First(&h).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		db.Close()
		return nil, err
	}
	if interval <= 0 {
		interval = time.Second
	}
	c := &ChainIndexer{
		logger:   logger.With("module", "indexer"),
		Url:      chainUrl,
		Height:   int64(h.Height + 1),
		interval: interval,
		db:       db,
		cli:      cli,
	}
	c.eventHandlers = map[string]eventHandler{
		types.EventMemberType:      c.handleEventMember,
		types.EventAppointType:     c.handleEventAppoint,
		types.EventSeatType:        c.handleEventSeat,
		types.EventTallyType:       c.handleEventTally,
		types.EventVoteType:        c.handleEventVote,
		types.EventTalliedType:     c.handleEventTallied,
		types.EventEnactedType:     c.handleEventEnacted,
		types.EventProposalType:    c.handleEventProposal,
		types.EventTransactionType: c.handleEventTransaction,
		types.EventStepType:        c.handleEventStep,
		types.EventRewardType:      c.handleEventReward,
		types.EventHumansType:      c.handleEventHumans,
	}
	return c, nil
}

func (c *ChainIndexer) Close() error {
	return c.db.Close()
}

// IndexBlock stores the events of the successful transactions of one block
// and advances the height marker, all in one database transaction.
func (c *ChainIndexer) IndexBlock(height int64, results []*abci.ExecTxResult) error {
	db := c.db.Begin()
	if err := db.Error; err != nil {
		return err
	}
	now := time.Now().Unix()
	for i, res := range results {
		if res == nil || res.Code != abci.CodeTypeOK {
			continue
		}
		for j, event := range res.Events {
			if err := c.saveEvent(db, event, height, i, j, now); err != nil {
				db.Rollback()
				return err
			}
			if h, ok := c.eventHandlers[event.Type]; ok {
				if err := h(db, event, height); err != nil {
					db.Rollback()
					return err
				}
			}
		}
	}
	if err := db.Save(&Height{Id: 1, Height: uint64(height)}).Error; err != nil {
		db.Rollback()
		return err
	}
	return db.Commit().Error
}

func (c *ChainIndexer) saveEvent(db *gorm.DB, event abci.Event, height int64, txIndex, eventIndex int, now int64) error {
	attrs := make(map[string]string, len(event.Attributes))
	for _, a := range event.Attributes {
		attrs[a.Key] = a.Value
	}
	dat, err := json.Marshal(attrs)
	if err != nil {
		return err
	}
	return db.Create(&EventRecord{
		Id:              uuid.NewString(),
		Height:          uint64(height),
		TxIndex:         txIndex,
		EventIndex:      eventIndex,
		Type:            event.Type,
		Attributes:      string(dat),
		CreateTimestamp: now,
	}).Error
}

func (c *ChainIndexer) handleEventMember(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventMember(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	var m Member
	if err := db.FirstOrInit(&m, "address = ?", ev.Address).Error; err != nil {
		return err
	}
	m.Address = ev.Address
	m.Height = uint64(height)
	switch ev.Action {
	case types.MemberActionApply:
		m.Role = uint8(ev.Role)
		m.Distrusted = false
		m.Expelled = false
	case types.MemberActionDistrust:
		m.Distrusted = true
	case types.MemberActionExpel:
		m.Role = uint8(types.RoleNone)
		m.Delegate = ""
		m.Expelled = true
		// citizens of an expelled delegate lose their appointment
		err := db.Model(&Member{}).Where("delegate = ?", ev.Address).
			Updates(map[string]interface{}{"delegate": "", "height": uint64(height)}).Error
		if err != nil {
			return err
		}
	}
	return db.Save(&m).Error
}

func (c *ChainIndexer) handleEventAppoint(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventAppoint(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	var m Member
	if err := db.FirstOrInit(&m, "address = ?", ev.Citizen).Error; err != nil {
		return err
	}
	m.Address = ev.Citizen
	m.Delegate = ev.Delegate
	m.Height = uint64(height)
	return db.Save(&m).Error
}

func (c *ChainIndexer) handleEventSeat(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventSeat(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	var s Seat
	if err := db.FirstOrInit(&s, "seat = ?", ev.Seat).Error; err != nil {
		return err
	}
	s.Seat = ev.Seat
	s.Delegate = ev.Delegate
	s.Vacant = ev.Vacated
	s.Height = uint64(height)
	return db.Save(&s).Error
}

func (c *ChainIndexer) handleEventTally(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventTally(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	var t Tally
	if err := db.FirstOrInit(&t, "tally = ?", ev.Tally).Error; err != nil {
		return err
	}
	t.Tally = ev.Tally
	t.Proposal = ev.Proposal
	t.Creator = ev.Creator
	t.Submission = ev.Submission
	t.RevocationStart = ev.RevocationStart
	t.VotingEnd = ev.VotingEnd
	t.CitizenCount = ev.CitizenCount
	t.NewHeight = uint64(height)
	return db.Save(&t).Error
}

func (c *ChainIndexer) handleEventVote(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventVote(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	return db.Create(&Vote{
		Tally:  ev.Tally,
		Voter:  ev.Voter,
		Role:   uint8(ev.Role),
		Vote:   uint8(ev.Vote),
		Height: uint64(height),
	}).Error
}

func (c *ChainIndexer) handleEventTallied(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventTallied(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	var t Tally
	if err := db.FirstOrInit(&t, "tally = ?", ev.Tally).Error; err != nil {
		return err
	}
	t.Tally = ev.Tally
	t.Status = uint64(ev.Status)
	t.DelegatedYays = ev.DelegatedYays
	t.CitizenYays = ev.CitizenYays
	t.CitizenNays = ev.CitizenNays
	t.CitizenCount = ev.CitizenCount
	if ev.Status.Final() && t.SettleHeight == 0 {
		t.SettleHeight = uint64(height)
	}
	return db.Save(&t).Error
}

func (c *ChainIndexer) handleEventEnacted(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventEnacted(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	var t Tally
	if err := db.FirstOrInit(&t, "tally = ?", ev.Tally).Error; err != nil {
		return err
	}
	t.Tally = ev.Tally
	t.Proposal = ev.Proposal
	t.Status = uint64(types.TallyEnacted)
	t.Executor = ev.Executor
	return db.Save(&t).Error
}

func (c *ChainIndexer) handleEventProposal(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventProposal(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	var p Proposal
	if err := db.FirstOrInit(&p, "proposal = ?", ev.Proposal).Error; err != nil {
		return err
	}
	if p.Id == 0 {
		p.NewHeight = uint64(height)
	}
	p.Proposal = ev.Proposal
	p.Status = uint64(ev.Status)
	p.StepCount = ev.StepCount
	return db.Save(&p).Error
}

func (c *ChainIndexer) handleEventTransaction(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventTransaction(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	t := Transaction{
		TxId:        ev.Transaction,
		Proposal:    ev.Proposal,
		Step:        ev.Step,
		Destination: ev.Destination,
		Value:       ev.Value,
	}
	if len(ev.Data) > 0 {
		t.Data = hexutil.Encode(ev.Data)
	}
	return db.Create(&t).Error
}

func (c *ChainIndexer) handleEventStep(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventStep(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	var p Proposal
	if err := db.FirstOrInit(&p, "proposal = ?", ev.Proposal).Error; err != nil {
		return err
	}
	p.Proposal = ev.Proposal
	p.ExecutedSteps = ev.ExecutedSteps
	p.Status = uint64(ev.Status)
	return db.Save(&p).Error
}

func (c *ChainIndexer) handleEventReward(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventReward(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	return db.Create(&Reward{
		Address: ev.Address,
		Kind:    ev.Kind,
		Amount:  ev.Amount,
		Height:  uint64(height),
	}).Error
}

// handleEventHumans replays registry changes so the human table matches the
// chain's oracle set.
func (c *ChainIndexer) handleEventHumans(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventHumans(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	if len(ev.Addresses) == 0 {
		return nil
	}
	switch ev.Action {
	case types.HumansActionRegister:
		for _, a := range ev.Addresses {
			if err := db.Save(&Human{Address: a, Height: uint64(height)}).Error; err != nil {
				return err
			}
		}
	case types.HumansActionDeregister:
		return db.Where("address IN (?)", ev.Addresses).Delete(Human{}).Error
	}
	return nil
}

func (c *ChainIndexer) reconnect() error {
	if c.cli != nil && c.cli.IsRunning() {
		return nil
	}
	if c.cli != nil {
		c.cli.Stop()
	}
	cli, err := comethttp.New(c.Url, "/websocket")
	if err != nil {
		return err
	}
	c.cli = cli
	return nil
}

// sync indexes every block up to the node's latest height.
func (c *ChainIndexer) sync(ctx context.Context) error {
	status, err := c.cli.Status(ctx)
	if err != nil {
		if rerr := c.reconnect(); rerr != nil {
			c.logger.Error("reconnect fail", "err", rerr)
		}
		return err
	}
	for status.SyncInfo.LatestBlockHeight >= c.Height {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		height := c.Height
		res, err := c.cli.BlockResults(ctx, &height)
		if err != nil {
			return err
		}
		if err = c.IndexBlock(height, res.TxsResults); err != nil {
			return err
		}
		c.logger.Debug("indexed block", "height", height, "txs", len(res.TxsResults))
		c.Height++
	}
	return nil
}

func (c *ChainIndexer) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.sync(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error("indexer sync fail", "height", c.Height, "err", err)
			}
		}
	}
}
