package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/calehh/assembly-app/ledger"
	"github.com/calehh/assembly-app/tx"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

var (
	KeyState = "s"
	KeyNonce = "n%x"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrTxNonceInvalid  = errors.New("nonce invalid")
	ErrNoParent        = errors.New("state has no parent")
	ErrBranchNotRoot   = errors.New("only the block state can be updated")
	ErrNoDispatcher    = errors.New("no dispatcher for inner calls")
	ErrStateNotCreated = errors.New("assembly genesis not applied")
)

type Header struct {
	ChainId  string `json:"chainId"`
	Height   uint64 `json:"height"`
	Time     int64  `json:"time"`
	Hash     []byte `json:"hash"`
	RootHash []byte `json:"rootHash"`
}

func (h *Header) clone() *Header {
	n := *h
	n.Hash = common.CopyBytes(h.Hash)
	n.RootHash = common.CopyBytes(h.RootHash)
	return &n
}

// Dispatcher runs an inner call carried by a proposal transaction.
type Dispatcher interface {
	Dispatch(st *State, sender common.Address, call *tx.Call) error
}

// State is the explicit store every operation runs against. A block state
// sits on top of the iavl tree; each transaction works on a Branch of it
// and is merged back with Write only when it succeeds.
type State struct {
	logger cmtlog.Logger
	db     *iavl.MutableTree
	dbVer  int64

	header     *Header
	store      *cacheKV
	parent     *State
	events     []abci.Event
	dispatcher Dispatcher
}

func newState(db *iavl.MutableTree, logger cmtlog.Logger) *State {
	return &State{
		logger: logger,
		db:     db,
		dbVer:  0,
		header: new(Header),
		store:  newCacheKV(&treeStore{tree: db}),
	}
}

func (s *State) nextState() *State {
	n := &State{
		logger:     s.logger,
		db:         s.db,
		dbVer:      s.dbVer,
		header:     s.header.clone(),
		store:      newCacheKV(&treeStore{tree: s.db}),
		dispatcher: s.dispatcher,
	}
	if s.header.Hash != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

// snapshot returns a throwaway state reading the committed version. Writes
// stay in its cache.
func (s *State) snapshot() (*State, error) {
	var r reader
	if s.dbVer > 0 {
		imm, err := s.db.GetImmutable(s.dbVer)
		if err != nil {
			return nil, err
		}
		r = imm
	}
	return &State{
		logger:     s.logger,
		db:         s.db,
		dbVer:      s.dbVer,
		header:     s.header.clone(),
		store:      newCacheKV(&snapshotStore{r: r}),
		dispatcher: s.dispatcher,
	}, nil
}

// Branch opens a write-cache child of s.
func (s *State) Branch() *State {
	return &State{
		logger:     s.logger,
		db:         s.db,
		dbVer:      s.dbVer,
		header:     s.header,
		store:      newCacheKV(s.store),
		parent:     s,
		dispatcher: s.dispatcher,
	}
}

// Write merges the branch and its events into the parent.
func (s *State) Write() error {
	if s.parent == nil {
		return ErrNoParent
	}
	if err := s.store.Write(); err != nil {
		return err
	}
	s.parent.events = append(s.parent.events, s.events...)
	s.events = nil
	return nil
}

func (s *State) load() (err error) {
	val, err := s.db.Get([]byte(KeyState))
	if err != nil {
		return err
	}
	if val == nil {
		return nil
	}
	err = json.Unmarshal(val, s.header)
	if err != nil {
		return
	}
	h := s.db.Hash()
	if h != nil {
		s.calcHash(h, true)
	}
	return
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		s.header.RootHash = common.CopyBytes(rootHash)
		s.header.Hash = common.CopyBytes(h[:])
	}
	return
}

// Update flushes the block state into the tree and returns the working
// hash. The tree is rolled back if anything fails.
func (s *State) Update() (h common.Hash, err error) {
	if s.parent != nil {
		return h, ErrBranchNotRoot
	}
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	val, err := json.Marshal(s.header)
	if err != nil {
		return
	}
	if err = s.store.Set([]byte(KeyState), val); err != nil {
		return
	}
	if err = s.store.Write(); err != nil {
		return
	}
	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	return
}

func (s *State) save() (h common.Hash, err error) {
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}
	s.dbVer = ver
	h = s.calcHash(hash, true)
	return
}

// WorkingHash is the hash the tree would have if s were flushed now. It is
// only meant for tests and diagnostics: it flushes and rolls back.
func (s *State) WorkingHash() (h common.Hash, err error) {
	root := s
	for root.parent != nil {
		root = root.parent
	}
	if root != s {
		return h, ErrBranchNotRoot
	}
	pending := make(map[string]cacheEntry, len(s.store.dirty))
	for k, v := range s.store.dirty {
		pending[k] = v
	}
	if err = s.store.Write(); err != nil {
		s.db.Rollback()
		return
	}
	h = crypto.Keccak256Hash(s.db.WorkingHash())
	s.db.Rollback()
	s.store.dirty = pending
	return
}

func (s *State) Header() *Header {
	return s.header
}

func (s *State) Hash() (h common.Hash) {
	return common.BytesToHash(s.header.Hash)
}

func (s *State) SetChainId(chainId string) {
	s.header.ChainId = chainId
}

// Now is the block time every operation reads.
func (s *State) Now() int64 {
	return s.header.Time
}

func (s *State) SetTime(t int64) {
	s.header.Time = t
}

func (s *State) SetDispatcher(d Dispatcher) {
	s.dispatcher = d
}

func (s *State) Logger() cmtlog.Logger {
	return s.logger
}

// Events returns the outbox of s.
func (s *State) Events() []abci.Event {
	return s.events
}

func (s *State) emit(ev abci.Event) {
	s.events = append(s.events, ev)
}

func (s *State) Get(key []byte) ([]byte, error) {
	return s.store.Get(key)
}

func (s *State) Set(key, value []byte) error {
	return s.store.Set(key, value)
}

func (s *State) Delete(key []byte) error {
	return s.store.Delete(key)
}

func (s *State) getJSON(key string, v any) (found bool, err error) {
	val, err := s.store.Get([]byte(key))
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, nil
	}
	if err = json.Unmarshal(val, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *State) setJSON(key string, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.store.Set([]byte(key), val)
}

func (s *State) getUint(key string) (n uint64, err error) {
	val, err := s.store.Get([]byte(key))
	if err != nil || val == nil {
		return 0, err
	}
	err = rlp.DecodeBytes(val, &n)
	return
}

func (s *State) setUint(key string, n uint64) error {
	val, err := rlp.EncodeToBytes(n)
	if err != nil {
		return err
	}
	return s.store.Set([]byte(key), val)
}

func (s *State) getFlag(key string) (bool, error) {
	val, err := s.store.Get([]byte(key))
	if err != nil {
		return false, err
	}
	return len(val) > 0, nil
}

func (s *State) setFlag(key string, on bool) error {
	if on {
		return s.store.Set([]byte(key), []byte{1})
	}
	return s.store.Delete([]byte(key))
}

// Ledger opens the value ledger over s, governed by the current owner.
func (s *State) Ledger() (*ledger.Ledger, error) {
	roles, err := s.Roles()
	if err != nil {
		return nil, err
	}
	return ledger.New(s, roles.Owner), nil
}

func (s *State) Nonce(addr common.Address) (uint64, error) {
	return s.getUint(fmt.Sprintf(KeyNonce, addr.Bytes()))
}

func (s *State) IncNonce(addr common.Address) error {
	n, err := s.Nonce(addr)
	if err != nil {
		return err
	}
	return s.setUint(fmt.Sprintf(KeyNonce, addr.Bytes()), n+1)
}

// Verify checks the envelope signature and nonce of btx.
func (s *State) Verify(btx *tx.AssemblyTx, allowNonceGap bool) (err error) {
	if err = btx.VerifySender(s.header.ChainId); err != nil {
		return
	}
	nonce, err := s.Nonce(btx.Sender)
	if err != nil {
		return
	}
	if !(nonce == btx.Nonce || (allowNonceGap && nonce < btx.Nonce)) {
		return ErrTxNonceInvalid
	}
	return nil
}
