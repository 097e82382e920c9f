package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/starkedge/mempool/state"
	"github.com/starkedge/mempool/txpool"
	"github.com/starkedge/mempool/types"
)

// Account is the committed view of a contract account
type Account struct {
	Nonce     uint64
	Balance   *uint256.Int
	ClassHash types.Hash
	Deployed  bool
}

func (a *Account) copy() *Account {
	aa := *a
	aa.Balance = new(uint256.Int).Set(a.balance())

	return &aa
}

func (a *Account) balance() *uint256.Int {
	if a.Balance == nil {
		return new(uint256.Int)
	}

	return a.Balance
}

// State is an in-process committed state used by the dev sequencer.
// Accounts that were never touched have nonce zero and no balance
type State struct {
	lock     sync.RWMutex
	accounts map[types.Address]*Account
	classes  map[types.Hash]struct{}
}

var (
	_ state.Reader   = (*State)(nil)
	_ state.Executor = (*State)(nil)
)

func NewState() *State {
	return &State{
		accounts: map[types.Address]*Account{},
		classes:  map[types.Hash]struct{}{},
	}
}

// Genesis account allocation
type GenesisAccount struct {
	Address   types.Address
	Balance   *uint256.Int
	ClassHash types.Hash
}

// NewStateWithGenesis creates a state with the given accounts deployed
// and funded, and their classes declared
func NewStateWithGenesis(alloc []GenesisAccount) *State {
	s := NewState()

	for _, acc := range alloc {
		s.classes[acc.ClassHash] = struct{}{}
		s.accounts[acc.Address] = &Account{
			Balance:   new(uint256.Int).Set(acc.Balance),
			ClassHash: acc.ClassHash,
			Deployed:  true,
		}
	}

	return s
}

// SetBalance sets the balance of an account, creating it if needed
func (s *State) SetBalance(addr types.Address, balance *uint256.Int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.getOrCreate(addr).Balance = new(uint256.Int).Set(balance)
}

// SetNonce sets the nonce of an account, creating it if needed
func (s *State) SetNonce(addr types.Address, nonce uint64) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.getOrCreate(addr).Nonce = nonce
}

// DeclareClass marks a class hash as declared
func (s *State) DeclareClass(classHash types.Hash) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.classes[classHash] = struct{}{}
}

func (s *State) GetNonce(_ context.Context, addr types.Address) (uint64, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if acc, ok := s.accounts[addr]; ok {
		return acc.Nonce, nil
	}

	return 0, nil
}

func (s *State) GetBalance(_ context.Context, addr types.Address) (*uint256.Int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if acc, ok := s.accounts[addr]; ok {
		return new(uint256.Int).Set(acc.balance()), nil
	}

	return new(uint256.Int), nil
}

// GetAccount returns a copy of the account, if it exists
func (s *State) GetAccount(addr types.Address) (*Account, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	acc, ok := s.accounts[addr]
	if !ok {
		return nil, false
	}

	return acc.copy(), true
}

// IsDeclared reports whether the class has been declared
func (s *State) IsDeclared(classHash types.Hash) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	_, ok := s.classes[classHash]

	return ok
}

// Nonces returns the nonce of every known account
func (s *State) Nonces() map[types.Address]uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()

	nonces := make(map[types.Address]uint64, len(s.accounts))
	for addr, acc := range s.accounts {
		nonces[addr] = acc.Nonce
	}

	return nonces
}

// Apply executes a transaction against the state. The sender pays the full
// max fee and its nonce is incremented. A failing transaction leaves the
// state untouched
func (s *State) Apply(tx *types.Transaction) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	acc := s.getOrCreate(tx.Sender)

	if tx.Nonce != acc.Nonce {
		return fmt.Errorf("%w: expected %d, got %d", state.ErrInvalidNonce, acc.Nonce, tx.Nonce)
	}

	fee := tx.FeeOrZero()
	if acc.balance().Lt(fee) {
		return fmt.Errorf("%w: balance %s, fee %s", state.ErrNotEnoughBalance, acc.balance(), fee)
	}

	switch tx.Type {
	case types.DeclareTx:
		if _, ok := s.classes[tx.ClassHash]; ok {
			return fmt.Errorf("%w: %s", state.ErrClassAlreadyDeclared, tx.ClassHash)
		}

		s.classes[tx.ClassHash] = struct{}{}

	case types.DeployAccountTx:
		if acc.Deployed {
			return fmt.Errorf("%w: %s", state.ErrAccountAlreadyDeployed, tx.Sender)
		}

		if _, ok := s.classes[tx.ClassHash]; !ok {
			return fmt.Errorf("%w: %s", state.ErrClassNotDeclared, tx.ClassHash)
		}

		acc.Deployed = true
		acc.ClassHash = tx.ClassHash

	case types.InvokeTx:
		if !acc.Deployed {
			return fmt.Errorf("%w: %s", state.ErrAccountNotDeployed, tx.Sender)
		}
	}

	acc.Balance = new(uint256.Int).Sub(acc.balance(), fee)
	acc.Nonce++

	return nil
}

func (s *State) getOrCreate(addr types.Address) *Account {
	acc, ok := s.accounts[addr]
	if !ok {
		acc = &Account{Balance: new(uint256.Int)}
		s.accounts[addr] = acc
	}

	return acc
}

// Validator checks transactions against the committed state
type Validator struct {
	state *State
}

func NewValidator(state *State) *Validator {
	return &Validator{state: state}
}

// Validate rejects declaring a class that is already declared and deploying
// an account that already exists or whose class is unknown
func (v *Validator) Validate(_ context.Context, tx *types.Transaction, _ txpool.StateSnapshot) error {
	switch tx.Type {
	case types.DeclareTx:
		if v.state.IsDeclared(tx.ClassHash) {
			return fmt.Errorf("%w: %s", state.ErrClassAlreadyDeclared, tx.ClassHash)
		}

	case types.DeployAccountTx:
		if acc, ok := v.state.GetAccount(tx.Sender); ok && acc.Deployed {
			return fmt.Errorf("%w: %s", state.ErrAccountAlreadyDeployed, tx.Sender)
		}

		if !v.state.IsDeclared(tx.ClassHash) {
			return fmt.Errorf("%w: %s", state.ErrClassNotDeclared, tx.ClassHash)
		}
	}

	return nil
}
