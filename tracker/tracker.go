// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tracker is the single-writer actor owning the current chain
// head (spec.md §4.7): {storage, open block, runner, reader, mode}.
// Leader-only and follower-only operations fail fast with
// fault.ErrInvalidMode outside their mode, exactly the guard bitmarkd's
// mode package applies to chain-mode-sensitive operations.
package tracker

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/hayesgm/daisy/block"
	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/merkledag"
	"github.com/hayesgm/daisy/storage"
	"github.com/hayesgm/daisy/txqueue"
)

// Mode - which role this node's Tracker is playing
type Mode int

// the two possible modes
const (
	Follower Mode = iota
	Leader
)

func (m Mode) String() string {
	switch m {
	case Leader:
		return "leader"
	case Follower:
		return "follower"
	default:
		return "*unknown*"
	}
}

// Config - everything Initialise needs to wire up the Tracker
type Config struct {
	Storage    *storage.Storage
	Serializer block.Serializer
	Runner     block.Runner
	Reader     block.Reader
	Mode       Mode
}

type txqueueDrainer struct {
	storage    *storage.Storage
	serializer block.Serializer
}

func (d txqueueDrainer) DrainForBlock(root merkledag.Hash, blockNumber uint64) ([]block.Transaction, error) {
	return txqueue.DrainForBlock(d.storage, d.serializer, root, blockNumber)
}

var globalData struct {
	sync.RWMutex
	log *logger.L

	storage    *storage.Storage
	serializer block.Serializer
	runner     block.Runner
	reader     block.Reader
	drainer    block.TransactionDrainer
	mode       Mode

	openBlock     block.Block
	openBlockHash merkledag.Hash

	initialised bool
}

// Initialise - start the Tracker with initial as the accepted head
// (already resolved by the caller, per §6's initial_block_reference
// options: genesis, resolve, or an explicit block hash) and build its
// first open draft atop it.
func Initialise(cfg Config, initial block.Block, initialHash merkledag.Hash) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("tracker")
	globalData.log.Info("starting…")

	globalData.storage = cfg.Storage
	globalData.serializer = cfg.Serializer
	globalData.runner = cfg.Runner
	globalData.reader = cfg.Reader
	globalData.mode = cfg.Mode
	globalData.drainer = txqueueDrainer{storage: cfg.Storage, serializer: cfg.Serializer}

	draft, err := block.NewBlock(initial, initialHash, globalData.drainer, nil)
	if nil != err {
		globalData.log.Errorf("initial new_block failed: %s", err)
		return err
	}
	globalData.openBlock = draft
	globalData.openBlockHash = initialHash

	globalData.initialised = true
	return nil
}

// Finalise - shut the Tracker down
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}
	globalData.log.Info("shutting down…")
	globalData.log.Flush()
	globalData.initialised = false
	return nil
}

// GetBlock - the open draft block
func GetBlock() block.Block {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.openBlock
}

// AddTransaction - leader only; append tx to the open block's draft, to
// be included whenever it is next minted
func AddTransaction(tx block.Transaction) error {
	globalData.Lock()
	defer globalData.Unlock()

	if Leader != globalData.mode {
		return fault.ErrInvalidMode
	}
	if err := tx.Validate(); nil != err {
		return err
	}
	globalData.openBlock.Transactions = append(globalData.openBlock.Transactions, tx)
	return nil
}

// Read - route to the Reader over the open block's final_storage, or
// its initial_storage if nothing has been processed into it yet
func Read(function string, args []string) (string, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	root := globalData.openBlock.FinalStorage
	if root.IsEmpty() {
		root = globalData.openBlock.InitialStorage
	}
	return globalData.reader.Read(globalData.storage, function, args, root)
}

// MintCurrentBlock - leader only; process and save the open block, then
// replace it with a fresh draft (new_block) atop the saved result;
// returns the saved block's hash.
func MintCurrentBlock() (merkledag.Hash, error) {
	globalData.Lock()
	defer globalData.Unlock()

	if Leader != globalData.mode {
		return "", fault.ErrInvalidMode
	}

	processed, err := block.Process(globalData.openBlock, globalData.storage, globalData.runner)
	if nil != err {
		globalData.log.Errorf("mint: process failed: %s", err)
		return "", err
	}

	hash, err := block.Save(processed, globalData.storage, globalData.serializer)
	if nil != err {
		globalData.log.Errorf("mint: save failed: %s", err)
		return "", err
	}

	draft, err := block.NewBlock(processed, hash, globalData.drainer, nil)
	if nil != err {
		globalData.log.Errorf("mint: new_block failed: %s", err)
		return "", err
	}

	globalData.openBlock = draft
	globalData.openBlockHash = hash
	blocksMintedTotal.Inc()
	globalData.log.Infof("minted block %d: %s", processed.BlockNumber, hash)
	return hash, nil
}

// AdoptBlock - follower only; verify candidate against the current head
// via the Chain verifier, and on success replace the stored head with it.
func AdoptBlock(candidate block.Block, candidateHash merkledag.Hash) error {
	globalData.Lock()
	defer globalData.Unlock()

	if Follower != globalData.mode {
		return fault.ErrInvalidMode
	}

	current, err := block.Load(globalData.openBlockHash, globalData.storage, globalData.serializer)
	if nil != err {
		return err
	}

	if err := block.Verify(current, candidate, globalData.storage, globalData.runner, globalData.serializer); nil != err {
		chainMismatchTotal.Inc()
		globalData.log.Warnf("adopt rejected: %s", err)
		return err
	}

	draft, err := block.NewBlock(candidate, candidateHash, globalData.drainer, nil)
	if nil != err {
		return err
	}
	globalData.openBlock = draft
	globalData.openBlockHash = candidateHash
	blocksAdoptedTotal.Inc()
	globalData.log.Infof("adopted block %d: %s", candidate.BlockNumber, candidateHash)
	return nil
}
