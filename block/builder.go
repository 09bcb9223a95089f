// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"github.com/hayesgm/daisy/merkledag"
	"github.com/hayesgm/daisy/storage"
)

// Genesis - the block at the root of the chain: block_number=0, no
// parent, initial and final storage both the empty root, no
// transactions or receipts. The §9 ambiguity over genesis's block
// number is resolved in favor of 0.
func Genesis(s *storage.Storage) (Block, error) {
	empty, err := s.EmptyRoot()
	if nil != err {
		return Block{}, err
	}
	return Block{
		BlockNumber:    0,
		InitialStorage: empty,
		FinalStorage:   empty,
	}, nil
}

// NewBlock - a fresh draft atop parent: block_number = parent.BlockNumber+1,
// parent_block_hash = parentHash (the saved hash of parent, not its
// storage root), initial_storage = parent.FinalStorage, transactions =
// whatever was queued for this block number, drained in ascending
// sequence order, followed by extraTxs appended in the caller's order.
func NewBlock(parent Block, parentHash merkledag.Hash, drainer TransactionDrainer, extraTxs []Transaction) (Block, error) {
	blockNumber := parent.BlockNumber + 1

	queued, err := drainer.DrainForBlock(parent.FinalStorage, blockNumber)
	if nil != err {
		return Block{}, err
	}

	transactions := make([]Transaction, 0, len(queued)+len(extraTxs))
	transactions = append(transactions, queued...)
	transactions = append(transactions, extraTxs...)

	return Block{
		BlockNumber:     blockNumber,
		ParentBlockHash: parentHash,
		InitialStorage:  parent.FinalStorage,
		FinalStorage:    parent.FinalStorage,
		Transactions:    transactions,
	}, nil
}
