// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txqueue persists transactions deferred to a future block
// number under /transaction_queue/<block_number>/<seq> in the storage
// tree (spec.md §4.5), and drains them back out, ascending by seq, when
// that block number is built.
package txqueue

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/hayesgm/daisy/block"
	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/merkledag"
	"github.com/hayesgm/daisy/storage"
)

const queueRoot = "transaction_queue"

// Store - the subset of storage.Storage this package needs
type Store interface {
	Ls(root merkledag.Hash, path string) ([]storage.Entry, error)
	PutAll(root merkledag.Hash, tree map[string]interface{}) (merkledag.Hash, error)
	GetAll(root merkledag.Hash, path string) (map[string]interface{}, error)
}

// TransactionSerializer - the subset of block.Serializer needed to turn
// a single transaction to and from its tree representation. Any
// block.Serializer implementation (e.g. serializer.JSONTree) satisfies
// this already.
type TransactionSerializer interface {
	SerializeTransaction(block.Transaction) (map[string]interface{}, error)
	DeserializeTransaction(tree map[string]interface{}) (block.Transaction, error)
}

func queuePath(atBlockNumber uint64) string {
	return fmt.Sprintf("%s/%d", queueRoot, atBlockNumber)
}

// nest - wrap a tree at a slash-separated path, so PutAll's recursive
// flatten can reach it
func nest(path string, leaf map[string]interface{}) map[string]interface{} {
	segments := splitPath(path)
	tree := leaf
	for i := len(segments) - 1; i >= 0; i-- {
		tree = map[string]interface{}{segments[i]: tree}
	}
	return tree
}

func splitPath(path string) []string {
	segments := make([]string, 0, 4)
	start := 0
	for i := 0; i < len(path); i++ {
		if '/' == path[i] {
			segments = append(segments, path[start:i])
			start = i + 1
		}
	}
	segments = append(segments, path[start:])
	return segments
}

// Queue - persist invocation as a deferred, owner-stamped transaction
// for atBlockNumber, appending at the next sequence number under that
// block's queue directory
func Queue(s Store, ser TransactionSerializer, root merkledag.Hash, atBlockNumber uint64, owner []byte, invocation block.Invocation) (merkledag.Hash, error) {
	path := queuePath(atBlockNumber)

	entries, err := s.Ls(root, path)
	if nil != err {
		return "", err
	}

	nextSeq := 1
	for _, e := range entries {
		n, err := strconv.Atoi(e.Name)
		if nil == err && n >= nextSeq {
			nextSeq = n + 1
		}
	}

	txTree, err := ser.SerializeTransaction(block.Transaction{Invocation: invocation, Owner: owner})
	if nil != err {
		return "", err
	}

	entryPath := fmt.Sprintf("%s/%d", path, nextSeq)
	return s.PutAll(root, nest(entryPath, txTree))
}

// DrainForBlock - read back every deferred transaction queued for
// blockNumber, ascending by sequence number. A missing queue directory
// is not an error: it simply drains empty.
func DrainForBlock(s Store, ser TransactionSerializer, root merkledag.Hash, blockNumber uint64) ([]block.Transaction, error) {
	tree, err := s.GetAll(root, queuePath(blockNumber))
	if nil != err {
		if fault.IsErrNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	keys := make([]int, 0, len(tree))
	for k := range tree {
		n, err := strconv.Atoi(k)
		if nil != err {
			return nil, fault.ProtocolError("non-numeric queue sequence: " + k)
		}
		keys = append(keys, n)
	}
	sort.Ints(keys)

	transactions := make([]block.Transaction, 0, len(keys))
	for _, k := range keys {
		txTree, ok := tree[strconv.Itoa(k)].(map[string]interface{})
		if !ok {
			return nil, fault.ProtocolError("queue entry is not a transaction tree")
		}
		tx, err := ser.DeserializeTransaction(txTree)
		if nil != err {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}
