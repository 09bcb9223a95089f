// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package serializer provides the one canonical scheme (spec.md §4.3)
// mapping a block.Block bijectively to a storage tree: the shape
// storage.PutAll consumes and storage.GetAll reconstructs.
package serializer

import (
	"sort"
	"strconv"

	"github.com/mr-tron/base58"

	"github.com/hayesgm/daisy/block"
	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/signature"
	"github.com/hayesgm/daisy/storage"
)

// JSONTree - the tree-shaped serialization scheme: fields keyed by
// name, arrays keyed by decimal index, hash-valued fields stored as
// storage.Ref ("_link") references.
type JSONTree struct{}

// New - build the default serializer
func New() JSONTree {
	return JSONTree{}
}

// Serialize - block.Block -> storage tree
func (JSONTree) Serialize(b block.Block) (map[string]interface{}, error) {
	tree := map[string]interface{}{
		"block_number":    strconv.FormatUint(b.BlockNumber, 10),
		"initial_storage": storage.Ref{Hash: b.InitialStorage},
		"final_storage":   storage.Ref{Hash: b.FinalStorage},
		"transactions":    serializeTransactions(b.Transactions),
		"receipts":        serializeReceipts(b.Receipts),
	}
	if !b.ParentBlockHash.IsEmpty() {
		tree["parent_block_hash"] = storage.Ref{Hash: b.ParentBlockHash}
	}
	return tree, nil
}

// Deserialize - storage tree -> block.Block
func (JSONTree) Deserialize(tree map[string]interface{}) (block.Block, error) {
	blockNumber, err := stringField(tree, "block_number")
	if nil != err {
		return block.Block{}, err
	}
	n, err := strconv.ParseUint(blockNumber, 10, 64)
	if nil != err {
		return block.Block{}, fault.ProtocolError("malformed block_number: " + err.Error())
	}

	initial, err := refField(tree, "initial_storage")
	if nil != err {
		return block.Block{}, err
	}
	final, err := refField(tree, "final_storage")
	if nil != err {
		return block.Block{}, err
	}

	var parent storage.Ref
	if ref, ok := tree["parent_block_hash"]; ok {
		r, ok := ref.(storage.Ref)
		if !ok {
			return block.Block{}, fault.ProtocolError("parent_block_hash is not a reference")
		}
		parent = r
	}

	txsTree, _ := tree["transactions"].(map[string]interface{})
	transactions, err := deserializeTransactions(txsTree)
	if nil != err {
		return block.Block{}, err
	}

	receiptsTree, _ := tree["receipts"].(map[string]interface{})
	receipts, err := deserializeReceipts(receiptsTree)
	if nil != err {
		return block.Block{}, err
	}

	return block.Block{
		BlockNumber:     n,
		ParentBlockHash: parent.Hash,
		InitialStorage:  initial.Hash,
		FinalStorage:    final.Hash,
		Transactions:    transactions,
		Receipts:        receipts,
	}, nil
}

// SerializeTransaction - a single transaction's tree, the same shape
// Serialize embeds at transactions["<index>"]
func (JSONTree) SerializeTransaction(tx block.Transaction) (map[string]interface{}, error) {
	return serializeTransaction(tx), nil
}

// DeserializeTransaction - the inverse of SerializeTransaction
func (JSONTree) DeserializeTransaction(tree map[string]interface{}) (block.Transaction, error) {
	return deserializeTransaction(tree)
}

func serializeTransactions(txs []block.Transaction) map[string]interface{} {
	result := make(map[string]interface{}, len(txs))
	for i, tx := range txs {
		result[strconv.Itoa(i)] = serializeTransaction(tx)
	}
	return result
}

func serializeTransaction(tx block.Transaction) map[string]interface{} {
	m := map[string]interface{}{
		"function": tx.Invocation.Function,
		"args":     arrayToIndexMap(tx.Invocation.Args),
	}
	if nil != tx.Signature {
		m["signature"] = base58.Encode(tx.Signature.Sig)
		m["public_key"] = base58.Encode(tx.Signature.Pub)
	} else {
		m["owner"] = base58.Encode(tx.Owner)
	}
	return m
}

func serializeReceipts(receipts []block.Receipt) map[string]interface{} {
	result := make(map[string]interface{}, len(receipts))
	for i, r := range receipts {
		m := map[string]interface{}{
			"status":          strconv.FormatUint(uint64(r.Status), 10),
			"initial_storage": storage.Ref{Hash: r.InitialStorage},
			"final_storage":   storage.Ref{Hash: r.FinalStorage},
			"logs":            arrayToIndexMap(r.Logs),
		}
		if "" != r.Debug {
			m["debug"] = r.Debug
		}
		result[strconv.Itoa(i)] = m
	}
	return result
}

func arrayToIndexMap(items []string) map[string]interface{} {
	result := make(map[string]interface{}, len(items))
	for i, item := range items {
		result[strconv.Itoa(i)] = item
	}
	return result
}

func indexMapToArray(tree map[string]interface{}) ([]string, error) {
	if nil == tree {
		return nil, nil
	}
	keys := make([]int, 0, len(tree))
	for k := range tree {
		n, err := strconv.Atoi(k)
		if nil != err {
			return nil, fault.ProtocolError("non-numeric array index: " + k)
		}
		keys = append(keys, n)
	}
	sort.Ints(keys)

	result := make([]string, len(keys))
	for i, k := range keys {
		s, err := stringValue(tree[strconv.Itoa(k)])
		if nil != err {
			return nil, err
		}
		result[i] = s
	}
	return result, nil
}

func stringValue(v interface{}) (string, error) {
	switch t := v.(type) {
	case []byte:
		return string(t), nil
	case string:
		return t, nil
	default:
		return "", fault.ProtocolError("expected a leaf value")
	}
}

func stringField(tree map[string]interface{}, key string) (string, error) {
	v, ok := tree[key]
	if !ok {
		return "", fault.ProtocolError("missing field: " + key)
	}
	return stringValue(v)
}

func refField(tree map[string]interface{}, key string) (storage.Ref, error) {
	v, ok := tree[key]
	if !ok {
		return storage.Ref{}, fault.ProtocolError("missing field: " + key)
	}
	ref, ok := v.(storage.Ref)
	if !ok {
		return storage.Ref{}, fault.ProtocolError("field is not a reference: " + key)
	}
	return ref, nil
}

func deserializeTransactions(tree map[string]interface{}) ([]block.Transaction, error) {
	if nil == tree {
		return nil, nil
	}
	keys := make([]int, 0, len(tree))
	for k := range tree {
		n, err := strconv.Atoi(k)
		if nil != err {
			return nil, fault.ProtocolError("non-numeric transaction index: " + k)
		}
		keys = append(keys, n)
	}
	sort.Ints(keys)

	transactions := make([]block.Transaction, len(keys))
	for i, k := range keys {
		txTree, ok := tree[strconv.Itoa(k)].(map[string]interface{})
		if !ok {
			return nil, fault.ProtocolError("transaction entry is not a tree")
		}
		tx, err := deserializeTransaction(txTree)
		if nil != err {
			return nil, err
		}
		transactions[i] = tx
	}
	return transactions, nil
}

func deserializeTransaction(tree map[string]interface{}) (block.Transaction, error) {
	function, err := stringField(tree, "function")
	if nil != err {
		return block.Transaction{}, err
	}
	argsTree, _ := tree["args"].(map[string]interface{})
	args, err := indexMapToArray(argsTree)
	if nil != err {
		return block.Transaction{}, err
	}

	_, hasSignature := tree["signature"]
	_, hasOwner := tree["owner"]
	if hasSignature == hasOwner {
		return block.Transaction{}, fault.ErrInvalidTransaction
	}

	tx := block.Transaction{Invocation: block.Invocation{Function: function, Args: args}}

	if hasSignature {
		sigB58, err := stringField(tree, "signature")
		if nil != err {
			return block.Transaction{}, err
		}
		pubB58, err := stringField(tree, "public_key")
		if nil != err {
			return block.Transaction{}, err
		}
		sig, err := base58.Decode(sigB58)
		if nil != err {
			return block.Transaction{}, fault.ProtocolError("malformed signature: " + err.Error())
		}
		pub, err := base58.Decode(pubB58)
		if nil != err {
			return block.Transaction{}, fault.ProtocolError("malformed public_key: " + err.Error())
		}
		tx.Signature = &signature.Signature{Sig: sig, Pub: pub}
	} else {
		ownerB58, err := stringField(tree, "owner")
		if nil != err {
			return block.Transaction{}, err
		}
		owner, err := base58.Decode(ownerB58)
		if nil != err {
			return block.Transaction{}, fault.ProtocolError("malformed owner: " + err.Error())
		}
		tx.Owner = owner
	}

	return tx, nil
}

func deserializeReceipts(tree map[string]interface{}) ([]block.Receipt, error) {
	if nil == tree {
		return nil, nil
	}
	keys := make([]int, 0, len(tree))
	for k := range tree {
		n, err := strconv.Atoi(k)
		if nil != err {
			return nil, fault.ProtocolError("non-numeric receipt index: " + k)
		}
		keys = append(keys, n)
	}
	sort.Ints(keys)

	receipts := make([]block.Receipt, len(keys))
	for i, k := range keys {
		rTree, ok := tree[strconv.Itoa(k)].(map[string]interface{})
		if !ok {
			return nil, fault.ProtocolError("receipt entry is not a tree")
		}
		r, err := deserializeReceipt(rTree)
		if nil != err {
			return nil, err
		}
		receipts[i] = r
	}
	return receipts, nil
}

func deserializeReceipt(tree map[string]interface{}) (block.Receipt, error) {
	statusStr, err := stringField(tree, "status")
	if nil != err {
		return block.Receipt{}, err
	}
	status, err := strconv.ParseUint(statusStr, 10, 32)
	if nil != err {
		return block.Receipt{}, fault.ProtocolError("malformed status: " + err.Error())
	}

	initial, err := refField(tree, "initial_storage")
	if nil != err {
		return block.Receipt{}, err
	}
	final, err := refField(tree, "final_storage")
	if nil != err {
		return block.Receipt{}, err
	}

	logsTree, _ := tree["logs"].(map[string]interface{})
	logs, err := indexMapToArray(logsTree)
	if nil != err {
		return block.Receipt{}, err
	}

	debug := ""
	if v, ok := tree["debug"]; ok {
		debug, err = stringValue(v)
		if nil != err {
			return block.Receipt{}, err
		}
	}

	return block.Receipt{
		Status:         uint32(status),
		InitialStorage: initial.Hash,
		FinalStorage:   final.Hash,
		Logs:           logs,
		Debug:          debug,
	}, nil
}
