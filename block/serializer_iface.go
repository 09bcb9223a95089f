// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

// Serializer - the pluggable strategy for mapping a Block to and from a
// storage tree (the shape storage.PutAll/GetAll operate on). The
// concrete implementation lives in the serializer package; Block only
// depends on this interface so a different wire scheme can be swapped
// in by configuration without this package knowing about it.
type Serializer interface {
	Serialize(Block) (map[string]interface{}, error)
	Deserialize(tree map[string]interface{}) (Block, error)

	// SerializeTransaction/DeserializeTransaction expose the same
	// per-transaction tree shape Serialize embeds under "transactions",
	// so a single queued transaction (txqueue) can be stored and
	// retrieved without wrapping it in a throwaway Block.
	SerializeTransaction(Transaction) (map[string]interface{}, error)
	DeserializeTransaction(tree map[string]interface{}) (Transaction, error)
}
