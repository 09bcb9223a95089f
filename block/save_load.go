// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"github.com/hayesgm/daisy/merkledag"
	"github.com/hayesgm/daisy/storage"
)

// Save - serialize b and write it as a fresh, standalone tree; returns
// the resulting content-addressed hash (the block's own identity, used
// as the next block's parent_block_hash)
func Save(b Block, s *storage.Storage, ser Serializer) (merkledag.Hash, error) {
	tree, err := ser.Serialize(b)
	if nil != err {
		return "", err
	}
	empty, err := s.EmptyRoot()
	if nil != err {
		return "", err
	}
	return s.PutAll(empty, tree)
}

// Load - the inverse of Save
func Load(hash merkledag.Hash, s *storage.Storage, ser Serializer) (Block, error) {
	tree, err := s.GetAll(hash, "")
	if nil != err {
		return Block{}, err
	}
	return ser.Deserialize(tree)
}
