// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package serializer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayesgm/daisy/block"
	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/merkledag"
	"github.com/hayesgm/daisy/serializer"
	"github.com/hayesgm/daisy/signature"
	"github.com/hayesgm/daisy/storage"
)

func sampleBlock(t *testing.T) block.Block {
	keypair, err := signature.GenerateKey()
	require.NoError(t, err)
	sig, err := signature.Sign([]byte("payload"), keypair)
	require.NoError(t, err)

	return block.Block{
		BlockNumber:     7,
		ParentBlockHash: merkledag.Hash("QmParent"),
		InitialStorage:  merkledag.Hash("QmInitial"),
		FinalStorage:    merkledag.Hash("QmFinal"),
		Transactions: []block.Transaction{
			{
				Invocation: block.Invocation{Function: "spawn", Args: []string{"10", "20"}},
				Signature:  &sig,
			},
			{
				Invocation: block.Invocation{Function: "tick", Args: nil},
				Owner:      []byte{0x01, 0x02, 0x03},
			},
		},
		Receipts: []block.Receipt{
			{
				Status:         0,
				InitialStorage: merkledag.Hash("QmInitial"),
				FinalStorage:   merkledag.Hash("QmMid"),
				Logs:           []string{"spawned"},
			},
			{
				Status:         0,
				InitialStorage: merkledag.Hash("QmMid"),
				FinalStorage:   merkledag.Hash("QmFinal"),
				Debug:          "ok",
			},
		},
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	s := serializer.New()
	b := sampleBlock(t)

	tree, err := s.Serialize(b)
	require.NoError(t, err)

	back, err := s.Deserialize(tree)
	require.NoError(t, err)

	assert.Equal(t, b.BlockNumber, back.BlockNumber)
	assert.Equal(t, b.ParentBlockHash, back.ParentBlockHash)
	assert.Equal(t, b.InitialStorage, back.InitialStorage)
	assert.Equal(t, b.FinalStorage, back.FinalStorage)
	require.Len(t, back.Transactions, 2)

	assert.Equal(t, "spawn", back.Transactions[0].Invocation.Function)
	assert.Equal(t, []string{"10", "20"}, back.Transactions[0].Invocation.Args)
	require.NotNil(t, back.Transactions[0].Signature)
	assert.Equal(t, b.Transactions[0].Signature.Sig, back.Transactions[0].Signature.Sig)
	assert.Equal(t, b.Transactions[0].Signature.Pub, back.Transactions[0].Signature.Pub)

	assert.Equal(t, "tick", back.Transactions[1].Invocation.Function)
	assert.Empty(t, back.Transactions[1].Invocation.Args)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, back.Transactions[1].Owner)

	require.Len(t, back.Receipts, 2)
	assert.Equal(t, []string{"spawned"}, back.Receipts[0].Logs)
	assert.Equal(t, "ok", back.Receipts[1].Debug)
	assert.Equal(t, merkledag.Hash("QmMid"), back.Receipts[0].FinalStorage)
	assert.Equal(t, merkledag.Hash("QmMid"), back.Receipts[1].InitialStorage)
}

func TestSerializeGenesisHasNoParentLink(t *testing.T) {
	s := serializer.New()
	genesis := block.Block{
		BlockNumber:    0,
		InitialStorage: merkledag.Hash("QmEmpty"),
		FinalStorage:   merkledag.Hash("QmEmpty"),
	}
	tree, err := s.Serialize(genesis)
	require.NoError(t, err)
	_, present := tree["parent_block_hash"]
	assert.False(t, present)

	back, err := s.Deserialize(tree)
	require.NoError(t, err)
	assert.True(t, back.ParentBlockHash.IsEmpty())
	assert.Empty(t, back.Transactions)
	assert.Empty(t, back.Receipts)
}

func TestDeserializeRejectsTransactionWithBothSignatureAndOwner(t *testing.T) {
	s := serializer.New()
	tree := map[string]interface{}{
		"block_number":    []byte("1"),
		"initial_storage": storage.Ref{Hash: merkledag.Hash("QmA")},
		"final_storage":   storage.Ref{Hash: merkledag.Hash("QmB")},
		"transactions": map[string]interface{}{
			"0": map[string]interface{}{
				"function":   []byte("f"),
				"args":       map[string]interface{}{},
				"signature":  []byte("sig"),
				"public_key": []byte("pub"),
				"owner":      []byte("owner"),
			},
		},
		"receipts": map[string]interface{}{},
	}
	_, err := s.Deserialize(tree)
	assert.Equal(t, fault.ErrInvalidTransaction, err)
}
