// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayesgm/daisy/block"
	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/merkledag"
	"github.com/hayesgm/daisy/serializer"
	"github.com/hayesgm/daisy/signature"
	"github.com/hayesgm/daisy/storage"
	"github.com/hayesgm/daisy/vm"
)

type memStore struct {
	sync.Mutex
	nodes map[merkledag.Hash]merkledag.Node
}

func newMemStore() *memStore {
	return &memStore{nodes: make(map[merkledag.Hash]merkledag.Node)}
}

func (m *memStore) put(node merkledag.Node) merkledag.Hash {
	m.Lock()
	defer m.Unlock()
	hash := merkledag.HashOf(node)
	m.nodes[hash] = node
	return hash
}

func (m *memStore) ObjectNew() (merkledag.Hash, error) {
	return m.put(merkledag.Node{}), nil
}

func (m *memStore) ObjectPut(data []byte, createIntermediates bool) (merkledag.Hash, error) {
	return m.put(merkledag.NewLeaf(data)), nil
}

func (m *memStore) ObjectPatchAddLink(root merkledag.Hash, path string, childHash merkledag.Hash, createIntermediates bool) (merkledag.Hash, error) {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	return m.addLink(root, segments, childHash)
}

func (m *memStore) addLink(root merkledag.Hash, segments []string, childHash merkledag.Hash) (merkledag.Hash, error) {
	m.Lock()
	node := m.nodes[root]
	m.Unlock()

	segment := segments[0]
	var newChild merkledag.Hash
	if 1 == len(segments) {
		newChild = childHash
	} else {
		var existing merkledag.Hash
		found := false
		for _, link := range node.Links {
			if link.Name == segment {
				existing = link.Hash
				found = true
				break
			}
		}
		if !found {
			existing = m.put(merkledag.Node{})
		}
		var err error
		newChild, err = m.addLink(existing, segments[1:], childHash)
		if nil != err {
			return "", err
		}
	}

	links := make([]merkledag.Link, 0, len(node.Links)+1)
	replaced := false
	for _, link := range node.Links {
		if link.Name == segment {
			links = append(links, merkledag.Link{Name: segment, Hash: newChild})
			replaced = true
		} else {
			links = append(links, link)
		}
	}
	if !replaced {
		links = append(links, merkledag.Link{Name: segment, Hash: newChild})
	}

	return m.put(merkledag.NewTree(links)), nil
}

func (m *memStore) ObjectGet(hash merkledag.Hash) (merkledag.Node, error) {
	m.Lock()
	defer m.Unlock()
	node, ok := m.nodes[hash]
	if !ok {
		return merkledag.Node{}, fault.ErrNotFound
	}
	return node, nil
}

func (m *memStore) ObjectGetProtobuf(hash merkledag.Hash) ([]byte, error) {
	node, err := m.ObjectGet(hash)
	if nil != err {
		return nil, err
	}
	return merkledag.EncodeNode(node), nil
}

// emptyDrainer - a TransactionDrainer with nothing ever queued
type emptyDrainer struct{}

func (emptyDrainer) DrainForBlock(root merkledag.Hash, blockNumber uint64) ([]block.Transaction, error) {
	return nil, nil
}

// S1 - genesis and empty mint
func TestGenesisAndEmptyMint(t *testing.T) {
	s := storage.New(newMemStore())

	genesis, err := block.Genesis(s)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), genesis.BlockNumber)
	assert.True(t, genesis.ParentBlockHash.IsEmpty())
	assert.Equal(t, genesis.InitialStorage, genesis.FinalStorage)
	assert.Empty(t, genesis.Receipts)

	genesisHash, err := block.Save(genesis, s, serializer.New())
	require.NoError(t, err)

	draft, err := block.NewBlock(genesis, genesisHash, emptyDrainer{}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), draft.BlockNumber)
	assert.Equal(t, genesisHash, draft.ParentBlockHash)
	assert.Equal(t, genesis.FinalStorage, draft.InitialStorage)
	assert.Empty(t, draft.Transactions)

	processed, err := block.Process(draft, s, vm.New())
	require.NoError(t, err)
	assert.Equal(t, draft.InitialStorage, processed.FinalStorage)
	assert.Empty(t, processed.Receipts)
}

func TestProcessFoldsReceiptsInOrder(t *testing.T) {
	s := storage.New(newMemStore())
	genesis, err := block.Genesis(s)
	require.NoError(t, err)

	owner := []byte{0x01}
	draft := block.Block{
		BlockNumber:    1,
		InitialStorage: genesis.FinalStorage,
		Transactions: []block.Transaction{
			{Invocation: block.Invocation{Function: "set", Args: []string{"a", "1"}}, Owner: owner},
			{Invocation: block.Invocation{Function: "set", Args: []string{"b", "2"}}, Owner: owner},
		},
	}

	processed, err := block.Process(draft, s, vm.New())
	require.NoError(t, err)
	require.Len(t, processed.Receipts, 2)
	assert.Equal(t, processed.Receipts[0].FinalStorage, processed.Receipts[1].InitialStorage)
	assert.Equal(t, processed.Receipts[1].FinalStorage, processed.FinalStorage)
}

func TestProcessAbortsWholeBlockOnBadSignature(t *testing.T) {
	s := storage.New(newMemStore())
	genesis, err := block.Genesis(s)
	require.NoError(t, err)

	keypair, err := signature.GenerateKey()
	require.NoError(t, err)
	inv := block.Invocation{Function: "set", Args: []string{"a", "1"}}
	sig, err := signature.Sign(block.SignaturePayload(inv), keypair)
	require.NoError(t, err)
	sig.Pub[0] ^= 0xFF // tamper with the public key

	draft := block.Block{
		BlockNumber:    1,
		InitialStorage: genesis.FinalStorage,
		Transactions: []block.Transaction{
			{Invocation: inv, Signature: &sig},
		},
	}

	_, err = block.Process(draft, s, vm.New())
	assert.Equal(t, fault.ErrInvalidSignature, err)
}

// S5 - follower adopts a valid remote block, rejects a mutated one
func TestChainVerifierAdoptsValidBlockRejectsMutated(t *testing.T) {
	s := storage.New(newMemStore())
	ser := serializer.New()
	runner := vm.New()

	genesis, err := block.Genesis(s)
	require.NoError(t, err)
	genesisHash, err := block.Save(genesis, s, ser)
	require.NoError(t, err)

	owner := []byte{0x01}
	draft, err := block.NewBlock(genesis, genesisHash, emptyDrainer{}, []block.Transaction{
		{Invocation: block.Invocation{Function: "set", Args: []string{"a", "1"}}, Owner: owner},
	})
	require.NoError(t, err)

	minted, err := block.Process(draft, s, runner)
	require.NoError(t, err)

	require.NoError(t, block.Verify(genesis, minted, s, runner, ser))

	mutated := minted
	mutated.FinalStorage = merkledag.Hash("QmMutated")
	err = block.Verify(genesis, mutated, s, runner, ser)
	require.Error(t, err)
	mismatchErr, ok := err.(fault.ChainMismatchError)
	require.True(t, ok)
	assert.Equal(t, "final_storage", mismatchErr.Field)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := storage.New(newMemStore())
	ser := serializer.New()
	genesis, err := block.Genesis(s)
	require.NoError(t, err)

	hash, err := block.Save(genesis, s, ser)
	require.NoError(t, err)

	back, err := block.Load(hash, s, ser)
	require.NoError(t, err)
	assert.Equal(t, genesis.BlockNumber, back.BlockNumber)
	assert.Equal(t, genesis.FinalStorage, back.FinalStorage)
}
