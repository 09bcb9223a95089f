// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txqueue_test

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
	"github.com/hayesgm/daisy/storage"
	"github.com/hayesgm/daisy/txqueue"
)

// memStore - the same in-memory ObjectStore fake used by storage's own
// tests, duplicated here since it is package-private there.
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

// S4 - deferred-queue execution
func TestQueueThenDrainForBlock(t *testing.T) {
	s := storage.New(newMemStore())
	ser := serializer.New()

	root, err := s.EmptyRoot()
	require.NoError(t, err)

	root, err = txqueue.Queue(s, ser, root, 8, []byte{0x01}, block.Invocation{Function: "spawn", Args: []string{"10"}})
	require.NoError(t, err)

	transactions, err := txqueue.DrainForBlock(s, ser, root, 8)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "spawn", transactions[0].Invocation.Function)
	assert.Equal(t, []string{"10"}, transactions[0].Invocation.Args)
	assert.Nil(t, transactions[0].Signature)
	assert.Equal(t, []byte{0x01}, transactions[0].Owner)
}

func TestQueueAppendsAscendingSequence(t *testing.T) {
	s := storage.New(newMemStore())
	ser := serializer.New()

	root, err := s.EmptyRoot()
	require.NoError(t, err)

	root, err = txqueue.Queue(s, ser, root, 3, []byte{0x01}, block.Invocation{Function: "first"})
	require.NoError(t, err)
	root, err = txqueue.Queue(s, ser, root, 3, []byte{0x02}, block.Invocation{Function: "second"})
	require.NoError(t, err)

	entries, err := s.Ls(root, "transaction_queue/3")
	require.NoError(t, err)
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	assert.True(t, names["1"])
	assert.True(t, names["2"])

	transactions, err := txqueue.DrainForBlock(s, ser, root, 3)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, "first", transactions[0].Invocation.Function)
	assert.Equal(t, "second", transactions[1].Invocation.Function)
}

func TestDrainForBlockWithNoQueueIsEmpty(t *testing.T) {
	s := storage.New(newMemStore())
	ser := serializer.New()

	root, err := s.EmptyRoot()
	require.NoError(t, err)

	transactions, err := txqueue.DrainForBlock(s, ser, root, 99)
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestQueueKeepsDifferentBlockNumbersSeparate(t *testing.T) {
	s := storage.New(newMemStore())
	ser := serializer.New()

	root, err := s.EmptyRoot()
	require.NoError(t, err)

	root, err = txqueue.Queue(s, ser, root, 1, []byte{0x01}, block.Invocation{Function: "a"})
	require.NoError(t, err)
	root, err = txqueue.Queue(s, ser, root, 2, []byte{0x01}, block.Invocation{Function: "b"})
	require.NoError(t, err)

	blockOne, err := txqueue.DrainForBlock(s, ser, root, 1)
	require.NoError(t, err)
	require.Len(t, blockOne, 1)
	assert.Equal(t, "a", blockOne[0].Invocation.Function)

	blockTwo, err := txqueue.DrainForBlock(s, ser, root, 2)
	require.NoError(t, err)
	require.Len(t, blockTwo, 1)
	assert.Equal(t, "b", blockTwo[0].Invocation.Function)
}
