// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage implements the path-addressed tree overlaid on the
// MerkleDAG: a logical filesystem where a path like "players/5/name"
// resolves by walking named links from a root hash. Writes never mutate
// a node; every Put returns a new root.
package storage

import (
	"sort"
	"strings"

	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/merkledag"
)

// ObjectStore - the MerkleDAG adapter contract this package depends on.
// *dagclient.Client satisfies this; tests use an in-memory fake.
type ObjectStore interface {
	ObjectNew() (merkledag.Hash, error)
	ObjectPut(data []byte, createIntermediates bool) (merkledag.Hash, error)
	ObjectPatchAddLink(root merkledag.Hash, path string, childHash merkledag.Hash, createIntermediates bool) (merkledag.Hash, error)
	ObjectGet(hash merkledag.Hash) (merkledag.Node, error)
	ObjectGetProtobuf(hash merkledag.Hash) ([]byte, error)
}

// Entry - one direct child of a tree node, as returned by Ls
type Entry struct {
	Name string
	Hash merkledag.Hash
}

// Ref - a stored reference to another root hash, tagged per the
// "<key>_link" convention so PutAll/GetAll can tell it apart from a
// nested sub-tree or a plain byte value
type Ref struct {
	Hash merkledag.Hash
}

const linkSuffix = "_link"

// Storage - a handle bound to one MerkleDAG adapter. Stateless with
// respect to any particular root: every method takes the root it
// operates on and returns a new one.
type Storage struct {
	store ObjectStore
}

// New - build a Storage over the given object store adapter
func New(store ObjectStore) *Storage {
	return &Storage{store: store}
}

// EmptyRoot - the canonical empty tree: no links, sentinel data. Its
// actual hash is whatever the backing store assigns; callers should
// not hard-code it.
func (s *Storage) EmptyRoot() (merkledag.Hash, error) {
	return s.store.ObjectNew()
}

func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if "" == path {
		return nil
	}
	return strings.Split(path, "/")
}

// walk - greedily descend link-by-link along segments, starting at
// root. Returns the segments not matched and the hashes visited
// (hashes[0] == root; the last entry is the hash reached so far).
func (s *Storage) walk(root merkledag.Hash, segments []string) (remaining []string, hashes []merkledag.Hash, err error) {
	hashes = []merkledag.Hash{root}
	current := root

	for i, segment := range segments {
		node, err := s.store.ObjectGet(current)
		if nil != err {
			return nil, nil, err
		}
		link, found := findLink(node, segment)
		if !found {
			return segments[i:], hashes, nil
		}
		current = link.Hash
		hashes = append(hashes, current)
	}
	return nil, hashes, nil
}

func findLink(node merkledag.Node, name string) (merkledag.Link, bool) {
	for _, link := range node.Links {
		if link.Name == name {
			return link, true
		}
	}
	return merkledag.Link{}, false
}

// Get - read the byte value stored at path
func (s *Storage) Get(root merkledag.Hash, path string) ([]byte, error) {
	segments := splitPath(path)
	remaining, hashes, err := s.walk(root, segments)
	if nil != err {
		return nil, err
	}
	if len(remaining) > 0 {
		return nil, fault.ErrNotFound
	}
	node, err := s.store.ObjectGet(hashes[len(hashes)-1])
	if nil != err {
		return nil, err
	}
	return node.Data, nil
}

// GetHash - the hash reached by resolving path, without fetching its
// contents
func (s *Storage) GetHash(root merkledag.Hash, path string) (merkledag.Hash, error) {
	segments := splitPath(path)
	remaining, hashes, err := s.walk(root, segments)
	if nil != err {
		return "", err
	}
	if len(remaining) > 0 {
		return "", fault.ErrNotFound
	}
	return hashes[len(hashes)-1], nil
}

// Put - write data as a new object and link it in at path, creating
// intermediate nodes as needed; returns the new root
func (s *Storage) Put(root merkledag.Hash, path string, data []byte) (merkledag.Hash, error) {
	leaf, err := s.store.ObjectPut(data, true)
	if nil != err {
		return "", err
	}
	return s.store.ObjectPatchAddLink(root, strings.TrimPrefix(path, "/"), leaf, true)
}

// PutNew - as Put, but fails with fault.ErrFileExists if path is
// already occupied
func (s *Storage) PutNew(root merkledag.Hash, path string, data []byte) (merkledag.Hash, error) {
	_, err := s.Get(root, path)
	if nil == err {
		return "", fault.ErrFileExists
	}
	if !fault.IsErrNotFound(err) {
		return "", err
	}
	return s.Put(root, path, data)
}

// UpdateOptions - behaviour when path is absent
type UpdateOptions struct {
	Default         []byte
	ApplyFOnDefault bool
}

// Update - read-modify-write at path: if present, store f(current); if
// absent, store either Default or f(Default) per opts
func (s *Storage) Update(root merkledag.Hash, path string, f func([]byte) []byte, opts UpdateOptions) (merkledag.Hash, error) {
	current, err := s.Get(root, path)
	if nil == err {
		return s.Put(root, path, f(current))
	}
	if !fault.IsErrNotFound(err) {
		return "", err
	}
	value := opts.Default
	if opts.ApplyFOnDefault {
		value = f(opts.Default)
	}
	return s.Put(root, path, value)
}

// Ls - the direct children of the node at path; an empty list if path
// is absent
func (s *Storage) Ls(root merkledag.Hash, path string) ([]Entry, error) {
	segments := splitPath(path)
	remaining, hashes, err := s.walk(root, segments)
	if nil != err {
		return nil, err
	}
	if len(remaining) > 0 {
		return nil, nil
	}
	node, err := s.store.ObjectGet(hashes[len(hashes)-1])
	if nil != err {
		return nil, err
	}
	entries := make([]Entry, 0, len(node.Links))
	for _, link := range node.Links {
		entries = append(entries, Entry{Name: link.Name, Hash: link.Hash})
	}
	return entries, nil
}

// Save - store an arbitrary byte blob as a standalone leaf object and
// return its hash, bypassing path addressing entirely
func (s *Storage) Save(data []byte) (merkledag.Hash, error) {
	return s.store.ObjectPut(data, false)
}

// Retrieve - fetch the data of a leaf object by hash
func (s *Storage) Retrieve(hash merkledag.Hash) ([]byte, error) {
	node, err := s.store.ObjectGet(hash)
	if nil != err {
		return nil, err
	}
	return node.Data, nil
}

// pathValue - one flattened write operation produced while walking a
// PutAll tree
type pathValue struct {
	path string
	data []byte
	ref  *merkledag.Hash
}

// PutAll - recursive bulk write. tree maps key to: []byte (leaf),
// Ref (stored as a "<key>_link" reference), map[string]interface{}
// (nested sub-tree), or nil (skipped entirely).
//
// Keys are sorted lexicographically at every level before writing so
// that identical logical trees always produce identical root hashes,
// independent of Go's non-deterministic map iteration order.
func (s *Storage) PutAll(root merkledag.Hash, tree map[string]interface{}) (merkledag.Hash, error) {
	operations := make([]pathValue, 0)
	flatten("", tree, &operations)

	sort.Slice(operations, func(i, j int) bool { return operations[i].path < operations[j].path })

	current := root
	for _, op := range operations {
		var err error
		if nil != op.ref {
			current, err = s.store.ObjectPatchAddLink(current, op.path+linkSuffix, *op.ref, true)
		} else {
			current, err = s.Put(current, op.path, op.data)
		}
		if nil != err {
			return "", err
		}
	}
	return current, nil
}

func flatten(prefix string, tree map[string]interface{}, out *[]pathValue) {
	for key, value := range tree {
		path := key
		if "" != prefix {
			path = prefix + "/" + key
		}
		switch v := value.(type) {
		case nil:
			// empty marker: skip entirely
		case []byte:
			*out = append(*out, pathValue{path: path, data: v})
		case string:
			*out = append(*out, pathValue{path: path, data: []byte(v)})
		case Ref:
			hash := v.Hash
			*out = append(*out, pathValue{path: path, ref: &hash})
		case map[string]interface{}:
			flatten(path, v, out)
		}
	}
}

// GetAll - inverse of PutAll: reconstruct a tree rooted at path. A
// link name ending in "_link" yields a Ref value and is not recursed
// into; any other name recurses (or yields a []byte leaf if the child
// has no further links).
func (s *Storage) GetAll(root merkledag.Hash, path string) (map[string]interface{}, error) {
	hash, err := s.GetHash(root, path)
	if nil != err {
		return nil, err
	}
	value, err := s.getAllFromHash(hash)
	if nil != err {
		return nil, err
	}
	tree, ok := value.(map[string]interface{})
	if !ok {
		return nil, fault.ProtocolError("get_all target is a leaf, not a tree")
	}
	return tree, nil
}

func (s *Storage) getAllFromHash(hash merkledag.Hash) (interface{}, error) {
	node, err := s.store.ObjectGet(hash)
	if nil != err {
		return nil, err
	}
	if err := node.Validate(); nil != err {
		return nil, err
	}
	if node.IsLeaf() {
		return node.Data, nil
	}

	tree := make(map[string]interface{}, len(node.Links))
	for _, link := range node.Links {
		if strings.HasSuffix(link.Name, linkSuffix) {
			key := strings.TrimSuffix(link.Name, linkSuffix)
			tree[key] = Ref{Hash: link.Hash}
			continue
		}
		value, err := s.getAllFromHash(link.Hash)
		if nil != err {
			return nil, err
		}
		tree[link.Name] = value
	}
	return tree, nil
}

// Proof - a chain of raw dag-pb node bytes from the leaf at path back
// to root, suitable for standalone verification by the prover package:
// proof[0] is the leaf, proof[len-1] is the root.
func (s *Storage) Proof(root merkledag.Hash, path string) ([][]byte, error) {
	segments := splitPath(path)
	remaining, hashes, err := s.walk(root, segments)
	if nil != err {
		return nil, err
	}
	if len(remaining) > 0 {
		return nil, fault.ErrNotFound
	}

	proof := make([][]byte, len(hashes))
	for i, hash := range hashes {
		raw, err := s.store.ObjectGetProtobuf(hash)
		if nil != err {
			return nil, err
		}
		proof[len(hashes)-1-i] = raw
	}
	return proof, nil
}
