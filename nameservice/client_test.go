// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nameservice_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/merkledag"
	"github.com/hayesgm/daisy/nameservice"
)

func TestPublish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/name/publish", r.URL.Path)
		assert.Equal(t, "QmRoot", r.URL.Query().Get("arg"))
		assert.Equal(t, "daisy-key", r.URL.Query().Get("key"))
		json.NewEncoder(w).Encode(map[string]string{
			"Name":  "daisy-key",
			"Value": "/ipfs/QmRoot",
		})
	}))
	defer server.Close()

	client := nameservice.New(server.URL)
	result, err := client.Publish(merkledag.Hash("QmRoot"), "daisy-key")
	require.NoError(t, err)
	assert.Equal(t, "daisy-key", result.Name)
	assert.Equal(t, "/ipfs/QmRoot", result.Value)
}

func TestResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/name/resolve", r.URL.Path)
		assert.Equal(t, "daisy-key", r.URL.Query().Get("arg"))
		assert.Equal(t, "true", r.URL.Query().Get("nocache"))
		json.NewEncoder(w).Encode(map[string]string{"Path": "/ipfs/QmHead"})
	}))
	defer server.Close()

	client := nameservice.New(server.URL)
	hash, err := client.Resolve("daisy-key", true)
	require.NoError(t, err)
	assert.Equal(t, merkledag.Hash("QmHead"), hash)
}

func TestResolveNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := nameservice.New(server.URL)
	_, err := client.Resolve("daisy-key", true)
	assert.Equal(t, fault.ErrNotFound, err)
}

func TestResolveMalformedValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"Path": "not-a-path"})
	}))
	defer server.Close()

	client := nameservice.New(server.URL)
	_, err := client.Resolve("daisy-key", true)
	assert.True(t, fault.IsErrProtocol(err))
}
