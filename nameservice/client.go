// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package nameservice is the HTTP adapter to a mutable-name service
// (spec.md §6): publish(target_hash, key) → {name, value}, and
// resolve(name_or_key, nocache) → value of the form "/<scheme>/<hash>".
// A `:not_found` resolve is distinguished from a transport failure so
// callers (the follower loop) can treat "no publisher yet" as soft.
package nameservice

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/merkledag"
)

// DefaultTimeout - the concurrency model reserves 120s for publish/resolve
// calls, twice the ordinary MerkleDAG adapter default (spec.md §5)
const DefaultTimeout = 120 * time.Second

// PublishResult - the wire reply from a publish call
type PublishResult struct {
	Name  string
	Value string
}

// Client - a pooled adapter to one mutable-name service endpoint
type Client struct {
	baseURL string
	http    *http.Client
}

// New - build a Client against a name service's API base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// Publish - update the mapping key → target
func (c *Client) Publish(target merkledag.Hash, key string) (PublishResult, error) {
	values := url.Values{}
	values.Set("arg", string(target))
	if "" != key {
		values.Set("key", key)
	}
	var reply struct {
		Name  string `json:"Name"`
		Value string `json:"Value"`
	}
	if err := c.postForm("name/publish", values, &reply); nil != err {
		return PublishResult{}, err
	}
	return PublishResult{Name: reply.Name, Value: reply.Value}, nil
}

// Resolve - look up nameOrKey, returning the hash embedded in its
// "/<scheme>/<hash>" value. fault.ErrNotFound is returned when the name
// has never been published.
func (c *Client) Resolve(nameOrKey string, nocache bool) (merkledag.Hash, error) {
	values := url.Values{}
	values.Set("arg", nameOrKey)
	if nocache {
		values.Set("nocache", "true")
	}
	var reply struct {
		Path string `json:"Path"`
	}
	if err := c.postForm("name/resolve", values, &reply); nil != err {
		return "", err
	}
	return parseValue(reply.Path)
}

// parseValue - split a "/<scheme>/<hash>" value into its hash component
func parseValue(value string) (merkledag.Hash, error) {
	parts := strings.SplitN(strings.TrimPrefix(value, "/"), "/", 2)
	if 2 != len(parts) || "" == parts[1] {
		return "", fault.ProtocolError("malformed name value: " + value)
	}
	return merkledag.Hash(parts[1]), nil
}

func (c *Client) postForm(endpoint string, values url.Values, reply interface{}) error {
	u := c.baseURL + "/" + endpoint
	if len(values) > 0 {
		u += "?" + values.Encode()
	}

	request, err := http.NewRequest("POST", u, nil)
	if nil != err {
		return fault.TransportError(err.Error())
	}

	response, err := c.http.Do(request)
	if nil != err {
		return fault.TransportError(err.Error())
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if nil != err {
		return fault.TransportError(err.Error())
	}

	if http.StatusNotFound == response.StatusCode {
		return fault.ErrNotFound
	}
	if http.StatusOK != response.StatusCode {
		return fault.TransportError(fmt.Sprintf("status: %d %q on %q", response.StatusCode, response.Status, u))
	}
	return json.Unmarshal(body, reply)
}
