// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package dagclient is the HTTP adapter to the MerkleDAG daemon: the one
// place the core talks to the object store over the network. It keeps a
// pooled *http.Client and implements exactly the adapter contract the
// Storage layer requires.
package dagclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/merkledag"
)

// default timeout, per the concurrency model: 60s for ordinary calls
// (the nameservice package keeps its own 120s client)
const (
	DefaultTimeout = 60 * time.Second
)

// Link - the wire shape of a dag-pb link as returned by object_get
type Link struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size uint64 `json:"Size"`
}

// Object - the wire shape of a decoded node as returned by object_get
type Object struct {
	Data  string `json:"Data"`
	Links []Link `json:"Links"`
}

// Client - a pooled adapter to one MerkleDAG daemon endpoint
type Client struct {
	baseURL string
	http    *http.Client
}

// New - build a Client against a daemon's API base URL, e.g.
// "http://127.0.0.1:5001/api/v0"
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// NewWithTimeout - as New, overriding the request timeout
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	c := New(baseURL)
	c.http.Timeout = timeout
	return c
}

// ObjectNew - create an empty object, returning its hash
func (c *Client) ObjectNew() (merkledag.Hash, error) {
	var reply struct {
		Hash string `json:"Hash"`
	}
	if err := c.postForm("object/new", nil, &reply); nil != err {
		return "", err
	}
	return merkledag.Hash(reply.Hash), nil
}

// ObjectPut - store data as a leaf object, returning its hash.
// createIntermediates is accepted for interface symmetry with
// object_patch_add_link; a bare object_put has no path to create
// intermediates along.
func (c *Client) ObjectPut(data []byte, createIntermediates bool) (merkledag.Hash, error) {
	var reply struct {
		Hash string `json:"Hash"`
	}
	body, contentType, err := encodeMultipartFile("data", data)
	if nil != err {
		return "", err
	}
	if err := c.postMultipart("object/put", body, contentType, &reply); nil != err {
		return "", err
	}
	return merkledag.Hash(reply.Hash), nil
}

// ObjectPatchAddLink - add (or replace) a named link from root, building
// intermediate tree nodes along path when createIntermediates is true;
// returns the new root hash
func (c *Client) ObjectPatchAddLink(root merkledag.Hash, path string, childHash merkledag.Hash, createIntermediates bool) (merkledag.Hash, error) {
	var reply struct {
		Hash string `json:"Hash"`
	}
	values := url.Values{}
	values.Set("arg", string(root))
	values.Add("arg", path)
	values.Add("arg", string(childHash))
	if createIntermediates {
		values.Set("create", "true")
	}
	if err := c.postForm("object/patch/add-link", values, &reply); nil != err {
		return "", err
	}
	return merkledag.Hash(reply.Hash), nil
}

// ObjectGet - fetch a node's decoded data and links
func (c *Client) ObjectGet(hash merkledag.Hash) (merkledag.Node, error) {
	var reply Object
	values := url.Values{}
	values.Set("arg", string(hash))
	if err := c.postForm("object/get", values, &reply); nil != err {
		return merkledag.Node{}, err
	}

	node := merkledag.Node{Data: []byte(reply.Data)}
	for _, link := range reply.Links {
		node.Links = append(node.Links, merkledag.Link{
			Name: link.Name,
			Hash: merkledag.Hash(link.Hash),
			Size: link.Size,
		})
	}
	return node, nil
}

// ObjectGetProtobuf - fetch a node's raw dag-pb encoded bytes, as used by
// the Prover to build a proof chain
func (c *Client) ObjectGetProtobuf(hash merkledag.Hash) ([]byte, error) {
	values := url.Values{}
	values.Set("arg", string(hash))
	return c.postFormRaw("object/get", values, true)
}

// postForm - invoke an endpoint expecting a JSON reply
func (c *Client) postForm(endpoint string, values url.Values, reply interface{}) error {
	body, err := c.postFormRaw(endpoint, values, false)
	if nil != err {
		return err
	}
	return json.Unmarshal(body, reply)
}

func (c *Client) postFormRaw(endpoint string, values url.Values, protobuf bool) ([]byte, error) {
	if nil == values {
		values = url.Values{}
	}
	if protobuf {
		values.Set("encoding", "protobuf")
	}

	u := c.baseURL + "/" + endpoint
	if len(values) > 0 {
		u += "?" + values.Encode()
	}

	request, err := http.NewRequest("POST", u, nil)
	if nil != err {
		return nil, fault.TransportError(err.Error())
	}

	response, err := c.http.Do(request)
	if nil != err {
		return nil, fault.TransportError(err.Error())
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if nil != err {
		return nil, fault.TransportError(err.Error())
	}

	if http.StatusNotFound == response.StatusCode {
		return nil, fault.ErrNotFound
	}
	if http.StatusOK != response.StatusCode {
		return nil, fault.TransportError(fmt.Sprintf("status: %d %q on %q", response.StatusCode, response.Status, u))
	}
	return body, nil
}

func (c *Client) postMultipart(endpoint string, body *bytes.Buffer, contentType string, reply interface{}) error {
	u := c.baseURL + "/" + endpoint
	request, err := http.NewRequest("POST", u, body)
	if nil != err {
		return fault.TransportError(err.Error())
	}
	request.Header.Set("Content-Type", contentType)

	response, err := c.http.Do(request)
	if nil != err {
		return fault.TransportError(err.Error())
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if nil != err {
		return fault.TransportError(err.Error())
	}
	if http.StatusOK != response.StatusCode {
		return fault.TransportError(fmt.Sprintf("status: %d %q on %q", response.StatusCode, response.Status, u))
	}
	return json.Unmarshal(responseBody, reply)
}

func encodeMultipartFile(field string, data []byte) (*bytes.Buffer, string, error) {
	buffer := &bytes.Buffer{}
	writer := multipart.NewWriter(buffer)
	part, err := writer.CreateFormFile(field, "data.bin")
	if nil != err {
		return nil, "", fault.TransportError(err.Error())
	}
	if _, err := part.Write(data); nil != err {
		return nil, "", fault.TransportError(err.Error())
	}
	if err := writer.Close(); nil != err {
		return nil, "", fault.TransportError(err.Error())
	}
	return buffer, writer.FormDataContentType(), nil
}
