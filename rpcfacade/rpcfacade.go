// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpcfacade is the HTTP adapter to the tracker (spec.md §6),
// explicitly out of the core's scope but included to round out the
// external contract: read, prepare-for-signing, submit a signed
// transaction, and read at a specific historical block.
package rpcfacade

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/bitmark-inc/logger"

	"github.com/hayesgm/daisy/block"
	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/merkledag"
	"github.com/hayesgm/daisy/signature"
	"github.com/hayesgm/daisy/storage"
	"github.com/hayesgm/daisy/tracker"
)

// Server - dependencies the façade routes need beyond the tracker
// singleton (storage and serializer are needed to load an arbitrary
// historical block by hash for the /read/block route)
type Server struct {
	log        *logger.L
	storage    *storage.Storage
	serializer block.Serializer
	reader     block.Reader
	runner     block.Runner
}

// New - build the façade's router
func New(s *storage.Storage, ser block.Serializer, reader block.Reader, runner block.Runner) http.Handler {
	srv := &Server{
		log:        logger.New("rpcfacade"),
		storage:    s,
		serializer: ser,
		reader:     reader,
		runner:     runner,
	}

	router := httprouter.New()
	// httprouter cannot register both /read/block/:block_hash/:function/*args
	// and /read/:function/*args, so one catch-all dispatches the two shapes
	router.GET("/read/*path", func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		path := strings.TrimPrefix(params.ByName("path"), "/")
		parts := strings.SplitN(path, "/", 4)
		if 4 == len(parts) && "block" == parts[0] {
			srv.readAtBlock(w, r, httprouter.Params{{Key: "block_hash", Value: parts[1]}, {Key: "function", Value: parts[2]}, {Key: "args", Value: parts[3]}})
			return
		}
		parts = append(strings.SplitN(path, "/", 2), "")
		srv.read(w, r, httprouter.Params{{Key: "function", Value: parts[0]}, {Key: "args", Value: parts[1]}})
	})
	router.GET("/prepare/:function/*args", srv.prepare)
	router.POST("/run/:function/*args", srv.run)
	return router
}

func splitArgs(raw string) []string {
	trimmed := strings.Trim(raw, "/")
	if "" == trimmed {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case fault.IsErrNotFound(err):
		status = http.StatusNotFound
	case fault.IsErrInvalid(err):
		status = http.StatusBadRequest
	case fault.IsErrProtocol(err):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (srv *Server) read(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	result, err := tracker.Read(params.ByName("function"), splitArgs(params.ByName("args")))
	if nil != err {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

func (srv *Server) readAtBlock(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	hash := merkledag.Hash(params.ByName("block_hash"))
	b, err := block.Load(hash, srv.storage, srv.serializer)
	if nil != err {
		writeError(w, err)
		return
	}
	root := b.FinalStorage
	if root.IsEmpty() {
		root = b.InitialStorage
	}
	result, err := srv.reader.Read(srv.storage, params.ByName("function"), splitArgs(params.ByName("args")), root)
	if nil != err {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

func (srv *Server) prepare(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	inv := block.Invocation{Function: params.ByName("function"), Args: splitArgs(params.ByName("args"))}
	payload := block.SignaturePayload(inv)
	writeJSON(w, http.StatusOK, map[string]string{"invocation": base64.StdEncoding.EncodeToString(payload)})
}

type runRequestBody struct {
	Signature string `json:"signature"`
	PublicKey string `json:"public_key"`
}

func (srv *Server) run(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	var body runRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); nil != err {
		writeError(w, fault.ProtocolError("malformed request body: "+err.Error()))
		return
	}

	sigBytes, err := base64.StdEncoding.DecodeString(body.Signature)
	if nil != err {
		writeError(w, fault.ProtocolError("malformed signature: "+err.Error()))
		return
	}
	derBytes, err := base64.StdEncoding.DecodeString(body.PublicKey)
	if nil != err {
		writeError(w, fault.ProtocolError("malformed public_key: "+err.Error()))
		return
	}
	pub, err := signature.DecodeDERPublicKey(derBytes)
	if nil != err {
		writeError(w, err)
		return
	}

	inv := block.Invocation{Function: params.ByName("function"), Args: splitArgs(params.ByName("args"))}
	tx := block.Transaction{
		Invocation: inv,
		Signature:  &signature.Signature{Sig: sigBytes, Pub: pub},
	}
	if err := tx.Validate(); nil != err {
		writeError(w, err)
		return
	}

	if err := tracker.AddTransaction(tx); nil != err {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
