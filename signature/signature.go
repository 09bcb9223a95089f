// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package signature provides ECDSA secp256k1 keypair generation,
// signing, and verification for Daisy's transaction authorization, plus
// SubjectPublicKeyInfo (DER) decoding for public keys submitted over the
// HTTP façade.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hayesgm/daisy/fault"
)

func bigIntFromBytes(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// KeyPair - a raw (public, private) byte pair. Public is the 65 byte
// uncompressed secp256k1 point; Private is the 32 byte scalar.
type KeyPair struct {
	Public  []byte
	Private []byte
}

// Signature - a detached signature over some data, carrying the
// signer's public key alongside it so Verify needs nothing else
type Signature struct {
	Sig []byte
	Pub []byte
}

// GenerateKey - produce a fresh secp256k1 keypair
func GenerateKey() (KeyPair, error) {
	priv, err := crypto.GenerateKey()
	if nil != err {
		return KeyPair{}, fault.ProcessError(err.Error())
	}
	return KeyPair{
		Public:  crypto.FromECDSAPub(&priv.PublicKey),
		Private: crypto.FromECDSA(priv),
	}, nil
}

// digest - the SHA-256 digest that is actually signed, per spec:
// ECDSA over secp256k1 with a SHA-256 digest
func digest(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Sign - sign data with keypair, returning the 65 byte [R|S|V]
// signature and the signer's public key
func Sign(data []byte, keypair KeyPair) (Signature, error) {
	priv, err := crypto.ToECDSA(keypair.Private)
	if nil != err {
		return Signature{}, fault.InvalidError("invalid private key: " + err.Error())
	}

	sig, err := crypto.Sign(digest(data), priv)
	if nil != err {
		return Signature{}, fault.ProcessError(err.Error())
	}

	return Signature{Sig: sig, Pub: keypair.Public}, nil
}

// Verify - confirm sig actually signs data under its own embedded
// public key. Returns the verified public key on success, or
// fault.ErrInvalidSignature on any failure — malformed signature,
// malformed public key, or a mismatch between the two.
func Verify(data []byte, sig Signature) ([]byte, error) {
	if 65 != len(sig.Sig) {
		return nil, fault.ErrInvalidSignature
	}
	if !crypto.ValidateSignatureValues(sig.Sig[64], bigIntFromBytes(sig.Sig[:32]), bigIntFromBytes(sig.Sig[32:64]), false) {
		return nil, fault.ErrInvalidSignature
	}

	hash := digest(data)
	recoverable := sig.Sig[:len(sig.Sig)-1]
	if !crypto.VerifySignature(sig.Pub, hash, recoverable) {
		return nil, fault.ErrInvalidSignature
	}
	return sig.Pub, nil
}

// DecodeDERPublicKey - parse a DER-encoded SubjectPublicKeyInfo and
// return the raw uncompressed secp256k1 public key bytes it carries
func DecodeDERPublicKey(der []byte) ([]byte, error) {
	parsed, err := x509.ParsePKIXPublicKey(der)
	if nil != err {
		return nil, fault.ProtocolError("malformed DER public key: " + err.Error())
	}
	ecdsaKey, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, fault.ProtocolError("DER public key is not an ECDSA key")
	}
	return crypto.FromECDSAPub(ecdsaKey), nil
}

// EncodeDERPublicKey - the inverse of DecodeDERPublicKey, used by
// callers preparing a DER SubjectPublicKeyInfo to submit to the HTTP
// façade's /run endpoint
func EncodeDERPublicKey(raw []byte) ([]byte, error) {
	ecdsaKey, err := crypto.UnmarshalPubkey(raw)
	if nil != err {
		return nil, fault.InvalidError("invalid public key: " + err.Error())
	}
	return x509.MarshalPKIXPublicKey(ecdsaKey)
}
