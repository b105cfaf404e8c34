// Package license signs and verifies the engine's license blob: an
// RSA-SHA1 signature over the JSON-encoded information block.
package license

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/jiangshenghai57/zmodel/zerr"
)

// Information is the signed payload.
type Information struct {
	CompanyName    string    `json:"company_name"`
	Email          string    `json:"email"`
	ExpirationDate time.Time `json:"expiration_date"`
	Author         string    `json:"author"`
}

// Blob is the persisted license file: the information block plus a
// base64-encoded RSA-SHA1 signature over its canonical JSON encoding.
type Blob struct {
	Information Information `json:"information"`
	Signature   string      `json:"signature"`
}

// Sign produces a Blob for info, signed with priv.
func Sign(info Information, priv *rsa.PrivateKey) (*Blob, error) {
	payload, err := json.Marshal(info)
	if err != nil {
		return nil, zerr.New(zerr.IOFailure, info.CompanyName, "information", err)
	}
	digest := sha1.Sum(payload)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA1, digest[:])
	if err != nil {
		return nil, zerr.New(zerr.LicenseInvalid, info.CompanyName, "signature", err)
	}
	return &Blob{
		Information: info,
		Signature:   base64.StdEncoding.EncodeToString(sig),
	}, nil
}

// Verify checks the Blob's signature against pub and rejects an expired
// license, returning a zerr.LicenseInvalid error on any failure.
func Verify(b *Blob, pub *rsa.PublicKey, now time.Time) error {
	payload, err := json.Marshal(b.Information)
	if err != nil {
		return zerr.New(zerr.LicenseInvalid, b.Information.CompanyName, "information", err)
	}
	sig, err := base64.StdEncoding.DecodeString(b.Signature)
	if err != nil {
		return zerr.New(zerr.LicenseInvalid, b.Information.CompanyName, "signature", err)
	}
	digest := sha1.Sum(payload)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA1, digest[:], sig); err != nil {
		return zerr.New(zerr.LicenseInvalid, b.Information.CompanyName, "signature", err)
	}
	if now.After(b.Information.ExpirationDate) {
		return zerr.New(zerr.LicenseInvalid, b.Information.CompanyName, "expiration_date", errExpired)
	}
	return nil
}

var errExpired = errors.New("license expired")
