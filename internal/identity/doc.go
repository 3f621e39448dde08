// Package identity is the adapter for the external credential store, a
// GoTrue-compatible auth API. The store owns password hashing, token
// issuance, verification and reset email dispatch; this package only speaks
// its REST surface and reports its errors verbatim for the account layer's
// error mapper.
package identity
