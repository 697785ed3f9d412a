// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package xfer encodes the startup announcement that rezprox writes to the
// coordinator that launched it.
//
// The coordinator speaks a small length-prefixed text format. A string
// field is a two-digit, zero-padded decimal length followed by the bytes
// of the string ([EncodeString]). An integer is encoded as the string
// field of its decimal representation ([EncodeLength]), so 15 becomes
// "0215". The announcement ([Announcement]) is a two-element vector of
// strings carrying the caller and callee listener addresses.
//
// The two-digit length field cannot represent strings of 100 bytes or
// more. Such values are rejected with [ErrFieldTooLong] rather than
// widened or truncated, since the coordinator would misparse either.
//
// This package has no dependencies on other packages in this module.
package xfer
