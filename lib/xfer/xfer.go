// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xfer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxFieldLength is the longest string a two-digit length field can
// describe.
const MaxFieldLength = 99

// announcementHeader opens a two-element vector ("09" vector tag, "012"
// element count) followed by the string tag of the first element.
const announcementHeader = "0901202"

// stringTag precedes every string element after the first.
const stringTag = "02"

// ErrFieldTooLong is returned when a string does not fit in a two-digit
// length field.
var ErrFieldTooLong = errors.New("xfer: field longer than 99 bytes")

// EncodeString returns the two-digit, zero-padded length of value
// followed by value itself.
func EncodeString(value string) (string, error) {
	if len(value) > MaxFieldLength {
		return "", fmt.Errorf("%w: %d bytes", ErrFieldTooLong, len(value))
	}
	return fmt.Sprintf("%02d%s", len(value), value), nil
}

// EncodeLength encodes a non-negative integer as the string field of its
// decimal form: 9 becomes "019", 15 becomes "0215".
func EncodeLength(length int) (string, error) {
	if length < 0 {
		return "", fmt.Errorf("xfer: negative length %d", length)
	}
	return EncodeString(strconv.Itoa(length))
}

// Announcement builds the message that tells the coordinator where the
// caller and callee should connect. Both addresses are textual
// "host:port" strings as returned by net.Addr.String.
func Announcement(callerAddress, calleeAddress string) (string, error) {
	var builder strings.Builder
	builder.WriteString(announcementHeader)
	if err := writeAddress(&builder, callerAddress); err != nil {
		return "", fmt.Errorf("encoding caller address: %w", err)
	}
	builder.WriteString(stringTag)
	if err := writeAddress(&builder, calleeAddress); err != nil {
		return "", fmt.Errorf("encoding callee address: %w", err)
	}
	return builder.String(), nil
}

// writeAddress appends the encoded length of address and then the
// address bytes. The address itself must still fit a two-digit field so
// the coordinator can read it back.
func writeAddress(builder *strings.Builder, address string) error {
	if len(address) > MaxFieldLength {
		return fmt.Errorf("%w: %q", ErrFieldTooLong, address)
	}
	length, err := EncodeLength(len(address))
	if err != nil {
		return err
	}
	builder.WriteString(length)
	builder.WriteString(address)
	return nil
}
