// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package forward

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const checksumPrefix = "blake2b-256:"

// Checksum returns the digest receivers use to check a payload arrived
// intact.
func Checksum(payload []byte) string {
	sum := blake2b.Sum256(payload)
	return checksumPrefix + hex.EncodeToString(sum[:])
}

// Verify checks env.Payload against env.Checksum. An envelope without a
// checksum passes.
func (e Envelope) Verify() error {
	if e.Checksum == "" {
		return nil
	}
	if got := Checksum(e.Payload); got != e.Checksum {
		return fmt.Errorf("envelope %s: checksum mismatch: got %s, want %s", e.ID, got, e.Checksum)
	}
	return nil
}
