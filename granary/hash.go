// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package granary

import (
	"golang.org/x/crypto/blake2b"
)

// Blake2b computes blake2b-256 checksum for given data.
// Used to derive storage slot positions for keyed mappings.
func Blake2b(data ...[]byte) (b32 Bytes32) {
	h, _ := blake2b.New256(nil)
	for _, b := range data {
		h.Write(b)
	}
	h.Sum(b32[:0])
	return
}
