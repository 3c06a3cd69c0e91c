// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

import (
	"encoding/binary"
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// Hashers for use with WithHasher. The map indexes with the low bits of
// the hash, so every hasher here mixes all input bits into them.

// HashString hashes s with xxHash64.
func HashString(s string) uint64 {
	return xxhash.Sum64String(s)
}

// HashBytes hashes b with xxHash64.
func HashBytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// HashUint64 hashes v with MurmurHash3 over its little-endian encoding.
func HashUint64(v uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return murmur3.Sum64(b[:])
}

// HashInt hashes v with MurmurHash3.
func HashInt(v int) uint64 {
	return HashUint64(uint64(v))
}

// ComparableHasher returns a hasher for any comparable key, seeded once per
// call. Two maps built with separate hashers place the same key differently.
func ComparableHasher[K comparable]() func(K) uint64 {
	seed := maphash.MakeSeed()
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}
