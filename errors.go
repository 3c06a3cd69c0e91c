// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

import "code.hybscloud.com/iox"

// ErrWouldBlock reports that a queue operation cannot proceed right now.
//
// Enqueue returns it when the queue is full, Dequeue when it is empty.
// It is a boundary outcome, not a failure: nothing was changed and the
// call may be retried later.
//
// This is an alias for [iox.ErrWouldBlock].
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err is (or wraps) [ErrWouldBlock].
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal.
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err is nil or a control flow signal.
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// mustPow2 panics unless capacity is a power of two and at least 2.
func mustPow2(capacity int) {
	if capacity < 2 {
		panic("lfds: capacity must be >= 2")
	}
	if capacity&(capacity-1) != 0 {
		panic("lfds: capacity must be a power of 2")
	}
}
