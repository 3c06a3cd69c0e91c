// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package lfds

// RaceEnabled is true when the race detector is active.
// Concurrent tests check it and skip, since slot data guarded by a
// separate sequence or state word looks racy to the detector.
const RaceEnabled = true
