// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package main provides the entry point for lfstress.
//
// lfstress drives the lfds queues and hash map from concurrent workers,
// checks that no element is lost or duplicated, and reports throughput.
package main

import (
	"fmt"
	"os"

	"code.hybscloud.com/lfds/internal/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
