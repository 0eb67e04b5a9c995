// Command wareki converts between Gregorian, Japanese era and Minguo years
// from the command line.
//
// Usage:
//
//	wareki era 2019
//	wareki from-era reiwa 7
//	wareki minguo 2024
//	wareki from-minguo 113
//	wareki diff 2024-01-01 2024-12-31
//	wareki next-holiday --date 2025-12-31
//	wareki table --era heisei
//
// Every command accepts --lang ja|zh-TW|en. With --db the holiday template is
// read from the SQLite store written by cmd/import.
package main

import (
	"fmt"
	"os"

	"github.com/zapponejosh/wareki-api/internal/calendar"
)

func main() {
	cmd := newRootCommand(calendar.RealClock{})
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
