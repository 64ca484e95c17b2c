package main

import (
	"fmt"
	"os"
)

func debugLog(format string, a ...any) {
	if Debug {
		s := fmt.Sprintf(format, a...)
		fmt.Fprintf(os.Stderr, "[wp-sync] %s", s)
	}
}
