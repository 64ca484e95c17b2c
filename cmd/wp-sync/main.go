/*
Copyright © 2025 Daniel Wrenner <daniel@dwrenner.dev>
*/

package main

import "log"

func main() {
	if err := Execute(); err != nil {
		log.Fatal(err)
	}
}
