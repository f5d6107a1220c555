package main

import (
	"fmt"
	system "os"
)

func main() {
	if len(system.Args) < 2 {
		exit("usage")
	}
	system.Exit(0) // want "using os.Exit in main function of main package"
}

func exit(msg string) {
	fmt.Fprintln(system.Stderr, msg)
	system.Exit(1)
}
