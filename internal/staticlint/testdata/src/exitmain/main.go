package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("serving")
	os.Exit(1) // want "using os.Exit in main function of main package"

	if len(os.Args) > 1 {
		os.Exit(2) // want "using os.Exit in main function of main package"
	}

	defer func() {
		os.Exit(3)
	}()
}
