package main

import (
	. "os"
)

func main() {
	Exit(0) // want "using os.Exit in main function of main package"
}
