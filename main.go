// The main package for the avharvest executable.
package main

import (
	"github.com/jobharvest/avharvest/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
