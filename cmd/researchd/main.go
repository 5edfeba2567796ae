// The main package for the researchd executable.
package main

import (
	"github.com/devscout/research-agent/cmd"
)

func main() {
	cmd.Execute()
}
