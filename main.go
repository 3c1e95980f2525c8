// The main package for the bookdex executable.
package main

import (
	"bookdex/cmd"
)

func main() {
	cmd.Execute()
}
