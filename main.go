// The main package for the newscrawler executable.
package main

import (
	"github.com/atlaswire/newscrawler/cmd"
)

func main() {
	cmd.Execute()
}
