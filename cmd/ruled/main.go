// Command ruled runs the home-automation rule engine.
package main

import (
	"os"

	"github.com/linknx-go/ruled/cli"
)

func main() {
	os.Exit(cli.Main())
}
