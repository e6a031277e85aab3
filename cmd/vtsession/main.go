// vtsession hosts terminal sessions inside a terminal.
package main

import (
	"os"

	"github.com/abdullathedruid/vtsession/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
