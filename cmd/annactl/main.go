package main

import (
	"os"

	"github.com/jjgarcianorway/anna-assistant-sub019/cmd/annactl/commands"
)

func main() {
	os.Exit(commands.Execute())
}
