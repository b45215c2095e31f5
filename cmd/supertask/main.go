package main

import (
	"os"

	"supertask/cmd/supertask/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args[1:], os.Stdout, os.Stderr, nil))
}
