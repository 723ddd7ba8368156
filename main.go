package main

import "github.com/leadscope/sitediag/cmd"

// Indirection so tests can stub out command execution.
var execCmd = cmd.Execute

func main() {
	execCmd()
}
