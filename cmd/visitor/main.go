package main

import (
	"resume-visitor/cmd/visitor/commands"
	"resume-visitor/internal/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
