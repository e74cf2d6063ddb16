package main

import (
	"github.com/alecthomas/kong"
)

const (
	programName = "ec2nvmestat"
	programDesc = "Inventory and statistics for Amazon EC2 NVMe volumes"
)

// context is the context struct required by kong command line parser
type context struct{}

var cli struct {
	Show  showCmd  `cmd:"" default:"1" help:"Print the attached NVMe volumes."`
	Serve serveCmd `cmd:"" help:"Serve volume statistics as Prometheus metrics."`
}

func main() {
	// Parse kong flags and sub-commands
	ctx := kong.Parse(&cli,
		kong.Name(programName),
		kong.Description(programDesc),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	// Run the command
	err := ctx.Run(&context{})
	ctx.FatalIfErrorf(err)
}
