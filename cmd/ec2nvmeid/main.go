package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"

	"github.com/ec2-tools/go-ec2-nvme/pkg/nvme"
)

const (
	programName = "ec2nvmeid"
	programDesc = "Identify Amazon EC2 NVMe block devices"
)

// context is the context struct required by kong command line parser
type context struct{}

type rootCmd struct {
	JSON    bool     `help:"Print the probe results as JSON."`
	Verbose bool     `short:"v" help:"Dump the full probe result for each device."`
	Devices []string `arg:"" name:"device" help:"NVMe device nodes to identify (e.g. /dev/nvme0n1)."`
}

var cli rootCmd

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

	err := ctx.Run(&context{})
	ctx.FatalIfErrorf(err)
}

type probeOutput struct {
	Device string
	Error  string       `json:",omitempty"`
	Result *nvme.Device `json:",omitempty"`
}

func (c *rootCmd) Run(_ *context) error {
	spew.Config.Indent = "  "

	failed := 0
	out := []probeOutput{}
	for _, path := range c.Devices {
		d, err := nvme.ProbePath(path)
		if err != nil {
			failed++
			if c.JSON {
				out = append(out, probeOutput{Device: path, Error: err.Error()})
			} else {
				log.Printf("nvme.ProbePath(%s): %v", path, err)
			}
			continue
		}
		if c.JSON {
			out = append(out, probeOutput{Device: path, Result: d})
			continue
		}
		printDevice(path, d)
		if c.Verbose {
			spew.Dump(d)
		}
	}

	if c.JSON {
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %v", err)
		}
		os.Stdout.Write(b)
		fmt.Println()
	}

	if failed > 0 {
		return fmt.Errorf("failed to identify %d of %d devices", failed, len(c.Devices))
	}
	return nil
}

func printDevice(path string, d *nvme.Device) {
	fmt.Printf("%s:\n", path)
	fmt.Printf("  Model:        %s\n", d.ModelNumber)
	fmt.Printf("  Serial:       %s\n", d.SerialNumber)
	fmt.Printf("  Firmware:     %s\n", d.Firmware)
	if vol, ok := d.VolumeID(); ok {
		fmt.Printf("  Volume ID:    %s\n", vol)
	}
	if d.Names.DeviceName != "" {
		fmt.Printf("  Device name:  %s\n", d.Names.DeviceName)
	}
	if d.Names.VirtualName != "" {
		fmt.Printf("  Virtual name: %s\n", d.Names.VirtualName)
	}
}
