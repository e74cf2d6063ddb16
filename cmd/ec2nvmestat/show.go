package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/ec2-tools/go-ec2-nvme/pkg/nvme"
)

type showCmd struct {
	Output   string `short:"o" default:"table" enum:"table,json,openmetrics" help:"Output format; one of [table, json, openmetrics]."`
	NoHeader bool   `help:"Suppress the header in table format output."`
	Stats    bool   `short:"s" help:"Also read the vendor statistics log page of every volume."`
}

type DeviceState struct {
	Device        string
	Type          string
	Serial        string                   `json:",omitempty"`
	Identity      *nvme.Device             `json:",omitempty"`
	EBS           *nvme.EBSStats           `json:",omitempty"`
	InstanceStore *nvme.InstanceStoreStats `json:",omitempty"`
}

type Devices []DeviceState

func (s *showCmd) Run(_ *context) error {
	state, err := collectState(s.Stats, nil)
	if err != nil {
		return err
	}
	switch s.Output {
	case "json":
		return outputJSON(state)
	case "openmetrics":
		return outputMetrics(state)
	default:
		return outputTable(state, !s.NoHeader)
	}
}

// collectState probes every NVMe controller node present in /dev. A nil
// allowed function admits all controllers. Controllers that cannot be
// probed are reported from sysfs alone rather than dropped.
func collectState(withStats bool, allowed func(string) bool) (Devices, error) {
	devs, err := nvme.ListDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate NVMe devices: %w", err)
	}

	var state Devices
	for _, dev := range devs {
		if dev.Namespace() != -1 {
			// Namespace and partition nodes identify the same
			// controller, keep one entry per controller.
			continue
		}
		if allowed != nil && !allowed(dev.DeviceName()) {
			continue
		}
		devpath, err := nvme.DevicePath(dev.DeviceName())
		if err != nil {
			log.Printf("nvme.DevicePath(%s): %v", dev.DeviceName(), err)
			continue
		}
		state = append(state, probeState(dev, devpath, withStats))
	}
	return state, nil
}

func probeState(dev nvme.DeviceFileAttributes, devpath string, withStats bool) DeviceState {
	s := DeviceState{Device: devpath, Type: nvme.ModelUnknown.String()}

	f, err := os.Open(devpath)
	if err != nil {
		log.Printf("os.Open(%s): %v", devpath, err)
		return sysfsState(dev, s)
	}
	defer f.Close()

	d, err := nvme.Probe(f)
	if err != nil {
		log.Printf("nvme.Probe(%s): %v", devpath, err)
		return sysfsState(dev, s)
	}
	s.Identity = d
	s.Type = d.Model.String()
	s.Serial = d.SerialNumber

	if !withStats {
		return s
	}
	switch d.Model {
	case nvme.ModelElasticBlockStore:
		stats, err := nvme.ReadEBSStats(f)
		if err != nil {
			log.Printf("nvme.ReadEBSStats(%s): %v", devpath, err)
			return s
		}
		s.EBS = &stats
	case nvme.ModelInstanceStore:
		stats, err := nvme.ReadInstanceStoreStats(f)
		if err != nil {
			log.Printf("nvme.ReadInstanceStoreStats(%s): %v", devpath, err)
			return s
		}
		s.InstanceStore = &stats
	}
	return s
}

// sysfsState fills in what the kernel already knows about a controller
// that could not be opened or identified, e.g. due to permissions.
func sysfsState(dev nvme.DeviceFileAttributes, s DeviceState) DeviceState {
	if model, err := nvme.DetectModel(dev); err == nil {
		s.Type = model.String()
	}
	if serial, err := nvme.ControllerSerial(dev); err == nil {
		s.Serial = serial
	}
	return s
}

func outputJSON(state Devices) error {
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %v", err)
	}
	os.Stdout.Write(b)
	fmt.Println()
	return nil
}

func outputTable(state Devices, header bool) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	if header {
		fmt.Fprintf(w, "DEVICE\tTYPE\tVOLUME\tNAME\tVIRTUAL\tREAD\tWRITTEN\tQUEUE\n")
	}
	for _, s := range state {
		volume, name, virtual := "-", "-", "-"
		if s.Identity != nil {
			if id, ok := s.Identity.VolumeID(); ok {
				volume = id
			} else if s.Identity.SerialNumber != "" {
				volume = s.Identity.SerialNumber
			}
			if s.Identity.Names.DeviceName != "" {
				name = s.Identity.Names.DeviceName
			}
			if s.Identity.Names.VirtualName != "" {
				virtual = s.Identity.Names.VirtualName
			}
		} else if s.Serial != "" {
			volume = s.Serial
		}

		read, written, queue := "-", "-", "-"
		if s.EBS != nil {
			read = humanize.IBytes(s.EBS.ReadBytes)
			written = humanize.IBytes(s.EBS.WriteBytes)
			queue = fmt.Sprint(s.EBS.QueueLength)
		} else if s.InstanceStore != nil {
			read = humanize.IBytes(s.InstanceStore.ReadBytes)
			written = humanize.IBytes(s.InstanceStore.WriteBytes)
			queue = fmt.Sprint(s.InstanceStore.QueueLength)
		}

		fmt.Fprint(w,
			s.Device, "\t",
			s.Type, "\t",
			volume, "\t",
			name, "\t",
			virtual, "\t",
			read, "\t",
			written, "\t",
			queue, "\t",
			"\n")
	}
	return w.Flush()
}
