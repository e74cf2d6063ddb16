// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nvme

import (
	"errors"
	"os"
	"strings"
)

var (
	ErrNotSupported    = errors.New("operation is not supported")
	ErrIdentifySize    = errors.New("unexpected identify controller response size")
	ErrUnparseableName = errors.New("unparseable device name")
)

// Amazon NVMe controllers report this PCI vendor ID together with one of
// the model strings below.
const (
	AmazonVendorID uint16 = 0x1d0f

	EBSModelNumber           = "Amazon Elastic Block Store"
	InstanceStoreModelNumber = "Amazon EC2 NVMe Instance Storage"
)

// Model is the recognized kind of an NVMe controller.
type Model int

const (
	ModelUnknown Model = iota
	ModelElasticBlockStore
	ModelInstanceStore
)

func (m Model) String() string {
	switch m {
	case ModelElasticBlockStore:
		return "ebs"
	case ModelInstanceStore:
		return "instance-store"
	}
	return "unknown"
}

func (m Model) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// classify narrows a controller to one of the known models. Controllers
// from other vendors, and Amazon controllers with an unexpected model
// number, are ModelUnknown; classification itself never fails.
func classify(vid uint16, modelNumber string) Model {
	if vid != AmazonVendorID {
		return ModelUnknown
	}
	return classifyModelNumber(modelNumber)
}

func classifyModelNumber(modelNumber string) Model {
	switch modelNumber {
	case EBSModelNumber:
		return ModelElasticBlockStore
	case InstanceStoreModelNumber:
		return ModelInstanceStore
	}
	return ModelUnknown
}

// Names holds the vendor-assigned names of a volume: the device name from
// the block device mapping and, for instance store volumes, the virtual
// name such as "ephemeral0". Either field is empty when the controller
// does not report it.
type Names struct {
	DeviceName  string
	VirtualName string
}

func (n Names) Available() bool {
	return n.DeviceName != "" || n.VirtualName != ""
}

// Name returns the device name, falling back to the virtual name for
// instance store volumes that are not in the block device mapping.
func (n Names) Name() (string, bool) {
	if n.DeviceName != "" {
		return n.DeviceName, true
	}
	if n.VirtualName != "" {
		return n.VirtualName, true
	}
	return "", false
}

// Device is the result of probing one NVMe controller.
type Device struct {
	Model        Model
	Names        Names
	VendorID     uint16
	ModelNumber  string
	SerialNumber string
	Firmware     string
}

func (d *Device) Name() (string, bool) {
	return d.Names.Name()
}

// VolumeID returns the EBS volume ID carried in the controller serial
// number, normalized to the canonical "vol-" prefix.
func (d *Device) VolumeID() (string, bool) {
	if d.Model != ModelElasticBlockStore {
		return "", false
	}
	vol := d.SerialNumber
	if !strings.HasPrefix(vol, "vol") || len(vol) == len("vol") {
		return "", false
	}
	if vol[3] != '-' {
		vol = "vol-" + vol[3:]
	}
	return vol, true
}

// FdIntf is the file descriptor surface a probe borrows for the duration
// of a single command. *os.File implements it. The probe never closes it.
type FdIntf interface {
	Fd() uintptr
}

// Probe identifies the NVMe controller behind fd. It issues a single
// Identify Controller admin command and decodes the result; fd is used
// synchronously and is not retained.
func Probe(fd FdIntf) (*Device, error) {
	raw, err := identifyController(fd)
	if err != nil {
		return nil, err
	}
	return probeIdentify(raw)
}

// ProbePath opens the device node at path, probes it and closes it again.
func ProbePath(path string) (*Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Probe(f)
}

func probeIdentify(raw []byte) (*Device, error) {
	id, err := ParseIdentifyController(raw)
	if err != nil {
		return nil, err
	}
	model := classify(id.VendorID, id.ModelNumber)
	names, err := ParseNames(id.VendorSpecific[:], model)
	if err != nil {
		return nil, err
	}
	return &Device{
		Model:        model,
		Names:        names,
		VendorID:     id.VendorID,
		ModelNumber:  id.ModelNumber,
		SerialNumber: id.SerialNumber,
		Firmware:     id.Firmware,
	}, nil
}
