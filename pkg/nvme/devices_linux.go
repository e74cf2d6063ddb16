// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package nvme

import (
	"fmt"
	"os"
	"strings"
)

// For unit testing
var (
	osReadFile = os.ReadFile
	osReadDir  = os.ReadDir
)

// ListDevices enumerates the NVMe device nodes present under /dev,
// controllers and namespaces alike. Entries that merely share the prefix
// without being parseable nvme nodes are skipped.
func ListDevices() ([]DeviceFileAttributes, error) {
	entries, err := osReadDir(devDirectoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s: %w", devDirectoryPath, err)
	}
	devices := []DeviceFileAttributes{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), nvmeDevicePrefix) {
			continue
		}
		device, err := ParseDeviceFileName(entry.Name())
		if err != nil {
			continue
		}
		devices = append(devices, device)
	}
	return devices, nil
}

// ControllerSerial reads the controller serial number from sysfs. For EBS
// volumes this carries the volume ID.
func ControllerSerial(device DeviceFileAttributes) (string, error) {
	return readControllerAttr(device, "serial")
}

// ControllerModel reads the controller model number from sysfs.
func ControllerModel(device DeviceFileAttributes) (string, error) {
	return readControllerAttr(device, "model")
}

// DetectModel classifies a device from its sysfs model number alone. It
// needs no privileges and no open device node, but unlike Probe it cannot
// check the vendor ID.
func DetectModel(device DeviceFileAttributes) (Model, error) {
	model, err := ControllerModel(device)
	if err != nil {
		return ModelUnknown, err
	}
	return classifyModelNumber(model), nil
}

func readControllerAttr(device DeviceFileAttributes, attr string) (string, error) {
	data, err := osReadFile(fmt.Sprintf("%s/%s/%s", nvmeSysDirectoryPath, device.BaseDeviceName(), attr))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
