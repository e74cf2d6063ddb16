// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nvme

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	nvmeDevicePrefix     = "nvme"
	devDirectoryPath     = "/dev"
	nvmeSysDirectoryPath = "/sys/class/nvme"

	maxDeviceNameLen = 32
)

// DeviceFileAttributes is the decomposition of an NVMe device node name
// such as "nvme0", "nvme0n1" or "nvme0n1p2". Namespace and partition are
// -1 when the name does not carry them.
type DeviceFileAttributes struct {
	name       string
	controller int
	namespace  int
	partition  int
}

// ParseDeviceFileName decomposes an NVMe device node name. The controller
// id is mandatory; a name that does not parse completely is rejected.
func ParseDeviceFileName(device string) (DeviceFileAttributes, error) {
	attrs := DeviceFileAttributes{name: device, controller: -1, namespace: -1, partition: -1}
	if !strings.HasPrefix(device, nvmeDevicePrefix) {
		return attrs, fmt.Errorf("device %q is not an nvme device node", device)
	}

	rest := strings.TrimPrefix(device, nvmeDevicePrefix)
	ctrl := rest
	var ns, part string
	var hasNS, hasPart bool
	if i := strings.Index(rest, "n"); i >= 0 {
		ctrl, ns = rest[:i], rest[i+1:]
		hasNS = true
		if j := strings.Index(ns, "p"); j >= 0 {
			ns, part = ns[:j], ns[j+1:]
			hasPart = true
		}
	}

	var err error
	if attrs.controller, err = parseDeviceID(ctrl); err != nil {
		return attrs, fmt.Errorf("device %q: controller id: %w", device, err)
	}
	if hasNS {
		if attrs.namespace, err = parseDeviceID(ns); err != nil {
			return attrs, fmt.Errorf("device %q: namespace id: %w", device, err)
		}
	}
	if hasPart {
		if attrs.partition, err = parseDeviceID(part); err != nil {
			return attrs, fmt.Errorf("device %q: partition id: %w", device, err)
		}
	}
	return attrs, nil
}

func parseDeviceID(s string) (int, error) {
	if s == "" {
		return -1, fmt.Errorf("empty id")
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return -1, err
	}
	if id < 0 {
		return -1, fmt.Errorf("negative id %d", id)
	}
	return id, nil
}

func (d DeviceFileAttributes) Controller() int {
	return d.controller
}

func (d DeviceFileAttributes) Namespace() int {
	return d.namespace
}

func (d DeviceFileAttributes) Partition() int {
	return d.partition
}

// DeviceName returns the device node name the attributes were parsed from.
func (d DeviceFileAttributes) DeviceName() string {
	return d.name
}

// BaseDeviceName returns the name of the controller node, which is where
// sysfs keeps the per-controller attributes.
func (d DeviceFileAttributes) BaseDeviceName() string {
	return fmt.Sprintf("nvme%d", d.controller)
}

// DevicePath resolves a bare device name to its /dev path. The name is
// validated so that untrusted input cannot escape the /dev directory.
func DevicePath(device string) (string, error) {
	device = strings.TrimSpace(device)
	if device == "" {
		return "", fmt.Errorf("device name cannot be empty")
	}
	if len(device) > maxDeviceNameLen {
		return "", fmt.Errorf("device name %q exceeds %d characters", device, maxDeviceNameLen)
	}
	for _, c := range device {
		if !validDeviceNameChar(c) {
			return "", fmt.Errorf("device name %q contains invalid character %q", device, c)
		}
	}
	return filepath.Join(devDirectoryPath, device), nil
}

func validDeviceNameChar(c rune) bool {
	return (c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		c == '_' || c == '-'
}
