// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package nvme

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/dswarbrick/smart/ioctl"
)

const (
	NVME_ADMIN_IDENTIFY     = 0x06
	NVME_ADMIN_GET_LOG_PAGE = 0x02
)

var NVME_IOCTL_ADMIN_CMD = ioctl.Iowr('N', 0x41, unsafe.Sizeof(nvmePassthruCommand{}))

// Defined in <linux/nvme_ioctl.h>
type nvmePassthruCommand struct {
	opcode       uint8
	flags        uint8  //nolint:structcheck,unused
	rsvd1        uint16 //nolint:structcheck,unused
	nsid         uint32
	cdw2         uint32 //nolint:structcheck,unused
	cdw3         uint32 //nolint:structcheck,unused
	metadata     uint64 //nolint:structcheck,unused
	addr         uint64
	metadata_len uint32 //nolint:structcheck,unused
	data_len     uint32
	cdw10        uint32
	cdw11        uint32 //nolint:structcheck,unused
	cdw12        uint32 //nolint:structcheck,unused
	cdw13        uint32 //nolint:structcheck,unused
	cdw14        uint32 //nolint:structcheck,unused
	cdw15        uint32 //nolint:structcheck,unused
	timeout_ms   uint32 //nolint:structcheck,unused
	result       uint32 //nolint:structcheck,unused
}

// adminPassthru submits a single admin command, keeping fd alive across
// the raw ioctl.
func adminPassthru(fd FdIntf, cmd *nvmePassthruCommand) error {
	err := ioctl.Ioctl(fd.Fd(), NVME_IOCTL_ADMIN_CMD, uintptr(unsafe.Pointer(cmd)))
	runtime.KeepAlive(fd)
	return err
}

// identifyController issues the Identify Controller admin command against
// fd and returns the raw 4096-byte response. The command is idempotent
// and mutates no device state, so failures are surfaced without retrying.
func identifyController(fd FdIntf) ([]byte, error) {
	raw := make([]byte, identifySize)

	cmd := nvmePassthruCommand{
		opcode:   NVME_ADMIN_IDENTIFY,
		nsid:     0, // Namespace 0, since we are identifying the controller
		addr:     uint64(uintptr(unsafe.Pointer(&raw[0]))),
		data_len: uint32(len(raw)),
		cdw10:    1, // Identify controller
	}

	if err := adminPassthru(fd, &cmd); err != nil {
		return nil, fmt.Errorf("identify controller: %w", err)
	}
	return raw, nil
}

// readLogPage issues a Get Log Page admin command for a full 4096-byte
// page. The dword count in cdw10 is zero-based.
func readLogPage(fd FdIntf, logID uint8) ([]byte, error) {
	raw := make([]byte, statsLogPageSize)
	numd := uint32(len(raw)/4 - 1)

	cmd := nvmePassthruCommand{
		opcode:   NVME_ADMIN_GET_LOG_PAGE,
		nsid:     1,
		addr:     uint64(uintptr(unsafe.Pointer(&raw[0]))),
		data_len: uint32(len(raw)),
		cdw10:    uint32(logID) | numd<<16,
	}

	if err := adminPassthru(fd, &cmd); err != nil {
		return nil, fmt.Errorf("get log page 0x%02x: %w", logID, err)
	}
	return raw, nil
}
