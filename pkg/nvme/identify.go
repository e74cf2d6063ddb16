// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nvme

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// Size of the Identify Controller data structure.
const identifySize = 4096

// Fixed field offsets within the Identify Controller data structure.
const (
	idVendorID       = 0
	idSerialNumber   = 4
	idSerialLen      = 20
	idModelNumber    = 24
	idModelLen       = 40
	idFirmware       = 64
	idFirmwareLen    = 8
	idVendorSpecific = 3072
)

// IdentifyController is the decoded subset of the Identify Controller
// response that device identification needs. The ASCII fields are trimmed
// of their space padding; the vendor-specific region is carried verbatim.
type IdentifyController struct {
	VendorID       uint16
	SerialNumber   string
	ModelNumber    string
	Firmware       string
	VendorSpecific [1024]byte
}

// ParseIdentifyController decodes the raw Identify Controller response.
// The buffer must be exactly 4096 bytes; all field offsets are fixed by
// the NVMe specification, so decoding a correctly sized buffer cannot
// fail. The input is not retained.
func ParseIdentifyController(raw []byte) (*IdentifyController, error) {
	if len(raw) != identifySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrIdentifySize, len(raw), identifySize)
	}
	id := &IdentifyController{
		VendorID:     binary.LittleEndian.Uint16(raw[idVendorID:]),
		SerialNumber: trimmedString(raw[idSerialNumber : idSerialNumber+idSerialLen]),
		ModelNumber:  trimmedString(raw[idModelNumber : idModelNumber+idModelLen]),
		Firmware:     trimmedString(raw[idFirmware : idFirmware+idFirmwareLen]),
	}
	copy(id.VendorSpecific[:], raw[idVendorSpecific:])
	return id, nil
}

// trimmedString interprets a fixed-width identify field, which is ASCII
// padded with spaces and in practice sometimes NUL terminated.
func trimmedString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimSpace(string(b))
}
