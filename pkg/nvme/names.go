// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nvme

import (
	"fmt"
	"strings"
)

// The first 32 bytes of the vendor-specific region hold the bdev field,
// a NUL or space terminated ASCII record naming the volume.
//
// For instance store volumes the record is <virtual_name>:<device_name>,
// where the virtual name is "ephemeral<n>" and the device name is the
// literal "none" when the volume is not in the block device mapping.
// For EBS volumes the record has no delimiter and carries the device
// name alone, since an attached EBS volume always has one. Either name
// may be prefixed with "/dev/".
const bdevFieldLen = 32

// ParseNames extracts the vendor-assigned names from the vendor-specific
// region of an Identify Controller response.
//
// Absent names are not an error: unknown models report no names at all,
// and instance store volumes may omit either field. Only an EBS record
// that cannot be decoded into a device name fails, with ErrUnparseableName.
func ParseNames(vs []byte, model Model) (Names, error) {
	if model == ModelUnknown {
		return Names{}, nil
	}

	bdev := vs
	if len(bdev) > bdevFieldLen {
		bdev = bdev[:bdevFieldLen]
	}

	var field1, field2 []byte
	delim := false
	for _, c := range bdev {
		if c == 0x00 || c == 0x20 {
			break
		}
		if c == ':' {
			delim = true
			continue
		}
		if delim {
			field2 = append(field2, c)
		} else {
			field1 = append(field1, c)
		}
	}
	f1 := strings.TrimPrefix(string(field1), "/dev/")
	f2 := strings.TrimPrefix(string(field2), "/dev/")

	if model == ModelElasticBlockStore {
		if delim || !wellFormedName(f1) {
			return Names{}, fmt.Errorf("%w: %q", ErrUnparseableName, bdev)
		}
		return Names{DeviceName: f1}, nil
	}

	names := Names{}
	if delim {
		if wellFormedName(f1) {
			names.VirtualName = f1
		}
		if f2 != "none" && wellFormedName(f2) {
			names.DeviceName = f2
		}
	} else if wellFormedName(f1) {
		names.DeviceName = f1
	}
	return names, nil
}

// wellFormedName reports whether s looks like a short kernel device name
// such as "sda" or "xvdcz1" once any "/dev/" prefix has been removed.
func wellFormedName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
