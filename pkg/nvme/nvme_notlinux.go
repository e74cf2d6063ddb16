// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package nvme

func identifyController(fd FdIntf) ([]byte, error) {
	return nil, ErrNotSupported
}

func readLogPage(fd FdIntf, logID uint8) ([]byte, error) {
	return nil, ErrNotSupported
}
