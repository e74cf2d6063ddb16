// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package nvme

func ListDevices() ([]DeviceFileAttributes, error) {
	return nil, ErrNotSupported
}

func ControllerSerial(device DeviceFileAttributes) (string, error) {
	return "", ErrNotSupported
}

func ControllerModel(device DeviceFileAttributes) (string, error) {
	return "", ErrNotSupported
}

func DetectModel(device DeviceFileAttributes) (Model, error) {
	return ModelUnknown, ErrNotSupported
}
