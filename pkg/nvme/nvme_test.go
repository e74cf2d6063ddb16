// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nvme

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name  string
		vid   uint16
		model string
		want  Model
	}{
		{"EBS", AmazonVendorID, EBSModelNumber, ModelElasticBlockStore},
		{"Instance store", AmazonVendorID, InstanceStoreModelNumber, ModelInstanceStore},
		{"Amazon unknown model", AmazonVendorID, "Amazon Experimental Volume", ModelUnknown},
		{"Amazon empty model", AmazonVendorID, "", ModelUnknown},
		{"Foreign vendor", 0x8086, "INTEL SSDPE2KX040T8", ModelUnknown},
		{"Foreign vendor with EBS model", 0x8086, EBSModelNumber, ModelUnknown},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classify(tc.vid, tc.model); got != tc.want {
				t.Errorf("classify(%#04x, %q) = %v; want %v", tc.vid, tc.model, got, tc.want)
			}
		})
	}
}

func TestModelString(t *testing.T) {
	testCases := []struct {
		model Model
		want  string
	}{
		{ModelElasticBlockStore, "ebs"},
		{ModelInstanceStore, "instance-store"},
		{ModelUnknown, "unknown"},
		{Model(42), "unknown"},
	}
	for _, tc := range testCases {
		if got := tc.model.String(); got != tc.want {
			t.Errorf("Model(%d).String() = %q; want %q", tc.model, got, tc.want)
		}
	}
}

func TestProbeIdentify(t *testing.T) {
	testCases := []struct {
		name string
		raw  []byte
		want Device
		err  error
	}{
		{
			"EBS volume",
			buildIdentifyPage(AmazonVendorID, "vol0123456789abcdef", EBSModelNumber, "1.0", []byte("sdf\x00")),
			Device{
				Model:        ModelElasticBlockStore,
				Names:        Names{DeviceName: "sdf"},
				VendorID:     AmazonVendorID,
				ModelNumber:  EBSModelNumber,
				SerialNumber: "vol0123456789abcdef",
				Firmware:     "1.0",
			},
			nil,
		},
		{
			"Instance store slot 0",
			buildIdentifyPage(AmazonVendorID, "AWS10BfooBARbaz", InstanceStoreModelNumber, "0", []byte("ephemeral0:none\x00")),
			Device{
				Model:        ModelInstanceStore,
				Names:        Names{VirtualName: "ephemeral0"},
				VendorID:     AmazonVendorID,
				ModelNumber:  InstanceStoreModelNumber,
				SerialNumber: "AWS10BfooBARbaz",
				Firmware:     "0",
			},
			nil,
		},
		{
			"Foreign controller",
			buildIdentifyPage(0x144d, "S3ESNX0K", "Samsung SSD 970 EVO", "2B2Q", []byte("whatever")),
			Device{
				Model:        ModelUnknown,
				VendorID:     0x144d,
				ModelNumber:  "Samsung SSD 970 EVO",
				SerialNumber: "S3ESNX0K",
				Firmware:     "2B2Q",
			},
			nil,
		},
		{
			"EBS corrupt naming record",
			buildIdentifyPage(AmazonVendorID, "vol0123", EBSModelNumber, "1.0", []byte{0xff, 0xff}),
			Device{},
			ErrUnparseableName,
		},
		{
			"Truncated response",
			make([]byte, 512),
			Device{},
			ErrIdentifySize,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := probeIdentify(tc.raw)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("probeIdentify() error = %v; want %v", err, tc.err)
				}
				if got != nil {
					t.Fatalf("probeIdentify() = %+v; want nil on error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("probeIdentify() error = %v; want nil", err)
			}
			if *got != tc.want {
				t.Errorf("probeIdentify() = %+v; want %+v", *got, tc.want)
			}
		})
	}
}

func TestVolumeID(t *testing.T) {
	testCases := []struct {
		name   string
		device Device
		want   string
		ok     bool
	}{
		{"Bare serial", Device{Model: ModelElasticBlockStore, SerialNumber: "vol0123456789abcdef"}, "vol-0123456789abcdef", true},
		{"Canonical serial", Device{Model: ModelElasticBlockStore, SerialNumber: "vol-0123456789abcdef"}, "vol-0123456789abcdef", true},
		{"Prefix only", Device{Model: ModelElasticBlockStore, SerialNumber: "vol"}, "", false},
		{"Foreign serial", Device{Model: ModelElasticBlockStore, SerialNumber: "S3ESNX0K"}, "", false},
		{"Instance store", Device{Model: ModelInstanceStore, SerialNumber: "vol0123"}, "", false},
		{"Unknown model", Device{Model: ModelUnknown, SerialNumber: "vol0123"}, "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.device.VolumeID()
			if got != tc.want || ok != tc.ok {
				t.Errorf("VolumeID() = %q, %v; want %q, %v", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestNamesName(t *testing.T) {
	testCases := []struct {
		name  string
		names Names
		want  string
		ok    bool
	}{
		{"Device name wins", Names{DeviceName: "sdb", VirtualName: "ephemeral0"}, "sdb", true},
		{"Virtual fallback", Names{VirtualName: "ephemeral0"}, "ephemeral0", true},
		{"Device only", Names{DeviceName: "sdf"}, "sdf", true},
		{"Nothing", Names{}, "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.names.Name()
			if got != tc.want || ok != tc.ok {
				t.Errorf("Name() = %q, %v; want %q, %v", got, ok, tc.want, tc.ok)
			}
			if tc.names.Available() != tc.ok {
				t.Errorf("Available() = %v; want %v", tc.names.Available(), tc.ok)
			}
		})
	}
}
