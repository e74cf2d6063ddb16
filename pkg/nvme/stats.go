// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nvme

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Amazon controllers expose cumulative volume statistics through vendor
// log pages: 0xD0 on EBS volumes and 0xC0 on instance store volumes.
// Each page is 4096 bytes and starts with a model-specific magic number.
const (
	ebsStatsLogPage           = 0xd0
	instanceStoreStatsLogPage = 0xc0

	EBSMagicNumber           = 0x3c23b510
	InstanceStoreMagicNumber = 0xec2c0d7e

	statsLogPageSize = 4096
)

var (
	ErrLogPageSize               = errors.New("unexpected log page size")
	ErrInvalidEBSMagic           = errors.New("invalid EBS stats magic number")
	ErrInvalidInstanceStoreMagic = errors.New("invalid instance store stats magic number")
)

// Histogram is a latency histogram as reported by the controller. Bins
// beyond BinCount are zero.
type Histogram struct {
	BinCount uint64
	Bins     [64]HistogramBin
}

// HistogramBin counts I/O operations whose latency in nanoseconds fell
// within [Lower, Upper).
type HistogramBin struct {
	Lower uint64
	Upper uint64
	Count uint32
	_     uint32
}

// EBSStats is the decoded layout of EBS vendor log page 0xD0. Times are
// in nanoseconds, cumulative since volume attach.
type EBSStats struct {
	Magic                 uint32
	_                     [4]byte
	ReadOps               uint64
	WriteOps              uint64
	ReadBytes             uint64
	WriteBytes            uint64
	TotalReadTime         uint64
	TotalWriteTime        uint64
	EBSIOPSExceeded       uint64
	EBSThroughputExceeded uint64
	EC2IOPSExceeded       uint64
	EC2ThroughputExceeded uint64
	QueueLength           uint64
	_                     [416]byte
	ReadLatency           Histogram
	WriteLatency          Histogram
	_                     [496]byte
}

// InstanceStoreStats is the decoded layout of instance store vendor log
// page 0xC0. The page mirrors the EBS one but has no per-volume limits,
// and carries the histogram bounds table used by its latency histograms.
type InstanceStoreStats struct {
	Magic                 uint32
	_                     [4]byte
	ReadOps               uint64
	WriteOps              uint64
	ReadBytes             uint64
	WriteBytes            uint64
	TotalReadTime         uint64
	TotalWriteTime        uint64
	_                     uint64 /* EBSIOPSExceeded */
	_                     uint64 /* EBSThroughputExceeded */
	EC2IOPSExceeded       uint64
	EC2ThroughputExceeded uint64
	QueueLength           uint64
	NumHistograms         uint64
	NumBins               uint64
	IOSizeRange           uint64
	Bounds                [64]uint64
	ReadLatency           Histogram
	WriteLatency          Histogram
	_                     [376]byte
}

// ParseEBSStats decodes EBS vendor log page 0xD0 and validates its magic
// number.
func ParseEBSStats(raw []byte) (EBSStats, error) {
	var stats EBSStats
	if len(raw) != statsLogPageSize {
		return EBSStats{}, fmt.Errorf("%w: got %d bytes, want %d", ErrLogPageSize, len(raw), statsLogPageSize)
	}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &stats); err != nil {
		return EBSStats{}, fmt.Errorf("failed to parse EBS log page: %w", err)
	}
	if stats.Magic != EBSMagicNumber {
		return EBSStats{}, fmt.Errorf("%w: got 0x%08x", ErrInvalidEBSMagic, stats.Magic)
	}
	return stats, nil
}

// ParseInstanceStoreStats decodes instance store vendor log page 0xC0 and
// validates its magic number.
func ParseInstanceStoreStats(raw []byte) (InstanceStoreStats, error) {
	var stats InstanceStoreStats
	if len(raw) != statsLogPageSize {
		return InstanceStoreStats{}, fmt.Errorf("%w: got %d bytes, want %d", ErrLogPageSize, len(raw), statsLogPageSize)
	}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &stats); err != nil {
		return InstanceStoreStats{}, fmt.Errorf("failed to parse instance store log page: %w", err)
	}
	if stats.Magic != InstanceStoreMagicNumber {
		return InstanceStoreStats{}, fmt.Errorf("%w: got 0x%08x", ErrInvalidInstanceStoreMagic, stats.Magic)
	}
	return stats, nil
}

// ReadEBSStats fetches and decodes the EBS stats log page from the
// controller behind fd.
func ReadEBSStats(fd FdIntf) (EBSStats, error) {
	raw, err := readLogPage(fd, ebsStatsLogPage)
	if err != nil {
		return EBSStats{}, err
	}
	return ParseEBSStats(raw)
}

// ReadInstanceStoreStats fetches and decodes the instance store stats log
// page from the controller behind fd.
func ReadInstanceStoreStats(fd FdIntf) (InstanceStoreStats, error) {
	raw, err := readLogPage(fd, instanceStoreStatsLogPage)
	if err != nil {
		return InstanceStoreStats{}, err
	}
	return ParseInstanceStoreStats(raw)
}
