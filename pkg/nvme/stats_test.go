// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nvme

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The byte offsets of the skipped per-volume limit counters inside the
// instance store log page. Used to verify the decoder keeps its place
// across the reserved fields.
const (
	isEBSIOPSExceededOff       = 56
	isEBSThroughputExceededOff = 64
)

func encodeLogPage(t *testing.T, stats interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, stats))
	require.Equal(t, statsLogPageSize, buf.Len(), "log page layout must be exactly one page")
	return buf.Bytes()
}

func TestParseEBSStats(t *testing.T) {
	in := EBSStats{
		Magic:                 EBSMagicNumber,
		ReadOps:               100,
		WriteOps:              200,
		ReadBytes:             1 << 30,
		WriteBytes:            2 << 30,
		TotalReadTime:         5e9,
		TotalWriteTime:        6e9,
		EBSIOPSExceeded:       1,
		EBSThroughputExceeded: 2,
		EC2IOPSExceeded:       3,
		EC2ThroughputExceeded: 4,
		QueueLength:           7,
	}
	in.ReadLatency.BinCount = 2
	in.ReadLatency.Bins[0] = HistogramBin{Lower: 0, Upper: 100, Count: 40}
	in.ReadLatency.Bins[1] = HistogramBin{Lower: 100, Upper: 200, Count: 60}

	got, err := ParseEBSStats(encodeLogPage(t, &in))
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestParseEBSStatsBadMagic(t *testing.T) {
	raw := encodeLogPage(t, &EBSStats{Magic: 0xdeadbeef})
	_, err := ParseEBSStats(raw)
	assert.ErrorIs(t, err, ErrInvalidEBSMagic)
}

func TestParseEBSStatsSize(t *testing.T) {
	raw := encodeLogPage(t, &EBSStats{Magic: EBSMagicNumber})
	for _, size := range []int{0, 512, statsLogPageSize - 1} {
		_, err := ParseEBSStats(raw[:size])
		assert.ErrorIs(t, err, ErrLogPageSize, "size %d", size)
	}
}

func TestParseInstanceStoreStats(t *testing.T) {
	in := InstanceStoreStats{
		Magic:                 InstanceStoreMagicNumber,
		ReadOps:               11,
		WriteOps:              12,
		ReadBytes:             13,
		WriteBytes:            14,
		TotalReadTime:         15,
		TotalWriteTime:        16,
		EC2IOPSExceeded:       17,
		EC2ThroughputExceeded: 18,
		QueueLength:           19,
		NumHistograms:         2,
		NumBins:               64,
		IOSizeRange:           1,
	}
	in.Bounds[0] = 100
	in.Bounds[1] = 200
	in.WriteLatency.BinCount = 1
	in.WriteLatency.Bins[0] = HistogramBin{Lower: 0, Upper: 100, Count: 12}

	raw := encodeLogPage(t, &in)

	// The decoder must skip the per-volume limit counters, which only
	// exist on EBS pages, without losing alignment.
	binary.LittleEndian.PutUint64(raw[isEBSIOPSExceededOff:], 0xdead)
	binary.LittleEndian.PutUint64(raw[isEBSThroughputExceededOff:], 0xbeef)

	got, err := ParseInstanceStoreStats(raw)
	require.NoError(t, err)
	assert.Equal(t, in, got)
	assert.EqualValues(t, 17, got.EC2IOPSExceeded)
}

func TestParseInstanceStoreStatsBadMagic(t *testing.T) {
	raw := encodeLogPage(t, &InstanceStoreStats{Magic: EBSMagicNumber})
	_, err := ParseInstanceStoreStats(raw)
	assert.ErrorIs(t, err, ErrInvalidInstanceStoreMagic)
}

func TestParseInstanceStoreStatsSize(t *testing.T) {
	_, err := ParseInstanceStoreStats(make([]byte, statsLogPageSize+1))
	assert.ErrorIs(t, err, ErrLogPageSize)
}
