package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/ec2-tools/go-ec2-nvme/pkg/nvme"
)

var (
	mVolumeInfo = prometheus.NewDesc(
		"ec2_nvme_info",
		"Info metric regarding the attached NVMe volumes",
		[]string{"device", "type", "volume", "device_name", "virtual_name", "firmware"}, nil,
	)
	mReadOps = prometheus.NewDesc(
		"ec2_nvme_read_ops_total",
		"Number of read operations completed by the volume",
		[]string{"device"}, nil,
	)
	mWriteOps = prometheus.NewDesc(
		"ec2_nvme_write_ops_total",
		"Number of write operations completed by the volume",
		[]string{"device"}, nil,
	)
	mReadBytes = prometheus.NewDesc(
		"ec2_nvme_read_bytes_total",
		"Number of bytes read from the volume",
		[]string{"device"}, nil,
	)
	mWriteBytes = prometheus.NewDesc(
		"ec2_nvme_write_bytes_total",
		"Number of bytes written to the volume",
		[]string{"device"}, nil,
	)
	mReadTime = prometheus.NewDesc(
		"ec2_nvme_read_seconds_total",
		"Total time spent on read operations",
		[]string{"device"}, nil,
	)
	mWriteTime = prometheus.NewDesc(
		"ec2_nvme_write_seconds_total",
		"Total time spent on write operations",
		[]string{"device"}, nil,
	)
	mVolumeIOPSExceeded = prometheus.NewDesc(
		"ec2_nvme_volume_iops_exceeded_seconds_total",
		"Total time IO was queued because the volume IOPS limit was exceeded",
		[]string{"device"}, nil,
	)
	mVolumeThroughputExceeded = prometheus.NewDesc(
		"ec2_nvme_volume_throughput_exceeded_seconds_total",
		"Total time IO was queued because the volume throughput limit was exceeded",
		[]string{"device"}, nil,
	)
	mInstanceIOPSExceeded = prometheus.NewDesc(
		"ec2_nvme_instance_iops_exceeded_seconds_total",
		"Total time IO was queued because the instance IOPS limit was exceeded",
		[]string{"device"}, nil,
	)
	mInstanceThroughputExceeded = prometheus.NewDesc(
		"ec2_nvme_instance_throughput_exceeded_seconds_total",
		"Total time IO was queued because the instance throughput limit was exceeded",
		[]string{"device"}, nil,
	)
	mQueueLength = prometheus.NewDesc(
		"ec2_nvme_queue_length",
		"Number of operations waiting to complete at the time the log page was read",
		[]string{"device"}, nil,
	)
	mReadLatency = prometheus.NewDesc(
		"ec2_nvme_read_latency_seconds",
		"Completion latency histogram for read operations",
		[]string{"device"}, nil,
	)
	mWriteLatency = prometheus.NewDesc(
		"ec2_nvme_write_latency_seconds",
		"Completion latency histogram for write operations",
		[]string{"device"}, nil,
	)
)

type metricCollector struct {
	m []prometheus.Metric
}

func (mc *metricCollector) Collect(c chan<- prometheus.Metric) {
	for _, m := range mc.m {
		c <- m
	}
}

func (mc *metricCollector) Describe(c chan<- *prometheus.Desc) {
}

func buildMetrics(state Devices) []prometheus.Metric {
	var metrics []prometheus.Metric
	for _, s := range state {
		var volume, name, virtual, firmware string
		if s.Identity != nil {
			if id, ok := s.Identity.VolumeID(); ok {
				volume = id
			} else {
				volume = s.Identity.SerialNumber
			}
			name = s.Identity.Names.DeviceName
			virtual = s.Identity.Names.VirtualName
			firmware = s.Identity.Firmware
		} else {
			volume = s.Serial
		}
		metrics = append(metrics, prometheus.MustNewConstMetric(mVolumeInfo, prometheus.GaugeValue, 1,
			s.Device, s.Type, volume, name, virtual, firmware))

		// This is how far we can make it without the statistics log page
		switch {
		case s.EBS != nil:
			e := s.EBS
			metrics = append(metrics,
				counterMetric(mReadOps, e.ReadOps, s.Device),
				counterMetric(mWriteOps, e.WriteOps, s.Device),
				counterMetric(mReadBytes, e.ReadBytes, s.Device),
				counterMetric(mWriteBytes, e.WriteBytes, s.Device),
				secondsMetric(mReadTime, e.TotalReadTime, s.Device),
				secondsMetric(mWriteTime, e.TotalWriteTime, s.Device),
				secondsMetric(mVolumeIOPSExceeded, e.EBSIOPSExceeded, s.Device),
				secondsMetric(mVolumeThroughputExceeded, e.EBSThroughputExceeded, s.Device),
				secondsMetric(mInstanceIOPSExceeded, e.EC2IOPSExceeded, s.Device),
				secondsMetric(mInstanceThroughputExceeded, e.EC2ThroughputExceeded, s.Device),
				prometheus.MustNewConstMetric(mQueueLength, prometheus.GaugeValue, float64(e.QueueLength), s.Device),
				latencyMetric(mReadLatency, e.ReadOps, e.TotalReadTime, &e.ReadLatency, s.Device),
				latencyMetric(mWriteLatency, e.WriteOps, e.TotalWriteTime, &e.WriteLatency, s.Device),
			)
		case s.InstanceStore != nil:
			i := s.InstanceStore
			metrics = append(metrics,
				counterMetric(mReadOps, i.ReadOps, s.Device),
				counterMetric(mWriteOps, i.WriteOps, s.Device),
				counterMetric(mReadBytes, i.ReadBytes, s.Device),
				counterMetric(mWriteBytes, i.WriteBytes, s.Device),
				secondsMetric(mReadTime, i.TotalReadTime, s.Device),
				secondsMetric(mWriteTime, i.TotalWriteTime, s.Device),
				secondsMetric(mInstanceIOPSExceeded, i.EC2IOPSExceeded, s.Device),
				secondsMetric(mInstanceThroughputExceeded, i.EC2ThroughputExceeded, s.Device),
				prometheus.MustNewConstMetric(mQueueLength, prometheus.GaugeValue, float64(i.QueueLength), s.Device),
				latencyMetric(mReadLatency, i.ReadOps, i.TotalReadTime, &i.ReadLatency, s.Device),
				latencyMetric(mWriteLatency, i.WriteOps, i.TotalWriteTime, &i.WriteLatency, s.Device),
			)
		}
	}
	return metrics
}

func counterMetric(desc *prometheus.Desc, value uint64, device string) prometheus.Metric {
	return prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(value), device)
}

func secondsMetric(desc *prometheus.Desc, nanoseconds uint64, device string) prometheus.Metric {
	return prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(nanoseconds)/1e9, device)
}

// latencyMetric converts a device latency histogram into a cumulative
// Prometheus histogram keyed by each bin's upper bound in seconds.
func latencyMetric(desc *prometheus.Desc, count, totalNs uint64, h *nvme.Histogram, device string) prometheus.Metric {
	bins := h.BinCount
	if bins > uint64(len(h.Bins)) {
		bins = uint64(len(h.Bins))
	}
	buckets := make(map[float64]uint64, bins)
	cum := uint64(0)
	for i := uint64(0); i < bins; i++ {
		cum += uint64(h.Bins[i].Count)
		buckets[float64(h.Bins[i].Upper)/1e9] = cum
	}
	return prometheus.MustNewConstHistogram(desc, count, float64(totalNs)/1e9, buckets, device)
}

func outputMetrics(state Devices) error {
	mc := &metricCollector{m: buildMetrics(state)}

	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(mc)

	mfs, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			return fmt.Errorf("failed to serialize metrics: %v", err)
		}
	}
	return nil
}
