package pkg

import "github.com/prometheus/client_golang/prometheus"

var (
	// MetricECCCorrected counts pages whose single-bit errors were
	// corrected in place.
	MetricECCCorrected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "softnand",
		Subsystem: "ecc",
		Name:      "corrected_total",
		Help:      "Pages with a single-bit error corrected by the ECC decoder",
	})

	// MetricECCRetry counts verifications retried against the redundant
	// parity copy after a parity self-error.
	MetricECCRetry = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "softnand",
		Subsystem: "ecc",
		Name:      "retry_total",
		Help:      "ECC verifications retried against the redundant parity copy",
	})

	// MetricECCUncorrectable counts page reads that failed ECC beyond
	// single-bit correction.
	MetricECCUncorrectable = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "softnand",
		Subsystem: "ecc",
		Name:      "uncorrectable_total",
		Help:      "Page reads with errors beyond single-bit correction",
	})

	// MetricTransferTimeout counts offload-path transfers that timed out
	// arming or completing.
	MetricTransferTimeout = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "softnand",
		Subsystem: "xfer",
		Name:      "timeout_total",
		Help:      "Offload transfers that timed out before completion",
	})

	// MetricStatusTimeout counts status polls that exhausted their
	// iteration budget.
	MetricStatusTimeout = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "softnand",
		Subsystem: "nand",
		Name:      "status_timeout_total",
		Help:      "Status polls that exhausted the iteration budget",
	})

	// MetricBadBlocks counts blocks classified bad by the scanner.
	MetricBadBlocks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "softnand",
		Subsystem: "nand",
		Name:      "bad_blocks_total",
		Help:      "Blocks classified bad by the spare-area marker scan",
	})
)

func init() {
	prometheus.MustRegister(
		MetricECCCorrected,
		MetricECCRetry,
		MetricECCUncorrectable,
		MetricTransferTimeout,
		MetricStatusTimeout,
		MetricBadBlocks,
	)
}
