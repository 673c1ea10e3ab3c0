// Package metrics captures host environment details recorded in the
// benchmark artifact, so results from different machines can be told apart.
package metrics

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"

	"github.com/pbip-bench/runner/types"
)

// CollectEnvironment takes a one-shot snapshot of the host. Probe failures
// leave the affected fields zero; an incomplete environment record is not
// worth failing a run over.
func CollectEnvironment(log logrus.FieldLogger) types.EnvironmentInfo {
	log = log.WithField("component", "metrics")

	info := types.EnvironmentInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		CPUCores:     runtime.NumCPU(),
		GoVersion:    runtime.Version(),
	}

	if cpus, err := cpu.Info(); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	} else if err != nil {
		log.WithError(err).Debug("CPU probe failed")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemoryGB = float64(vm.Total) / (1024 * 1024 * 1024)
	} else {
		log.WithError(err).Debug("Memory probe failed")
	}

	return info
}
