package manager

import (
	"time"

	"golang.org/x/sys/cpu"

	"detectd/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	now := time.Now()
	resp := types.StatusResponse{
		State:          string(StateError),
		ModelLoaded:    m.model != nil,
		LastError:      m.loadErr,
		RequestsTotal:  m.requests.Load(),
		FailuresTotal:  m.failures.Load(),
		CPUFeatures:    CPUFeatures(),
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
	if m.model != nil {
		info := m.model.Info()
		resp.State = string(StateReady)
		resp.Model = &types.ModelStatus{
			Path:        info.Path,
			Device:      string(info.Device),
			InputWidth:  info.InputWidth,
			InputHeight: info.InputHeight,
			Classes:     info.Classes,
			PoolSize:    info.PoolSize,
			PoolInUse:   info.PoolInUse,
		}
	}
	return resp
}

// CPUFeatures lists the SIMD extensions the CPU execution provider can use.
func CPUFeatures() []string {
	var out []string
	add := func(ok bool, name string) {
		if ok {
			out = append(out, name)
		}
	}
	add(cpu.X86.HasSSE41, "sse4.1")
	add(cpu.X86.HasAVX, "avx")
	add(cpu.X86.HasAVX2, "avx2")
	add(cpu.X86.HasFMA, "fma")
	add(cpu.X86.HasAVX512F, "avx512f")
	add(cpu.X86.HasAVX512VNNI, "avx512vnni")
	add(cpu.ARM64.HasASIMD, "neon")
	add(cpu.ARM64.HasFPHP, "fp16")
	add(cpu.ARM64.HasASIMDDP, "dotprod")
	return out
}
