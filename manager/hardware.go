package manager

import (
	"os"
	"path/filepath"
	"runtime"
)

// CPUInfo describes the always-available CPU capability.
type CPUInfo struct {
	Cores int `json:"cores"`
}

// GPUInfo describes best-effort GPU detection results.
type GPUInfo struct {
	Available bool   `json:"available"`
	CUDA      bool   `json:"cuda_available"`
	Vendor    string `json:"vendor,omitempty"`
}

// NPUInfo describes best-effort NPU detection results.
type NPUInfo struct {
	Available bool `json:"available"`
}

// Capabilities reports detected hardware. Absence of acceleration is not
// an error: the flags are advisory, consumed for future scheduling, and
// never gate registration or routing.
type Capabilities struct {
	CPU CPUInfo `json:"cpu"`
	GPU GPUInfo `json:"gpu"`
	NPU NPUInfo `json:"npu"`
}

// DetectHardware is a pure, stateless capability probe. CPU core count
// is always available; GPU and NPU flags come from optional platform
// probes (driver files and vendor environment variables).
func DetectHardware() Capabilities {
	caps := Capabilities{
		CPU: CPUInfo{Cores: runtime.NumCPU()},
	}

	if devices := os.Getenv("CUDA_VISIBLE_DEVICES"); devices != "" && devices != "-1" {
		caps.GPU.Available = true
		caps.GPU.CUDA = true
		caps.GPU.Vendor = "nvidia"
	} else if _, err := os.Stat("/proc/driver/nvidia/version"); err == nil {
		caps.GPU.Available = true
		caps.GPU.CUDA = true
		caps.GPU.Vendor = "nvidia"
	}

	if !caps.GPU.Available {
		rocmPath := os.Getenv("ROCM_PATH")
		if rocmPath == "" {
			rocmPath = "/opt/rocm"
		}
		if info, err := os.Stat(rocmPath); err == nil && info.IsDir() {
			caps.GPU.Available = true
			caps.GPU.Vendor = "amd"
		}
	}

	// Intel/AMD NPUs surface as accel devices on recent kernels
	if matches, err := filepath.Glob("/dev/accel/accel*"); err == nil && len(matches) > 0 {
		caps.NPU.Available = true
	}

	return caps
}
