package device

// Device represents a physical or logical compute device (e.g., CPU, GPU).
// It provides access to the device's properties and its memory allocator.
type Device interface {
	// ID returns the unique identifier for the device (e.g., "cpu", "cuda:0").
	ID() string
	// GetAllocator returns the memory allocator associated with this device.
	GetAllocator() Allocator
	// Type returns the type of the device
	Type() Type
}

// Type is an enum for the kind of device.
type Type int

const (
	// CPU represents the Central Processing Unit device type.
	CPU Type = iota
	// CUDA represents an NVIDIA GPU device type. Nothing in this module
	// registers one; the constant exists so Type has room to grow without
	// an API break the day a GPU-backed compute.Engine shows up.
	CUDA
)

// cpuDevice represents the system's main CPU.
type cpuDevice struct {
	id        string
	allocator Allocator
}

// ID returns the device's identifier.
func (d *cpuDevice) ID() string {
	return d.id
}

// GetAllocator returns the CPU's memory allocator.
func (d *cpuDevice) GetAllocator() Allocator {
	return d.allocator
}

// Type returns the device type.
func (d *cpuDevice) Type() Type {
	return CPU
}

var defaultCPU Device = &cpuDevice{id: "cpu", allocator: NewCPUAllocator()}

// Default returns the process-wide CPU device that every compute.CPUEngine
// binds to. The signature driver only ever targets one device at a time, so
// a single shared instance replaces a lookup-by-id registry: there is never
// a second device to look up.
func Default() Device {
	return defaultCPU
}
