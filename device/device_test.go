package device

import "testing"

func TestDefaultDevice(t *testing.T) {
	dev := Default()

	if dev.ID() != "cpu" {
		t.Errorf(`expected device ID "cpu", got "%s"`, dev.ID())
	}

	if dev.Type() != CPU {
		t.Errorf("expected device type CPU, got %v", dev.Type())
	}

	allocator := dev.GetAllocator()
	if allocator == nil {
		t.Fatal("cpu device allocator is nil")
	}

	if _, ok := allocator.(*cpuAllocator); !ok {
		t.Error("expected a *cpuAllocator, but got a different type")
	}
}

func TestDefaultDeviceIsSingleton(t *testing.T) {
	if Default() != Default() {
		t.Error("expected Default() to always return the same device instance")
	}
}
