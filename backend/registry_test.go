package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/camstream/gpucore"
)

// fakeBackend is a DeviceBackend for registry tests.
type fakeBackend struct {
	name    string
	initErr error
	inited  bool
}

func (f *fakeBackend) Name() string { return f.name }
func (f *fakeBackend) Init() error {
	if f.initErr != nil {
		return f.initErr
	}
	f.inited = true
	return nil
}
func (f *fakeBackend) Close()                 { f.inited = false }
func (f *fakeBackend) Device() gpucore.Device { return nil }

// withRegistry runs fn against an empty registry and restores it after.
func withRegistry(t *testing.T, fn func()) {
	t.Helper()
	registryMu.Lock()
	saved := backends
	backends = make(map[string]BackendFactory)
	registryMu.Unlock()

	defer func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	}()
	fn()
}

func register(name string, initErr error) {
	Register(name, func() DeviceBackend {
		return &fakeBackend{name: name, initErr: initErr}
	})
}

func TestRegisterAndGet(t *testing.T) {
	withRegistry(t, func() {
		if Get("fake") != nil {
			t.Fatal("Get() on empty registry should return nil")
		}
		register("fake", nil)
		if !IsRegistered("fake") {
			t.Error("IsRegistered(fake) = false")
		}
		if b := Get("fake"); b == nil || b.Name() != "fake" {
			t.Errorf("Get(fake) = %v", b)
		}
		if got := Available(); !slices.Equal(got, []string{"fake"}) {
			t.Errorf("Available() = %v", got)
		}

		Unregister("fake")
		if IsRegistered("fake") {
			t.Error("IsRegistered(fake) after Unregister = true")
		}
	})
}

func TestDefaultPriority(t *testing.T) {
	withRegistry(t, func() {
		if Default() != nil {
			t.Fatal("Default() on empty registry should return nil")
		}

		register("custom", nil)
		if b := Default(); b == nil || b.Name() != "custom" {
			t.Errorf("Default() with only custom = %v", b)
		}

		register(BackendSoftware, nil)
		if b := Default(); b.Name() != BackendSoftware {
			t.Errorf("Default() = %s, want software over custom", b.Name())
		}

		register(BackendWGPU, nil)
		if b := Default(); b.Name() != BackendWGPU {
			t.Errorf("Default() = %s, want wgpu", b.Name())
		}
	})
}

func TestOpenFallsBack(t *testing.T) {
	withRegistry(t, func() {
		errNoGPU := errors.New("no gpu")
		register(BackendWGPU, errNoGPU)
		register(BackendSoftware, nil)

		b, err := Open("")
		if err != nil {
			t.Fatalf("Open(\"\") error = %v", err)
		}
		if b.Name() != BackendSoftware {
			t.Errorf("Open(\"\") = %s, want software fallback", b.Name())
		}

		if _, err := Open(BackendWGPU); !errors.Is(err, errNoGPU) {
			t.Errorf("Open(wgpu) error = %v, want %v", err, errNoGPU)
		}
	})
}

func TestOpenErrors(t *testing.T) {
	withRegistry(t, func() {
		if _, err := Open(""); !errors.Is(err, ErrBackendNotAvailable) {
			t.Errorf("Open(\"\") on empty registry error = %v, want ErrBackendNotAvailable", err)
		}
		if _, err := Open("missing"); !errors.Is(err, ErrBackendNotAvailable) {
			t.Errorf("Open(missing) error = %v, want ErrBackendNotAvailable", err)
		}

		errBroken := errors.New("broken")
		register(BackendSoftware, errBroken)
		if _, err := Open(""); !errors.Is(err, errBroken) {
			t.Errorf("Open(\"\") error = %v, want %v", err, errBroken)
		}
	})
}
