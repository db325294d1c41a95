// Package compute runs broad-phase overlap tests on the GPU through WebGPU.
// It is independent of raylib's OpenGL context and needs no window.
package compute

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

var ErrUnavailable = errors.New("no GPU adapter available")

// AdapterInfo describes the GPU a Device runs on.
type AdapterInfo struct {
	Name       string
	Vendor     string
	Backend    string
	DeviceType string
	Driver     string
}

func (i AdapterInfo) String() string {
	return fmt.Sprintf("%s (%s, %s, %s)", i.Name, i.Vendor, i.Backend, i.DeviceType)
}

// Device owns a WebGPU device and its queue.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

type buffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

func (b *buffer) release() {
	if b != nil && b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}

// Open requests a high performance adapter and a device on it.
func Open() (*Device, error) {
	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil || adapter == nil {
		instance.Release()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("request GPU device: %w", err)
	}

	return &Device{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    device.GetQueue(),
	}, nil
}

// Info reports the adapter behind the device.
func (d *Device) Info() AdapterInfo {
	info := d.adapter.GetInfo()
	return AdapterInfo{
		Name:       info.Name,
		Vendor:     info.VendorName,
		Backend:    info.BackendType.String(),
		DeviceType: info.AdapterType.String(),
		Driver:     info.DriverDescription,
	}
}

func (d *Device) createBuffer(label string, size uint64, usage wgpu.BufferUsage) (*buffer, error) {
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer %s: %w", label, err)
	}
	return &buffer{buffer: buf, size: size}, nil
}

func (d *Device) write(buf *buffer, data []byte) {
	d.queue.WriteBuffer(buf.buffer, 0, data)
}

// read copies the first size bytes of buf back to the CPU, blocking until
// the queue drains. buf needs BufferUsageCopySrc.
func (d *Device) read(buf *buffer, size uint64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	// Copies must be 4 byte aligned
	size = (size + 3) &^ 3
	if size > buf.size {
		size = buf.size
	}

	staging, err := d.createBuffer("staging", size, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	defer staging.release()

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	encoder.CopyBufferToBuffer(buf.buffer, 0, staging.buffer, 0, size)
	commands, err := encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("finish encoder: %w", err)
	}
	d.queue.Submit(commands)
	commands.Release()

	done := make(chan error, 1)
	err = staging.buffer.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			done <- fmt.Errorf("map buffer: %v", status)
			return
		}
		done <- nil
	})
	if err != nil {
		return nil, err
	}

	d.device.Poll(true, nil)
	if err := <-done; err != nil {
		return nil, err
	}

	mapped := staging.buffer.GetMappedRange(0, uint(size))
	result := make([]byte, len(mapped))
	copy(result, mapped)
	staging.buffer.Unmap()
	return result, nil
}

// Release frees the device. The Device must not be used afterwards.
func (d *Device) Release() {
	if d.device == nil {
		return
	}
	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
	d.device = nil
}
