//go:build windows

package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

func osMapShared(f *os.File, size int) ([]byte, func([]byte) error, error) {
	return mapView(windows.Handle(f.Fd()), size)
}

func osMapAnonShared(size int) ([]byte, func([]byte) error, error) {
	// A mapping backed by the paging file is what Windows offers in place of
	// MAP_ANON|MAP_SHARED.
	return mapView(windows.InvalidHandle, size)
}

func mapView(fh windows.Handle, size int) ([]byte, func([]byte) error, error) {
	maxSize := uint64(size)
	h, err := windows.CreateFileMapping(fh, nil, windows.PAGE_READWRITE,
		uint32(maxSize>>32), uint32(maxSize), nil)
	if err != nil {
		return nil, nil, err
	}
	// The view holds its own reference to the mapping object.
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		return nil, nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return data, func([]byte) error {
		return windows.UnmapViewOfFile(addr)
	}, nil
}

func osSync(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return windows.FlushViewOfFile(uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)))
}

func osAdvise(data []byte, pattern AccessPattern) error {
	// Windows does not have a direct equivalent to madvise.
	_ = data
	_ = pattern
	return nil
}
