/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

//go:build unix

package shm

import (
	"errors"
	"fmt"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

// Region is a shared mapping of a backing file. On unix hosts the native
// name is the POSIX shared memory name "/<name>", which shm_open resolves to
// the backing file inside the tmpfs directory.
type Region struct {
	Name       string
	NativeName string
	Size       uint64
	data       []byte
}

// Data returns the mapped bytes.
func (r *Region) Data() []byte {
	return r.data
}

// OpenBackingFile opens path read-write, creating it when missing.
func OpenBackingFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
}

// CreateNamedMapping maps size bytes of f as shared memory.
func CreateNamedMapping(name string, f *os.File, size uint64) (*Region, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if size == 0 || size > math.MaxInt {
		return nil, fmt.Errorf("mapping size %d out of range", size)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return &Region{
		Name:       name,
		NativeName: "/" + name,
		Size:       size,
		data:       data,
	}, nil
}

// Release unmaps the region.
func (r *Region) Release() error {
	if r == nil || r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN)
}
