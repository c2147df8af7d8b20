// Copyright 2025 The framed Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// drain 以固定块大小读尽 source
func drain(t *testing.T, src Source, max int) []byte {
	var out []byte
	for {
		b, err := src.Read(max)
		out = append(out, b...)
		if errors.Is(err, io.EOF) {
			return out
		}
		assert.NoError(t, err)
	}
}

func TestNewReader(t *testing.T) {
	data := []byte("0123456789abcdef")

	src := NewReader("mem", bytes.NewReader(data))
	assert.Equal(t, "mem", src.Name())
	assert.NotEmpty(t, src.ID())
	assert.Equal(t, data, drain(t, src, 7))
	assert.NoError(t, src.Close())

	// 每次打开分配独立的会话 ID
	other := NewReader("mem", bytes.NewReader(data))
	assert.NotEqual(t, src.ID(), other.ID())
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.dat")
	data := []byte(strings.Repeat("framed", 100))
	assert.NoError(t, os.WriteFile(path, data, 0o644))

	src, err := OpenFile(path)
	assert.NoError(t, err)
	assert.Equal(t, path, src.Name())
	assert.Equal(t, data, drain(t, src, 128))
	assert.NoError(t, src.Close())

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.dat"))
	assert.Error(t, err)
}

func TestGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.dat", "a.dat", "c.log"} {
		assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
	assert.NoError(t, os.Mkdir(filepath.Join(dir, "sub.dat"), 0o755))

	// 仅匹配文件 目录跳过 结果按路径排序
	sources, err := Glob(filepath.Join(dir, "*.dat"))
	assert.NoError(t, err)
	assert.Len(t, sources, 2)
	assert.Equal(t, filepath.Join(dir, "a.dat"), sources[0].Name())
	assert.Equal(t, filepath.Join(dir, "b.dat"), sources[1].Name())
	for _, src := range sources {
		src.Close()
	}

	sources, err = Glob(filepath.Join(dir, "*.none"))
	assert.NoError(t, err)
	assert.Empty(t, sources)
}
