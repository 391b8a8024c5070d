package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// ErrInvalidPath 非法路径（越出磁盘根目录）
var ErrInvalidPath = errors.New("storage: invalid path")

// Disk 文件存储抽象
// 路径均为相对磁盘根目录的 slash 路径。
type Disk interface {
	AllFiles(ctx context.Context, dir string) ([]string, error)
	LastModified(name string) (time.Time, error)
	Size(name string) (int64, error)
	Delete(name string) error
	Path(name string) string
	Put(name string, r io.Reader) (int64, error)
	Open(name string) (io.ReadCloser, error)
}

// LocalDisk 基于 afero 的磁盘实现
type LocalDisk struct {
	fs   afero.Fs
	root string
}

// NewLocalDisk 创建以 root 为根目录的本地磁盘
func NewLocalDisk(root string) (*LocalDisk, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve disk root failed: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create disk root failed: %w", err)
	}
	return &LocalDisk{fs: afero.NewBasePathFs(afero.NewOsFs(), abs), root: abs}, nil
}

// NewDiskFromFs 使用任意 afero.Fs 创建磁盘（测试使用内存文件系统）
func NewDiskFromFs(fsys afero.Fs, root string) *LocalDisk {
	return &LocalDisk{fs: fsys, root: root}
}

// Fs 返回底层文件系统
func (d *LocalDisk) Fs() afero.Fs {
	return d.fs
}

// AllFiles 递归列出目录下的全部文件，目录不存在时返回空列表
func (d *LocalDisk) AllFiles(ctx context.Context, dir string) ([]string, error) {
	base, err := clean(dir)
	if err != nil {
		return nil, err
	}
	exists, err := afero.DirExists(d.fs, base)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []string{}, nil
	}

	files := make([]string, 0)
	err = afero.Walk(d.fs, base, func(p string, info fs.FileInfo, walkErr error) error {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if walkErr != nil {
			// 遍历期间被并发删除的条目直接跳过
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		files = append(files, filepath.ToSlash(p))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// LastModified 获取文件最后修改时间
func (d *LocalDisk) LastModified(name string) (time.Time, error) {
	info, err := d.stat(name)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Size 获取文件大小
func (d *LocalDisk) Size(name string) (int64, error) {
	info, err := d.stat(name)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Delete 删除文件
func (d *LocalDisk) Delete(name string) error {
	p, err := clean(name)
	if err != nil {
		return err
	}
	return d.fs.Remove(p)
}

// Path 返回文件的绝对路径
func (d *LocalDisk) Path(name string) string {
	p, err := clean(name)
	if err != nil {
		return ""
	}
	return filepath.Join(d.root, filepath.FromSlash(p))
}

// Put 写入文件，目录不存在时自动创建
func (d *LocalDisk) Put(name string, r io.Reader) (int64, error) {
	p, err := clean(name)
	if err != nil {
		return 0, err
	}
	if err := d.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return 0, err
	}
	f, err := d.fs.Create(p)
	if err != nil {
		return 0, err
	}
	written, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		_ = d.fs.Remove(p)
		return 0, copyErr
	}
	if closeErr != nil {
		return 0, closeErr
	}
	return written, nil
}

// Open 打开文件读取
func (d *LocalDisk) Open(name string) (io.ReadCloser, error) {
	p, err := clean(name)
	if err != nil {
		return nil, err
	}
	return d.fs.Open(p)
}

func (d *LocalDisk) stat(name string) (fs.FileInfo, error) {
	p, err := clean(name)
	if err != nil {
		return nil, err
	}
	return d.fs.Stat(p)
}

func clean(name string) (string, error) {
	trimmed := strings.TrimSpace(filepath.ToSlash(name))
	cleaned := path.Clean("/" + trimmed)
	rel := strings.TrimPrefix(cleaned, "/")
	if rel == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	for _, part := range strings.Split(trimmed, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
		}
	}
	return rel, nil
}
