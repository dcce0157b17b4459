//go:build !windows

package services

import (
	"os"
	"syscall"
)

type statInfo struct {
	device    uint64
	inode     uint64
	diskUsage int64
	nlink     uint64
	ok        bool
}

func statOf(info os.FileInfo) statInfo {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return statInfo{diskUsage: info.Size()}
	}
	return statInfo{
		device:    uint64(stat.Dev),
		inode:     uint64(stat.Ino),
		diskUsage: int64(stat.Blocks) * 512,
		nlink:     uint64(stat.Nlink),
		ok:        true,
	}
}
