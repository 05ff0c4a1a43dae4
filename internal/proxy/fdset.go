package proxy

import "golang.org/x/sys/unix"

// fdSetWordBits is the bit width of each unix.FdSet.Bits word on linux/amd64
// (golang.org/x/sys/unix's generated ztypes_linux_amd64.go defines
// FdSet.Bits as [16]int64). The proxy targets the same Linux deployment
// target as the teacher's internal/server/udp_server.go, which also reaches
// for golang.org/x/sys/unix raw socket primitives.
const fdSetWordBits = 64

func fdZero(set *unix.FdSet) {
	for i := range set.Bits {
		set.Bits[i] = 0
	}
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/fdSetWordBits] |= 1 << uint(fd%fdSetWordBits)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/fdSetWordBits]&(1<<uint(fd%fdSetWordBits)) != 0
}
