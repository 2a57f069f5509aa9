package wire

import "sync"

var valueBytesPool = &sync.Pool{
	New: func() any {
		return make([]byte, 0, 4096)
	},
}

// maxPooledBuf keeps a single huge value from pinning memory in the pool.
const maxPooledBuf = 1 << 20

func releaseValueBytes(b []byte) {
	if cap(b) <= maxPooledBuf {
		valueBytesPool.Put(b[:0])
	}
}
