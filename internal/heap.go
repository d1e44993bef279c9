package internal

import (
	"fmt"
	"runtime"

	"github.com/dustin/go-humanize"
)

// HeapSample is a snapshot of heap usage.
type HeapSample struct {
	// HeapAlloc is the number of bytes of allocated heap objects.
	HeapAlloc uint64
	// HeapInuse is the number of bytes in in-use spans.
	HeapInuse uint64
	// TotalAlloc is the cumulative number of bytes allocated for heap objects.
	TotalAlloc uint64
	// Mallocs is the cumulative count of heap objects allocated.
	Mallocs uint64
}

// SampleHeap reads the current heap statistics.
//
// runtime.ReadMemStats stops the world so this should only be called around a load, not inside one.
func SampleHeap() HeapSample {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return HeapSample{
		HeapAlloc:  m.HeapAlloc,
		HeapInuse:  m.HeapInuse,
		TotalAlloc: m.TotalAlloc,
		Mallocs:    m.Mallocs,
	}
}

// Sub returns the allocations made between earlier and s.
//
// Only TotalAlloc and Mallocs are cumulative; HeapAlloc and HeapInuse are taken from s as-is.
func (s HeapSample) Sub(earlier HeapSample) HeapSample {
	return HeapSample{
		HeapAlloc:  s.HeapAlloc,
		HeapInuse:  s.HeapInuse,
		TotalAlloc: s.TotalAlloc - earlier.TotalAlloc,
		Mallocs:    s.Mallocs - earlier.Mallocs,
	}
}

func (s HeapSample) String() string {
	return fmt.Sprintf("heap %s (in use %s), allocated %s in %s objects",
		humanize.IBytes(s.HeapAlloc),
		humanize.IBytes(s.HeapInuse),
		humanize.IBytes(s.TotalAlloc),
		humanize.Comma(int64(s.Mallocs)))
}
