// Package mapping implements the process-wide container-name to
// memory-view cache described in §4.8 and §9's "Process-wide cache"
// design note: first-writer-wins initialization under an exclusive lock,
// shared handles, no eviction for the lifetime of the process.
package mapping

import (
	"os"
	"sync"

	"golang.org/x/exp/mmap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"

	"github.com/aconfig/aconfig-storage/locator"
	"github.com/aconfig/aconfig-storage/metrics"
	"github.com/aconfig/aconfig-storage/storage"
)

// Views is a handle to the four mapped files backing one container. Every
// copy shares the same underlying mmap.ReaderAt values. Views has no Close
// method and keeps no count of its holders: the files stay mapped for the
// life of the process, since the cache never evicts.
type Views struct {
	Container string

	packageMap *mapping
	flagMap    *mapping
	flagValue  *mapping
	flagInfo   *mapping
}

// Storage builds the storage.Views the query layer expects.
func (v Views) Storage() storage.Views {
	return storage.Views{
		PackageMap: v.packageMap.reader,
		FlagMap:    v.flagMap.reader,
		FlagValue:  v.flagValue.reader,
		FlagInfo:   v.flagInfo.reader,
	}
}

// mapping is one memory-mapped file held open for the process lifetime.
type mapping struct {
	reader *mmap.ReaderAt
}

// Cache is the process-wide mapping cache. The zero value is not usable;
// construct with New.
type Cache struct {
	locatorPath string

	mu          sync.RWMutex
	byContainer map[string]Views

	group singleflight.Group
}

// New returns a cache that resolves containers against the locator record
// at locatorPath (§4.8 step 1).
func New(locatorPath string) *Cache {
	return &Cache{
		locatorPath: locatorPath,
		byContainer: make(map[string]Views),
	}
}

// Get returns the mapped views for container, mapping it on first access.
// Concurrent first-access for the same container is serialized via
// singleflight so the container is mapped exactly once (§4.8, §5).
func (c *Cache) Get(container string) (Views, error) {
	c.mu.RLock()
	v, ok := c.byContainer[container]
	c.mu.RUnlock()
	if ok {
		metrics.MappingCacheResult.WithLabelValues(container, "hit").Inc()
		return v, nil
	}

	result, err, _ := c.group.Do(container, func() (interface{}, error) {
		c.mu.RLock()
		if v, ok := c.byContainer[container]; ok {
			c.mu.RUnlock()
			return v, nil
		}
		c.mu.RUnlock()

		v, err := c.mapContainer(container)
		if err != nil {
			// A failed first-access leaves the container unmapped so a
			// subsequent call retries (§7 propagation policy).
			metrics.MappingCacheResult.WithLabelValues(container, "fail").Inc()
			return Views{}, err
		}

		c.mu.Lock()
		c.byContainer[container] = v
		c.mu.Unlock()
		metrics.MappingCacheResult.WithLabelValues(container, "miss").Inc()
		return v, nil
	})
	if err != nil {
		return Views{}, err
	}
	return result.(Views), nil
}

func (c *Cache) mapContainer(container string) (Views, error) {
	entry, err := locator.Lookup(c.locatorPath, container)
	if err != nil {
		return Views{}, err
	}

	packageMap, err := openReadOnly(entry.PackageMap)
	if err != nil {
		return Views{}, err
	}
	flagMap, err := openReadOnly(entry.FlagMap)
	if err != nil {
		return Views{}, err
	}
	flagValue, err := openReadOnly(entry.FlagVal)
	if err != nil {
		return Views{}, err
	}
	flagInfo, err := openReadOnly(entry.FlagInfo)
	if err != nil {
		return Views{}, err
	}

	return Views{
		Container:  container,
		packageMap: packageMap,
		flagMap:    flagMap,
		flagValue:  flagValue,
		flagInfo:   flagInfo,
	}, nil
}

// openReadOnly enforces §4.8 step 3/§5's safety requirement: a file must be
// read-only on the filesystem before it is mapped, since mmap has undefined
// behavior if the file changes underneath it.
func openReadOnly(path string) (*mapping, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, storage.Wrap(storage.KindMapFileFail, "stat file", err)
	}
	if info.Mode().Perm()&0222 != 0 {
		return nil, storage.Wrap(storage.KindMapFileFail, "file is writable", nil)
	}

	reader, err := mmap.Open(path)
	if err != nil {
		return nil, storage.Wrap(storage.KindMapFileFail, "mmap open", err)
	}

	if f, ok := any(reader).(interface{ Fd() uintptr }); ok {
		if err := unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_RANDOM); err != nil {
			klog.V(1).InfoS("fadvise(RANDOM) failed", "path", path, "error", err)
		}
	}

	return &mapping{reader: reader}, nil
}
