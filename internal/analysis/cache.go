package analysis

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/KaramelBytes/defectlens-cli/internal/defects"
)

// DefaultCacheTTL bounds how long a memoized report is served.
const DefaultCacheTTL = 10 * time.Minute

// Cache memoizes reports by dataset content and options. Cached reports are
// shared between callers and must be treated as read-only.
type Cache struct {
	c *ttlcache.Cache[string, *Report]
}

// NewCache returns a cache holding at most capacity reports for ttl each.
// A non-positive ttl uses DefaultCacheTTL.
func NewCache(ttl time.Duration, capacity uint64) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	opts := []ttlcache.Option[string, *Report]{ttlcache.WithTTL[string, *Report](ttl)}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, *Report](capacity))
	}
	return &Cache{c: ttlcache.New(opts...)}
}

// Analyze returns the cached report for ds and opt, computing it on a miss.
// A nil Cache always recomputes.
func (c *Cache) Analyze(ds *defects.Dataset, opt Options) *Report {
	if c == nil {
		return Analyze(ds, opt)
	}
	key := Fingerprint(ds, opt)
	if item := c.c.Get(key); item != nil {
		return item.Value()
	}
	rep := Analyze(ds, opt)
	c.c.Set(key, rep, ttlcache.DefaultTTL)
	return rep
}

// Len reports the number of cached reports.
func (c *Cache) Len() int { return c.c.Len() }

// Start runs the expiry loop until Stop is called.
func (c *Cache) Start() { go c.c.Start() }

// Stop ends the expiry loop.
func (c *Cache) Stop() { c.c.Stop() }

// Fingerprint hashes the dataset content and report options. The dataset
// name is included since it appears in the report.
func Fingerprint(ds *defects.Dataset, opt Options) string {
	h := sha1.New()
	writeString(h, ds.Name)
	for _, r := range ds.Records {
		writeString(h, r.ID)
		writeString(h, r.DefectType)
		writeString(h, r.Severity)
		writeString(h, r.DefectLocation)
		writeString(h, r.InspectionMethod)
		writeUint(h, math.Float64bits(r.RepairCost))
	}
	for _, e := range ds.RowErrors {
		writeUint(h, uint64(e.Row))
		writeString(h, e.Reason)
	}
	writeUint(h, uint64(opt.Bins))
	writeUint(h, uint64(opt.TopN))
	writeUint(h, uint64(opt.SampleRows))
	for _, f := range opt.GroupBy {
		writeUint(h, uint64(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeString(h hash.Hash, s string) {
	writeUint(h, uint64(len(s)))
	h.Write([]byte(s))
}

func writeUint(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}
