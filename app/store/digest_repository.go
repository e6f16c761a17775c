package store

import (
	"sort"
	"time"

	"github.com/lysyi3m/report-digest/app/report"
)

// Digest is the latest processed result for a configured source.
type Digest struct {
	Name          string        `json:"name"`
	SourceURL     string        `json:"source_url"`
	Title         string        `json:"title,omitempty"`
	Result        report.Result `json:"result"`
	Slide         []string      `json:"slide"`
	LastFetchedAt *time.Time    `json:"last_fetched_at,omitempty"`
	NextFetchAt   *time.Time    `json:"next_fetch_at,omitempty"`
	LastError     string        `json:"last_error,omitempty"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type DigestRepository interface {
	GetDigest(name string) (*Digest, error)
	GetDigests() ([]Digest, error)
	GetDigestCount() (int, error)

	SaveDigest(digest Digest) error
	UpdateNextFetch(name, sourceURL string, nextFetch time.Time) error
	DeleteDigest(name string) error
}

// MemoryRepository keeps digests in process memory. Contents are lost on restart.
type MemoryRepository struct {
	digests *Map[string, Digest]
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		digests: NewMap[string, Digest](),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetDigest returns nil without error when no digest exists for name.
func (r *MemoryRepository) GetDigest(name string) (*Digest, error) {
	digest, ok := r.digests.Get(name)
	if !ok {
		return nil, nil
	}
	return &digest, nil
}

// GetDigests returns all digests sorted by name.
func (r *MemoryRepository) GetDigests() ([]Digest, error) {
	digests := r.digests.Values()
	sort.Slice(digests, func(i, j int) bool {
		return digests[i].Name < digests[j].Name
	})
	return digests, nil
}

func (r *MemoryRepository) GetDigestCount() (int, error) {
	return r.digests.Len(), nil
}

// SaveDigest replaces the stored digest, keeping a NextFetchAt set earlier
// when the new one has none.
func (r *MemoryRepository) SaveDigest(digest Digest) error {
	digest.UpdatedAt = r.now()
	r.digests.Update(digest.Name, func(current Digest, exists bool) Digest {
		if exists && digest.NextFetchAt == nil {
			digest.NextFetchAt = current.NextFetchAt
		}
		return digest
	})
	return nil
}

// UpdateNextFetch schedules the next refresh, creating an empty digest
// when the source has not been processed yet.
func (r *MemoryRepository) UpdateNextFetch(name, sourceURL string, nextFetch time.Time) error {
	r.digests.Update(name, func(current Digest, exists bool) Digest {
		if !exists {
			current = Digest{Name: name, UpdatedAt: r.now()}
		}
		current.SourceURL = sourceURL
		current.NextFetchAt = &nextFetch
		return current
	})
	return nil
}

func (r *MemoryRepository) DeleteDigest(name string) error {
	r.digests.Delete(name)
	return nil
}
