package license

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"

	"hint-gateway/api/internal/apierr"
)

// Entry is a single static license record. The table is loaded once at
// process start and never mutated afterwards, so concurrent reads need no
// locking.
type Entry struct {
	Key       string
	Enabled   bool
	ExpiresAt *time.Time
	Plan      string
}

type Table struct {
	entries []Entry
	now     func() time.Time
}

func NewTable(entries []Entry) *Table {
	return &Table{entries: entries, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (t *Table) WithClock(now func() time.Time) *Table {
	t.now = now
	return t
}

func (t *Table) Len() int { return len(t.entries) }

// Authorize validates the presented key against the table. The check order
// is fixed: missing key, unknown key, disabled entry, expired entry.
func (t *Table) Authorize(key string) (Entry, error) {
	if strings.TrimSpace(key) == "" {
		return Entry{}, apierr.Forbidden("LICENSE_MISSING", "X-License-Key header is required", nil)
	}
	e, ok := lo.Find(t.entries, func(e Entry) bool { return e.Key == key })
	if !ok {
		return Entry{}, apierr.Forbidden("LICENSE_INVALID", "License key not found", nil)
	}
	if !e.Enabled {
		return Entry{}, apierr.Forbidden("LICENSE_DISABLED", "License is disabled", nil)
	}
	if e.ExpiresAt != nil && t.now().After(*e.ExpiresAt) {
		return Entry{}, apierr.Forbidden("LICENSE_EXPIRED", "License is expired",
			map[string]any{"expiresAt": e.ExpiresAt.UTC().Format(time.RFC3339)})
	}
	return e, nil
}

// fileEntry is the YAML shape: expiresAt lands as an RFC3339 string.
type fileEntry struct {
	Key       string `mapstructure:"key"`
	Enabled   bool   `mapstructure:"enabled"`
	ExpiresAt string `mapstructure:"expiresAt"`
	Plan      string `mapstructure:"plan"`
}

// LoadFile reads the license table from a YAML file of the form:
//
//	licenses:
//	  keys:
//	    - key: "abc"
//	      enabled: true
//	      expiresAt: "2027-01-01T00:00:00Z"
//	      plan: "pro"
func LoadFile(path string) (*Table, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read license file: %w", err)
	}

	var raw []fileEntry
	if err := v.UnmarshalKey("licenses.keys", &raw); err != nil {
		return nil, fmt.Errorf("parse license file: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, fe := range raw {
		e := Entry{Key: fe.Key, Enabled: fe.Enabled, Plan: fe.Plan}
		if fe.ExpiresAt != "" {
			ts, err := time.Parse(time.RFC3339, fe.ExpiresAt)
			if err != nil {
				return nil, fmt.Errorf("license %q: bad expiresAt %q: %w", fe.Key, fe.ExpiresAt, err)
			}
			e.ExpiresAt = &ts
		}
		entries = append(entries, e)
	}
	return NewTable(entries), nil
}
