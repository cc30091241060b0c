// Package project provides the read-only facade over a loaded set of
// annotation project exports: filtering and aggregation queries, media
// download composition, and subject disambiguation.
package project

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kingsdigitallab/zoonyper/internal/conf"
	"github.com/kingsdigitallab/zoonyper/internal/exports"
	"github.com/kingsdigitallab/zoonyper/internal/logging"
)

// ThumbnailsURL is the thumbnail service prefix used by ThumbnailURL.
const ThumbnailsURL = "https://thumbnails.zooniverse.org/100x100/"

// Project answers read-only queries over the loaded export tables.
// Derived aggregations are memoized; everything but the staff list and
// the disambiguation pass is immutable after construction.
type Project struct {
	tables     *exports.Tables
	dateLayout string
	logger     *slog.Logger

	staff map[string]struct{}

	// memo holds derived aggregations keyed by query name. Entries never
	// expire: the tables they derive from are immutable.
	memo *gocache.Cache

	mu            sync.Mutex
	disambiguated bool
	subjectWarned bool
}

// New loads all five export files named by the input settings and returns
// a project facade over them.
func New(settings *conf.Settings) (*Project, error) {
	classifications, subjects, workflows, comments, tags, err := settings.Input.ExportPaths()
	if err != nil {
		return nil, err
	}
	return NewFromPaths(exports.Paths{
		Classifications: classifications,
		Subjects:        subjects,
		Workflows:       workflows,
		Comments:        comments,
		Tags:            tags,
	}, exports.Options{
		RedactUsers: settings.Load.RedactUsers,
		TrimPaths:   settings.Load.TrimPaths,
	}, settings.Load.DateLayout)
}

// NewFromPaths loads the five named export files.
func NewFromPaths(paths exports.Paths, opts exports.Options, dateLayout string) (*Project, error) {
	tables, err := exports.LoadTables(paths, opts)
	if err != nil {
		return nil, err
	}
	return NewFromTables(tables, dateLayout), nil
}

// NewFromTables wraps already-loaded tables. Useful for tests and for
// callers that assemble tables from another source.
func NewFromTables(tables *exports.Tables, dateLayout string) *Project {
	if dateLayout == "" {
		dateLayout = "2006-01-02"
	}
	p := &Project{
		tables:     tables,
		dateLayout: dateLayout,
		logger:     logging.ForService("project"),
		staff:      make(map[string]struct{}),
		memo:       gocache.New(gocache.NoExpiration, 0),
	}
	for i := range tables.Subjects {
		if tables.Subjects[i].DisambiguatedID != 0 {
			p.disambiguated = true
			break
		}
	}
	return p
}

// Tables exposes the underlying tables.
func (p *Project) Tables() *exports.Tables { return p.tables }

// Classifications returns the classification table.
func (p *Project) Classifications() []exports.Classification {
	return p.tables.Classifications
}

// Subjects returns the subject table. The first access notes whether the
// subjects have been disambiguated yet, since several queries are only
// meaningful afterwards.
func (p *Project) Subjects() []exports.Subject {
	p.mu.Lock()
	if !p.subjectWarned {
		p.subjectWarned = true
		if p.disambiguated {
			p.logger.Info("subject IDs have been disambiguated; see the disambiguated ID on each subject")
		} else {
			p.logger.Warn("subject IDs have not been disambiguated yet; run disambiguation to resolve duplicate media")
		}
	}
	p.mu.Unlock()
	return p.tables.Subjects
}

// Workflows returns the workflow table.
func (p *Project) Workflows() []exports.Workflow { return p.tables.Workflows }

// Boards returns the derived board table.
func (p *Project) Boards() []exports.Board { return p.tables.Boards }

// Discussions returns the derived discussion table.
func (p *Project) Discussions() []exports.Discussion { return p.tables.Discussions }

// Tags returns the tag table, joined against comments at load time.
func (p *Project) Tags() []exports.Tag { return p.tables.Tags }

// SetStaff records the staff usernames used by comment filtering.
func (p *Project) SetStaff(usernames []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.staff = make(map[string]struct{}, len(usernames))
	for _, name := range usernames {
		p.staff[name] = struct{}{}
	}
}

// DateLayout returns the layout dates are rendered with in query results.
func (p *Project) DateLayout() string { return p.dateLayout }

// formatDate renders t with the project's date layout, empty for the zero
// time.
func (p *Project) formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(p.dateLayout)
}

// ThumbnailURL maps an HTTP(S) media URL onto the thumbnail service.
// Other schemes and empty URLs pass through unchanged.
func (p *Project) ThumbnailURL(url string) string {
	switch {
	case url == "":
		return ""
	case strings.HasPrefix(url, "https://"):
		return ThumbnailsURL + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		return ThumbnailsURL + strings.TrimPrefix(url, "http://")
	default:
		return url
	}
}

// memoized returns the cached value for key, computing and storing it on
// first use.
func memoized[T any](p *Project, key string, compute func() T) T {
	if v, ok := p.memo.Get(key); ok {
		return v.(T)
	}
	v := compute()
	p.memo.Set(key, v, gocache.NoExpiration)
	return v
}

// sortedInt64s returns the sorted slice form of an int64 set.
func sortedInt64s(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
