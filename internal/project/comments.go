package project

import (
	"github.com/kingsdigitallab/zoonyper/internal/exports"
)

// Comments returns the comment table, optionally with staff comments
// filtered out. Filtering without a staff list set is a no-op and logs a
// warning.
func (p *Project) Comments(includeStaff bool) []exports.Comment {
	if includeStaff {
		return p.tables.Comments
	}

	p.mu.Lock()
	staff := p.staff
	p.mu.Unlock()

	if len(staff) == 0 {
		p.logger.Warn("staff list is not set, so filtering staff comments has no effect; call SetStaff to enable this")
		return p.tables.Comments
	}

	filtered := make([]exports.Comment, 0, len(p.tables.Comments))
	for i := range p.tables.Comments {
		if _, isStaff := staff[p.tables.Comments[i].UserLogin]; isStaff {
			continue
		}
		filtered = append(filtered, p.tables.Comments[i])
	}
	return filtered
}

// SubjectComments returns the comments whose focus is the given subject.
func (p *Project) SubjectComments(subjectID int64) []exports.Comment {
	var out []exports.Comment
	for i := range p.tables.Comments {
		c := &p.tables.Comments[i]
		if c.FocusType == "Subject" && c.FocusID == subjectID {
			out = append(out, *c)
		}
	}
	return out
}
