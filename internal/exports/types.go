// Package exports loads the five data export files of a crowdsourced
// annotation project (classifications, subjects, workflows, comments and
// tags) into typed in-memory tables.
package exports

import (
	"regexp"
	"time"
)

// TaskColumn matches annotation task keys such as T0, t1 or T12.
var TaskColumn = regexp.MustCompile(`^[Tt]\d{1,2}$`)

// Classification is one volunteer's completed annotation of one subject
// under one workflow. Rows are immutable once loaded.
type Classification struct {
	ID              int64
	UserName        string // digest when redaction is enabled, then shortened
	UserIP          string // shortened to a minimal unique prefix
	Session         string // shortened to a minimal unique prefix
	UserLoggedIn    bool   // derived: user name does not carry the anonymous marker
	WorkflowID      int64
	WorkflowVersion string
	CreatedAt       time.Time
	GoldStandard    bool
	Expert          bool
	SubjectIDs      string         // raw subject_ids column, usually a single ID
	Seconds         int            // derived from metadata started_at/finished_at
	Metadata        map[string]string // flattened metadata, timing keys removed
	Annotations     map[string]any    // task key ("T0", ...) to answer value
}

// Subject is the unit of content presented for annotation.
type Subject struct {
	ID                 int64
	WorkflowID         int64
	SubjectSetID       int64
	Locations          []string          // source media URLs in column order
	Metadata           map[string]string // flattened metadata columns
	CreatedAt          time.Time
	UpdatedAt          time.Time
	RetiredAt          time.Time // zero when never retired
	RetirementReason   string
	SeenBefore         bool
	DisambiguatedID    int // 0 until disambiguation has run
}

// Workflow is a defined sequence of annotation tasks.
type Workflow struct {
	ID                int64
	DisplayName       string
	Version           string
	Active            bool
	FirstTask         string
	TutorialSubjectID string
}

// Comment is a discussion entry. Board and discussion detail columns are
// split into the derived Board and Discussion tables at load time.
type Comment struct {
	ID           int64
	BoardID      int64
	DiscussionID int64
	FocusID      int64
	FocusType    string // e.g. "Subject"
	UserID       int64
	UserLogin    string
	Body         string
	CreatedAt    time.Time
}

// Board is a deduplicated discussion board derived from the comments file.
type Board struct {
	ID          int64
	Title       string
	Description string
}

// Discussion is a deduplicated discussion thread derived from the
// comments file.
type Discussion struct {
	ID    int64
	Title string
}

// Tag is a hashtag applied in a comment, joined against the comment table
// so the focus fields and body travel with the tag.
type Tag struct {
	ID         int64
	UserID     int64
	UserLogin  string
	Name       string
	TaggableID int64
	CommentID  int64
	CreatedAt  time.Time

	// Carried over from the referenced comment, zero values when the
	// comment is not part of the export.
	CommentBody      string
	CommentFocusID   int64
	CommentFocusType string
}

// Tables holds all loaded and derived tables of a project.
type Tables struct {
	Classifications []Classification
	Subjects        []Subject
	Workflows       []Workflow
	Comments        []Comment
	Tags            []Tag
	Boards          []Board
	Discussions     []Discussion
}
