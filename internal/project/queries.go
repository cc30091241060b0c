package project

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/kingsdigitallab/zoonyper/internal/errors"
	"github.com/kingsdigitallab/zoonyper/internal/exports"
)

// Counts holds a per-workflow tally plus the project-wide total.
type Counts struct {
	ByWorkflow map[int64]int
	Total      int
}

// ParticipantsCount returns the number of distinct user names that
// classified under the workflow. Workflows with no recorded
// classifications are an error.
func (p *Project) ParticipantsCount(workflowID int64) (int, error) {
	counts := p.ParticipantsCounts()
	n, ok := counts.ByWorkflow[workflowID]
	if !ok {
		return 0, errors.Newf("no participants recorded for workflow %d", workflowID).
			Component("project").
			Category(errors.CategoryNotFound).
			Build()
	}
	return n, nil
}

// ParticipantsCounts returns the distinct participant count for every
// workflow with classifications, plus the distinct count across the whole
// project.
func (p *Project) ParticipantsCounts() Counts {
	return memoized(p, "participants_counts", func() Counts {
		perWorkflow := make(map[int64]map[string]struct{})
		total := make(map[string]struct{})
		for i := range p.tables.Classifications {
			c := &p.tables.Classifications[i]
			if perWorkflow[c.WorkflowID] == nil {
				perWorkflow[c.WorkflowID] = make(map[string]struct{})
			}
			perWorkflow[c.WorkflowID][c.UserName] = struct{}{}
			total[c.UserName] = struct{}{}
		}

		counts := Counts{ByWorkflow: make(map[int64]int, len(perWorkflow)), Total: len(total)}
		for workflowID, names := range perWorkflow {
			counts.ByWorkflow[workflowID] = len(names)
		}
		return counts
	})
}

// LoggedInCount returns the number of classification events made by
// logged-in volunteers under the workflow. Workflows with no recorded
// classifications are an error.
func (p *Project) LoggedInCount(workflowID int64) (int, error) {
	counts := p.LoggedInCounts()
	n, ok := counts.ByWorkflow[workflowID]
	if !ok {
		return 0, errors.Newf("no participants recorded for workflow %d", workflowID).
			Component("project").
			Category(errors.CategoryNotFound).
			Build()
	}
	return n, nil
}

// LoggedInCounts returns the per-workflow and project-wide counts of
// classification events made while logged in.
func (p *Project) LoggedInCounts() Counts {
	return memoized(p, "logged_in_counts", func() Counts {
		counts := Counts{ByWorkflow: make(map[int64]int)}
		for i := range p.tables.Classifications {
			c := &p.tables.Classifications[i]
			if _, ok := counts.ByWorkflow[c.WorkflowID]; !ok {
				counts.ByWorkflow[c.WorkflowID] = 0
			}
			if c.UserLoggedIn {
				counts.ByWorkflow[c.WorkflowID]++
				counts.Total++
			}
		}
		return counts
	})
}

// participantsByWorkflow maps each workflow onto the distinct logged-in
// user names that classified under it.
func (p *Project) participantsByWorkflow() map[int64][]string {
	return memoized(p, "participants", func() map[int64][]string {
		sets := make(map[int64]map[string]struct{})
		for i := range p.tables.Classifications {
			c := &p.tables.Classifications[i]
			if !c.UserLoggedIn {
				continue
			}
			if sets[c.WorkflowID] == nil {
				sets[c.WorkflowID] = make(map[string]struct{})
			}
			sets[c.WorkflowID][c.UserName] = struct{}{}
		}

		out := make(map[int64][]string, len(sets))
		for workflowID, names := range sets {
			list := make([]string, 0, len(names))
			for name := range names {
				list = append(list, name)
			}
			sort.Strings(list)
			out[workflowID] = list
		}
		return out
	})
}

// Participants returns the distinct logged-in user names that classified
// under the workflow, sorted.
func (p *Project) Participants(workflowID int64) []string {
	return p.participantsByWorkflow()[workflowID]
}

// ParticipantsByWorkflow returns the distinct logged-in user names per
// workflow.
func (p *Project) ParticipantsByWorkflow() map[int64][]string {
	return p.participantsByWorkflow()
}

// AllParticipants returns the sorted distinct logged-in user names across
// the whole project.
func (p *Project) AllParticipants() []string {
	set := make(map[string]struct{})
	for _, names := range p.participantsByWorkflow() {
		for _, name := range names {
			set[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ClassificationCounts tallies the answers given for one task of one
// workflow, keyed by the subject IDs column and then by the rendered
// answer value. An unknown task number is an error.
func (p *Project) ClassificationCounts(workflowID int64, taskNumber int) (map[string]map[string]int, error) {
	task := fmt.Sprintf("T%d", taskNumber)

	seen := false
	for i := range p.tables.Classifications {
		if _, ok := p.tables.Classifications[i].Annotations[task]; ok {
			seen = true
			break
		}
	}
	if !seen {
		return nil, errors.Newf("task number %d does not appear in the classifications", taskNumber).
			Component("project").
			Category(errors.CategoryNotFound).
			Context("task", task).
			Build()
	}

	counts := make(map[string]map[string]int)
	for i := range p.tables.Classifications {
		c := &p.tables.Classifications[i]
		if c.WorkflowID != workflowID {
			continue
		}
		value, ok := c.Annotations[task]
		if !ok {
			continue
		}
		if counts[c.SubjectIDs] == nil {
			counts[c.SubjectIDs] = make(map[string]int)
		}
		counts[c.SubjectIDs][answerString(value)]++
	}
	return counts, nil
}

// answerString renders an annotation answer for tallying.
func answerString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return exports.FlattenValue(value)
	}
}

// WorkflowIDs returns the sorted distinct workflow IDs of the project.
func (p *Project) WorkflowIDs() []int64 {
	return memoized(p, "workflow_ids", func() []int64 {
		set := make(map[int64]struct{}, len(p.tables.Workflows))
		for i := range p.tables.Workflows {
			set[p.tables.Workflows[i].ID] = struct{}{}
		}
		return sortedInt64s(set)
	})
}

// InactiveWorkflowIDs returns the sorted IDs of inactive workflows.
func (p *Project) InactiveWorkflowIDs() []int64 {
	return memoized(p, "inactive_workflow_ids", func() []int64 {
		set := make(map[int64]struct{})
		for i := range p.tables.Workflows {
			if !p.tables.Workflows[i].Active {
				set[p.tables.Workflows[i].ID] = struct{}{}
			}
		}
		return sortedInt64s(set)
	})
}

// SubjectSets maps each subject set onto the sorted subject IDs belonging
// to it.
func (p *Project) SubjectSets() map[int64][]int64 {
	return memoized(p, "subject_sets", func() map[int64][]int64 {
		sets := make(map[int64]map[int64]struct{})
		for i := range p.tables.Subjects {
			s := &p.tables.Subjects[i]
			if sets[s.SubjectSetID] == nil {
				sets[s.SubjectSetID] = make(map[int64]struct{})
			}
			sets[s.SubjectSetID][s.ID] = struct{}{}
		}

		out := make(map[int64][]int64, len(sets))
		for setID, members := range sets {
			out[setID] = sortedInt64s(members)
		}
		return out
	})
}

// WorkflowSubjects returns the subject IDs attached to the workflow.
func (p *Project) WorkflowSubjects(workflowID int64) []int64 {
	set := make(map[int64]struct{})
	for i := range p.tables.Subjects {
		if p.tables.Subjects[i].WorkflowID == workflowID {
			set[p.tables.Subjects[i].ID] = struct{}{}
		}
	}
	return sortedInt64s(set)
}

// SubjectURLs maps each subject onto its source media URLs.
func (p *Project) SubjectURLs() map[int64][]string {
	return memoized(p, "subject_urls", func() map[int64][]string {
		out := make(map[int64][]string, len(p.tables.Subjects))
		for i := range p.tables.Subjects {
			s := &p.tables.Subjects[i]
			out[s.ID] = s.Locations
		}
		return out
	})
}
