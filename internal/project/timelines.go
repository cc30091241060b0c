package project

import (
	"strconv"
	"time"
)

// WorkflowTimeline describes the observed classification date range of one
// workflow.
type WorkflowTimeline struct {
	WorkflowID int64  `json:"workflow_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Active     bool   `json:"active"`
}

// WorkflowTimelines returns the first and last classification date per
// workflow. Workflows without classifications are omitted; when
// includeActive is false only inactive workflows are reported.
func (p *Project) WorkflowTimelines(includeActive bool) []WorkflowTimeline {
	key := "workflow_timelines:inactive"
	if includeActive {
		key = "workflow_timelines:all"
	}
	return memoized(p, key, func() []WorkflowTimeline {
		inactive := make(map[int64]struct{})
		for _, id := range p.InactiveWorkflowIDs() {
			inactive[id] = struct{}{}
		}

		var workflowIDs []int64
		if includeActive {
			workflowIDs = p.WorkflowIDs()
		} else {
			workflowIDs = p.InactiveWorkflowIDs()
		}

		var timelines []WorkflowTimeline
		for _, workflowID := range workflowIDs {
			var first, last time.Time
			for i := range p.tables.Classifications {
				c := &p.tables.Classifications[i]
				if c.WorkflowID != workflowID || c.CreatedAt.IsZero() {
					continue
				}
				if first.IsZero() || c.CreatedAt.Before(first) {
					first = c.CreatedAt
				}
				if c.CreatedAt.After(last) {
					last = c.CreatedAt
				}
			}
			if first.IsZero() {
				continue
			}
			_, isInactive := inactive[workflowID]
			timelines = append(timelines, WorkflowTimeline{
				WorkflowID: workflowID,
				StartDate:  p.formatDate(first),
				EndDate:    p.formatDate(last),
				Active:     !isInactive,
			})
		}
		return timelines
	})
}

// DateCount is one point of a cumulative classification series: the total
// number of classifications made up to and including Date.
type DateCount struct {
	Date  string `json:"date"`
	Close int    `json:"close"`
}

// ClassificationsByDate returns the cumulative classification count for
// every calendar day in the observed range of the workflow. A workflowID
// of 0 covers the whole project. Returns an empty series when there are
// no dated classifications.
func (p *Project) ClassificationsByDate(workflowID int64) []DateCount {
	key := "classifications_by_date:" + strconv.FormatInt(workflowID, 10)
	return memoized(p, key, func() []DateCount {
		perDay := make(map[string]int)
		var minDay, maxDay time.Time
		for i := range p.tables.Classifications {
			c := &p.tables.Classifications[i]
			if workflowID != 0 && c.WorkflowID != workflowID {
				continue
			}
			if c.CreatedAt.IsZero() {
				continue
			}
			ts := c.CreatedAt.UTC()
			day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
			perDay[p.formatDate(day)]++
			if minDay.IsZero() || day.Before(minDay) {
				minDay = day
			}
			if day.After(maxDay) {
				maxDay = day
			}
		}
		if len(perDay) == 0 {
			return []DateCount{}
		}

		var series []DateCount
		running := 0
		for day := minDay; !day.After(maxDay); day = day.AddDate(0, 0, 1) {
			date := p.formatDate(day)
			running += perDay[date]
			series = append(series, DateCount{Date: date, Close: running})
		}
		return series
	})
}

// AllClassificationsByDate returns the cumulative classification series
// per workflow plus an "All workflows" entry covering the whole project.
func (p *Project) AllClassificationsByDate() map[string][]DateCount {
	out := make(map[string][]DateCount)
	for _, workflowID := range p.WorkflowIDs() {
		out[strconv.FormatInt(workflowID, 10)] = p.ClassificationsByDate(workflowID)
	}
	out["All workflows"] = p.ClassificationsByDate(0)
	return out
}
