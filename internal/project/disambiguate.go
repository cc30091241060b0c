package project

import (
	"os"
	"sort"
	"strings"

	"github.com/kingsdigitallab/zoonyper/internal/disambiguate"
	"github.com/kingsdigitallab/zoonyper/internal/errors"
)

// AreSubjectsDisambiguated reports whether the disambiguation pass has
// run (or its results have been restored from the datastore).
func (p *Project) AreSubjectsDisambiguated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disambiguated
}

// DisambiguateSubjects content-hashes the downloaded media under
// downloadsDir and assigns every subject a disambiguated ID: subjects
// whose media files are bit-identical share an ID. IDs are dense,
// starting at 1, assigned in digest-tuple order. Running twice is a
// no-op.
func (p *Project) DisambiguateSubjects(downloadsDir string) error {
	if p.AreSubjectsDisambiguated() {
		return nil
	}

	if downloadsDir == "" {
		return errors.NewStd("a valid downloads directory is required")
	}
	if info, err := os.Stat(downloadsDir); err != nil || !info.IsDir() {
		return errors.Newf("downloads directory %s is not available", downloadsDir).
			Component("project").
			Category(errors.CategoryDisambiguation).
			Build()
	}

	digests, err := disambiguate.HashFiles(downloadsDir)
	if err != nil {
		return err
	}

	// Every subject's media maps onto a sorted digest tuple; subjects
	// sharing a tuple are the same content.
	tuples := make([]string, len(p.tables.Subjects))
	for i := range p.tables.Subjects {
		s := &p.tables.Subjects[i]
		fileDigests := make([]string, 0, len(s.Locations))
		for _, url := range s.Locations {
			name := urlFileName(url)
			digest, ok := digests[name]
			if !ok {
				return errors.Newf("subject %d media %q has not been downloaded yet; run the download first", s.ID, name).
					Component("project").
					Category(errors.CategoryDisambiguation).
					Context("subject_id", s.ID).
					Build()
			}
			fileDigests = append(fileDigests, digest)
		}
		sort.Strings(fileDigests)
		tuples[i] = strings.Join(fileDigests, ",")
	}

	distinct := make(map[string]struct{}, len(tuples))
	for _, tuple := range tuples {
		distinct[tuple] = struct{}{}
	}
	ordered := make([]string, 0, len(distinct))
	for tuple := range distinct {
		ordered = append(ordered, tuple)
	}
	sort.Strings(ordered)

	idByTuple := make(map[string]int, len(ordered))
	for i, tuple := range ordered {
		idByTuple[tuple] = i + 1
	}

	for i := range p.tables.Subjects {
		p.tables.Subjects[i].DisambiguatedID = idByTuple[tuples[i]]
	}

	p.mu.Lock()
	p.disambiguated = true
	p.mu.Unlock()

	p.logger.Info("disambiguated subjects",
		"subjects", len(p.tables.Subjects),
		"distinct_media", len(ordered))
	return nil
}

// GetDisambiguatedID returns the disambiguated ID of a subject. It is an
// error to ask before disambiguation has run; an unknown subject ID
// returns 0 with a warning.
func (p *Project) GetDisambiguatedID(subjectID int64) (int, error) {
	if !p.AreSubjectsDisambiguated() {
		return 0, errors.Newf("the subjects need to be disambiguated first").
			Component("project").
			Category(errors.CategoryDisambiguation).
			Build()
	}
	for i := range p.tables.Subjects {
		if p.tables.Subjects[i].ID == subjectID {
			return p.tables.Subjects[i].DisambiguatedID, nil
		}
	}
	p.logger.Warn("subject is not part of the subjects table", "subject_id", subjectID)
	return 0, nil
}

// DisambiguatedIDs returns the subject-to-disambiguated-ID mapping, for
// persistence. Empty until disambiguation has run.
func (p *Project) DisambiguatedIDs() map[int64]int {
	if !p.AreSubjectsDisambiguated() {
		return nil
	}
	out := make(map[int64]int, len(p.tables.Subjects))
	for i := range p.tables.Subjects {
		out[p.tables.Subjects[i].ID] = p.tables.Subjects[i].DisambiguatedID
	}
	return out
}

// RestoreDisambiguatedIDs applies a previously persisted
// subject-to-disambiguated-ID mapping, marking the project disambiguated
// when every subject is covered.
func (p *Project) RestoreDisambiguatedIDs(ids map[int64]int) {
	if len(ids) == 0 {
		return
	}
	covered := 0
	for i := range p.tables.Subjects {
		if id, ok := ids[p.tables.Subjects[i].ID]; ok && id != 0 {
			p.tables.Subjects[i].DisambiguatedID = id
			covered++
		}
	}
	if covered == len(p.tables.Subjects) && covered > 0 {
		p.mu.Lock()
		p.disambiguated = true
		p.mu.Unlock()
	}
}
