package exports

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"sort"

	"github.com/kingsdigitallab/zoonyper/internal/errors"
)

// rawComment mirrors the comments JSON export, which prefixes most fields
// with "comment_" and duplicates board and discussion details on every
// row.
type rawComment struct {
	CommentID        int64  `json:"comment_id"`
	BoardID          int64  `json:"board_id"`
	BoardTitle       string `json:"board_title"`
	BoardDescription string `json:"board_description"`
	DiscussionID     int64  `json:"discussion_id"`
	DiscussionTitle  string `json:"discussion_title"`
	FocusID          int64  `json:"comment_focus_id"`
	FocusType        string `json:"comment_focus_type"`
	UserID           int64  `json:"comment_user_id"`
	UserLogin        string `json:"comment_user_login"`
	Body             string `json:"comment_body"`
	CreatedAt        string `json:"comment_created_at"`
}

// rawTag mirrors the tags JSON export.
type rawTag struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	UserLogin    string `json:"user_login"`
	Name         string `json:"name"`
	TaggableID   int64  `json:"taggable_id"`
	TaggableType string `json:"taggable_type"`
	CommentID    int64  `json:"comment_id"`
	CreatedAt    string `json:"created_at"`
}

// LoadComments loads the comments JSON export and splits the duplicated
// board and discussion details out into deduplicated derived tables.
func LoadComments(path string) (comments []Comment, boards []Board, discussions []Discussion, err error) {
	var raw []rawComment
	if err := decodeJSONExport(path, &raw); err != nil {
		return nil, nil, nil, err
	}

	comments = make([]Comment, 0, len(raw))
	boardSeen := make(map[int64]Board)
	discussionSeen := make(map[int64]Discussion)

	for _, rc := range raw {
		comments = append(comments, Comment{
			ID:           rc.CommentID,
			BoardID:      rc.BoardID,
			DiscussionID: rc.DiscussionID,
			FocusID:      rc.FocusID,
			FocusType:    rc.FocusType,
			UserID:       rc.UserID,
			UserLogin:    rc.UserLogin,
			Body:         rc.Body,
			CreatedAt:    parseTime(rc.CreatedAt),
		})
		if _, ok := boardSeen[rc.BoardID]; !ok {
			boardSeen[rc.BoardID] = Board{ID: rc.BoardID, Title: rc.BoardTitle, Description: rc.BoardDescription}
		}
		if _, ok := discussionSeen[rc.DiscussionID]; !ok {
			discussionSeen[rc.DiscussionID] = Discussion{ID: rc.DiscussionID, Title: rc.DiscussionTitle}
		}
	}

	boards = make([]Board, 0, len(boardSeen))
	for _, b := range boardSeen {
		boards = append(boards, b)
	}
	sort.Slice(boards, func(i, j int) bool { return boards[i].ID < boards[j].ID })

	discussions = make([]Discussion, 0, len(discussionSeen))
	for _, d := range discussionSeen {
		discussions = append(discussions, d)
	}
	sort.Slice(discussions, func(i, j int) bool { return discussions[i].ID < discussions[j].ID })

	return comments, boards, discussions, nil
}

// LoadTags loads the tags JSON export and joins each tag against the
// comment it was applied in, carrying the comment body and focus fields
// onto the tag row.
func LoadTags(path string, comments []Comment) ([]Tag, error) {
	var raw []rawTag
	if err := decodeJSONExport(path, &raw); err != nil {
		return nil, err
	}

	byComment := make(map[int64]*Comment, len(comments))
	for i := range comments {
		byComment[comments[i].ID] = &comments[i]
	}

	tags := make([]Tag, 0, len(raw))
	for _, rt := range raw {
		t := Tag{
			ID:         rt.ID,
			UserID:     rt.UserID,
			UserLogin:  rt.UserLogin,
			Name:       rt.Name,
			TaggableID: rt.TaggableID,
			CommentID:  rt.CommentID,
			CreatedAt:  parseTime(rt.CreatedAt),
		}
		if c, ok := byComment[rt.CommentID]; ok {
			t.CommentBody = c.Body
			t.CommentFocusID = c.FocusID
			t.CommentFocusType = c.FocusType
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// decodeJSONExport reads a JSON export that is either a single array or
// JSON lines, one object per line.
func decodeJSONExport[T any](path string, out *[]T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Newf("failed to read export: %w", err).
			Component("exports").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*out = nil
		return nil
	}

	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, out); err != nil {
			return errors.Newf("failed to parse export: %w", err).
				Component("exports").
				Category(errors.CategoryFileParsing).
				FileContext(path, int64(len(data))).
				Build()
		}
		return nil
	}

	// JSON-lines fallback
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var rows []T
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var row T
		if err := json.Unmarshal(line, &row); err != nil {
			return errors.Newf("failed to parse export line: %w", err).
				Component("exports").
				Category(errors.CategoryFileParsing).
				FileContext(path, int64(len(data))).
				Build()
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return errors.Newf("failed to scan export: %w", err).
			Component("exports").
			Category(errors.CategoryFileIO).
			FileContext(path, int64(len(data))).
			Build()
	}
	*out = rows
	return nil
}
