package ratingservice

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const cursorPrefix = "position:"

// PageOptions selects a page of a ranking. First <= 0 returns every remaining
// row; After resumes strictly after the cursor's position.
type PageOptions struct {
	First int
	After string
}

// PageInfo describes where a page sits in the full ranking.
type PageInfo struct {
	TotalCount  int    `json:"total_count"`
	EndCursor   string `json:"end_cursor,omitempty"`
	HasNextPage bool   `json:"has_next_page"`
}

func encodeCursor(position int) string {
	return base64.URLEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(position)))
}

func decodeCursor(cursor string) (int, error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not base64", ErrInvalidCursor, cursor)
	}
	value, ok := strings.CutPrefix(string(raw), cursorPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
	}
	position, err := strconv.Atoi(value)
	if err != nil || position < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
	}
	return position, nil
}
