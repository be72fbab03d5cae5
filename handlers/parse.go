// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/danielhkuo/duudl/duudl"
)

var errBadUserID = errors.New("bad user_id")

// ParseDaysJSON decodes the selected_days_json form field. Anything that is
// not a JSON array yields no days; non-string entries are dropped.
func ParseDaysJSON(raw string) []string {
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	days := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			days = append(days, s)
		}
	}
	return days
}

// stringField reads key as text; missing or null is "".
func stringField(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// optionalField reads key as text; missing or null is nil.
func optionalField(payload map[string]any, key string) *string {
	v, ok := payload[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return &s
}

// userIDField accepts a JSON integer or a decimal string.
func userIDField(payload map[string]any, key string) (int64, error) {
	switch v := payload[key].(type) {
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which is already out of range
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, errBadUserID
		}
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, errBadUserID
		}
		return id, nil
	default:
		return 0, errBadUserID
	}
}

// answersFromForm reads value:<day> and comment:<day> for each poll day.
// A day is written only when its value field was posted; an empty value
// clears the answer. A posted comment field replaces the comment.
func answersFromForm(form url.Values, days []string) []duudl.Answer {
	var answers []duudl.Answer
	for _, day := range days {
		values, ok := form["value:"+day]
		if !ok || len(values) == 0 {
			continue
		}
		a := duudl.Answer{Day: day}
		if v := strings.TrimSpace(values[0]); v != "" {
			a.Value = &v
		}
		if comments, ok := form["comment:"+day]; ok && len(comments) > 0 {
			c := comments[0]
			a.Comment = &c
		}
		answers = append(answers, a)
	}
	return answers
}
