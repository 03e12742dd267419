package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"duitku/internal/core"
)

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrNotFound
	}
	return id, nil
}

// queryFilters decodes the shared report filter parameters: from, to
// (YYYY-MM-DD) and categoryIds (comma-separated).
func queryFilters(r *http.Request) (core.ReportFilters, error) {
	var f core.ReportFilters
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.ReportFilters{}, err
		}
		f.From = d
	}
	if v := q.Get("to"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.ReportFilters{}, err
		}
		f.To = d
	}
	if v := q.Get("categoryIds"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil || id <= 0 {
				return core.ReportFilters{}, core.ErrValidation
			}
			f.CategoryIDs = append(f.CategoryIDs, id)
		}
	}
	return f, nil
}

// queryRef returns the reference time for bucketing: the ref parameter when
// present (tests and backfills), otherwise now.
func queryRef(r *http.Request) (time.Time, error) {
	v := r.URL.Query().Get("ref")
	if v == "" {
		return time.Now().UTC(), nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}

func queryRange(r *http.Request) (core.TimeRange, error) {
	tr := core.TimeRange(r.URL.Query().Get("range"))
	if tr == "" {
		tr = core.RangeMonthly
	}
	if err := tr.Validate(); err != nil {
		return "", err
	}
	return tr, nil
}
