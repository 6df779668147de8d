package query

// PageLimits bounds the page window; values come from configuration.
type PageLimits struct {
	DefaultSize int
	MinSize     int
	MaxSize     int
}

// PageRequest is a 1-based page window.
type PageRequest struct {
	Current  int
	PageSize int
}

// Normalize applies defaults and clamps the window to the configured
// limits. An out-of-range Current is kept as-is: pages past the end of the
// result set return empty item lists with the correct total, never an
// error.
func (r PageRequest) Normalize(limits PageLimits) PageRequest {
	if r.Current < 1 {
		r.Current = 1
	}
	if r.PageSize <= 0 {
		r.PageSize = limits.DefaultSize
	}
	if r.PageSize < limits.MinSize {
		r.PageSize = limits.MinSize
	}
	if r.PageSize > limits.MaxSize {
		r.PageSize = limits.MaxSize
	}
	return r
}

// Offset converts the 1-based window into a row offset.
func (r PageRequest) Offset() int {
	return (r.Current - 1) * r.PageSize
}

// Page is one page of results plus the window it was produced for.
type Page[T any] struct {
	Items    []T `json:"list"`
	Current  int `json:"current"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}
