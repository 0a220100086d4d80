package types

type ApiResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Status     int         `json:"status"`
	Token      string      `json:"token,omitempty"`
	User       interface{} `json:"user,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NewPagination fills in the page count for total items.
func NewPagination(page, limit int, total int64) *Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
