// internal/utils/pagination.go
package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	MaxPageLimit = 100
	// maxOffset bounds (page-1)*limit so the offset never overflows.
	maxOffset = math.MaxInt32
)

type PaginationParams struct {
	Page  int
	Limit int
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// GetPaginationParams reads page and limit from the query string.
func GetPaginationParams(c *gin.Context, defaultLimit int) PaginationParams {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if maxPage := maxOffset/limit + 1; page > maxPage {
		page = maxPage
	}

	return PaginationParams{Page: page, Limit: limit}
}

func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

func NewPagination(params PaginationParams, total int64) Pagination {
	pages := 0
	if params.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(params.Limit)))
	}

	return Pagination{
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
		Pages: pages,
	}
}
