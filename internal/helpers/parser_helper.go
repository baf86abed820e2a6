package helpers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageLimit = 100

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParsePagination reads optional page/limit query params. ok is false when the
// caller asked for neither.
func ParsePagination(c *gin.Context) (page, limit int, ok bool, err error) {
	pageStr, hasPage := c.GetQuery("page")
	limitStr, hasLimit := c.GetQuery("limit")
	if !hasPage && !hasLimit {
		return 0, 0, false, nil
	}
	if pageStr == "" {
		pageStr = "1"
	}
	if limitStr == "" {
		limitStr = "10"
	}

	page, err = StringToInt(pageStr)
	if err != nil || page < 1 {
		return 0, 0, false, fmt.Errorf("invalid page number")
	}
	limit, err = StringToInt(limitStr)
	if err != nil || limit < 1 || limit > maxPageLimit {
		return 0, 0, false, fmt.Errorf("invalid limit")
	}
	return page, limit, true, nil
}
