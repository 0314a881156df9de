package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// uintParam parses a numeric path parameter. A malformed id cannot name any
// resource, so it reports the same outcome as a missing one.
func uintParam(ctx *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(ctx.Param(name), 10, 64)

	if err != nil {
		return 0, false
	}

	return uint(value), true
}
