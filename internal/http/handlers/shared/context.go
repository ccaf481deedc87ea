package shared

import (
	"strings"

	"github.com/retailsetu/delivery-engine/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextUint reads a uint value from the gin context, writing the error
// response itself when the value is missing or malformed.
func GetContextUint(c *gin.Context, key, invalidMsg string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidMsg, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidMsg, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, invalidMsg, nil)
		return 0, false
	}
}

// GetContextString reads a trimmed string value from the gin context.
func GetContextString(c *gin.Context, key string) string {
	value, exists := c.Get(key)
	if !exists {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}
