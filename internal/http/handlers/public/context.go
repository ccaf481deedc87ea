package public

import (
	handlershared "github.com/retailsetu/delivery-engine/internal/http/handlers/shared"
	"github.com/retailsetu/delivery-engine/internal/service"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id", "invalid user id")
}

// getActor resolves the authenticated caller into a service actor. The role
// is set by the auth middleware alongside the user id.
func getActor(c *gin.Context) (service.Actor, bool) {
	uid, ok := getUserID(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{
		UserID: uid,
		Role:   handlershared.GetContextString(c, "user_role"),
	}, true
}
