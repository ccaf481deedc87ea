package public

import (
	"errors"

	"github.com/retailsetu/delivery-engine/internal/http/response"
	"github.com/retailsetu/delivery-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError maps one business error onto the response envelope.
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var orderCommonErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrNotAuthorized, code: response.CodeForbidden, msg: "not allowed to act on this order"},
}

var transitionExtraErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidTransition, code: response.CodeConflict, msg: "transition not allowed from current status"},
	{target: service.ErrPartnerNotFound, code: response.CodeNotFound, msg: "delivery partner not found"},
	{target: service.ErrTransientStore, code: response.CodeInternal, msg: "temporary storage failure, please retry"},
}

var cashExtraErrorRules = []mappedHandlerError{
	{target: service.ErrWrongPaymentMethod, code: response.CodeBadRequest, msg: "order is not cash on delivery"},
	{target: service.ErrNotDelivered, code: response.CodeBadRequest, msg: "order is not delivered yet"},
	{target: service.ErrAlreadyPaid, code: response.CodeConflict, msg: "order payment already settled"},
	{target: service.ErrDuplicateWrite, code: response.CodeConflict, msg: "order payment already settled"},
	{target: service.ErrCashMismatch, code: response.CodeBadRequest, msg: "collected amount does not match order total"},
}

var partnerErrorRules = []mappedHandlerError{
	{target: service.ErrPartnerNotFound, code: response.CodeNotFound, msg: "delivery partner not found"},
	{target: service.ErrLinkUnresolved, code: response.CodeNotFound, msg: "no matching account found for this partner"},
}

var earningErrorRules = []mappedHandlerError{
	{target: service.ErrEarningNotFound, code: response.CodeNotFound, msg: "earning not found"},
	{target: service.ErrPartnerNotFound, code: response.CodeNotFound, msg: "delivery partner not found"},
}

var notificationErrorRules = []mappedHandlerError{
	{target: service.ErrNotificationNotFound, code: response.CodeNotFound, msg: "notification not found"},
	{target: service.ErrNotAuthorized, code: response.CodeForbidden, msg: "notification belongs to another user"},
}

func respondTransitionError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderCommonErrorRules, transitionExtraErrorRules), response.CodeInternal, "order update failed")
}

func respondCashError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderCommonErrorRules, cashExtraErrorRules), response.CodeInternal, "cash settlement failed")
}
