package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the data payload of a successful reply.
type Response map[string]interface{}

// Reason codes outside the evaluator's own taxonomy. Together with the
// authz reasons, every error reply carries exactly one of these.
const (
	ReasonUnauthenticated  = "UNAUTHENTICATED"
	ReasonForbiddenNoToken = "FORBIDDEN_NO_TOKEN"
	ReasonForbiddenDefault = "FORBIDDEN_DEFAULT"
	ReasonMalformedRequest = "MALFORMED_REQUEST"
	ReasonNotFound         = "NOT_FOUND"
	ReasonConflict         = "CONFLICT"
	ReasonServerError      = "SERVER_ERROR"
)

// reasonKey is where Error stashes the reason code in the gin context so
// the audit middleware can attribute the denial afterwards.
const reasonKey = "errorReason"

// Success writes a 200 reply with the given data.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 reply with the given data.
func Created(c *gin.Context, data Response) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Error writes an error reply with a machine-readable reason code.
func Error(c *gin.Context, httpStatus int, reason string, msg string) {
	c.Set(reasonKey, reason)
	c.JSON(httpStatus, gin.H{
		"reason":  reason,
		"message": msg,
	})
}

// ErrorReason returns the reason code recorded by Error for this request,
// or "" if the request did not fail.
func ErrorReason(c *gin.Context) string {
	return c.GetString(reasonKey)
}
