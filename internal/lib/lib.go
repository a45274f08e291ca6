// Package lib holds modules that do not fit strictly into a layer.
//
// It contains shared utilities, Prometheus metrics, background job
// processing (Redis/Asynq) and the Resend email client.
package lib
