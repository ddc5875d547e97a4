// Package fetch is the HTTP client used to download gallery images and, for
// the static engine, listing pages.
//
// It wraps resty with the desktop user agent, a per-request timeout and
// status checking: any response with status 400 or above becomes an
// errors.ErrorTypeHTTPStatus error, and transport failures become
// errors.ErrorTypeNetwork errors. No request is ever retried.
package fetch
