/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package httpserver

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSPreflightErrorStatus is the status returned for rejected preflights.
const CORSPreflightErrorStatus = http.StatusForbidden

// CORS applies the cross-origin policy to every route. It handles OPTIONS
// preflights itself and decorates actual requests with the response headers
// the policy permits.
type CORS struct {
	allowOrigins     []string
	allowCredentials bool
	allowHeaders     []string
	exposeHeaders    []string
	maxAge           int
	logger           *slog.Logger
}

// NewCORS creates a CORS policy. The token and disposition headers the
// service itself uses are always part of the allow and expose lists.
func NewCORS(allowOrigins []string, allowCredentials bool, allowHeaders, exposeHeaders []string, maxAge int, logger *slog.Logger) *CORS {
	return &CORS{
		allowOrigins:     allowOrigins,
		allowCredentials: allowCredentials,
		allowHeaders:     appendMissing(allowHeaders, HeaderToken),
		exposeHeaders:    appendMissing(exposeHeaders, "Content-Disposition"),
		maxAge:           maxAge,
		logger:           logger,
	}
}

// Process applies the policy to one request. It returns true when the caller
// should go on to serve the request, false when the response is complete
// (preflight handled, or the request was rejected).
func (c *CORS) Process(w http.ResponseWriter, r *http.Request, acceptedMethods ...string) bool {
	w.Header().Set(HeaderAllow, strings.Join(acceptedMethods, ","))

	if r.Method == http.MethodOptions {
		c.preflight(w, r, acceptedMethods)
		return false
	}
	if !slices.Contains(acceptedMethods, r.Method) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return c.actualRequest(w, r)
}

func (c *CORS) actualRequest(w http.ResponseWriter, r *http.Request) bool {
	origin := r.Header.Get(HeaderOrigin)
	if origin == "" {
		// Same-origin or non-browser client, nothing to do.
		return true
	}

	if !c.originAllowed(origin) {
		c.logger.Debug("Origin not allowed", "origin", origin)
		w.WriteHeader(CORSPreflightErrorStatus)
		return false
	}

	w.Header().Set(HeaderAllowOrigin, origin)
	w.Header().Set(HeaderAllowCredentials, strconv.FormatBool(c.allowCredentials))
	if len(c.exposeHeaders) > 0 {
		w.Header().Set(HeaderExposeHeaders, strings.Join(c.exposeHeaders, ","))
	}
	return true
}

func (c *CORS) preflight(w http.ResponseWriter, r *http.Request, acceptedMethods []string) {
	origin := r.Header.Get(HeaderOrigin)
	if origin == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	method := r.Header.Get(HeaderAccessControlRequestMethod)
	if method == "" {
		c.logger.Debug("Missing method in preflight request")
		w.WriteHeader(CORSPreflightErrorStatus)
		return
	}
	if !slices.Contains(acceptedMethods, method) {
		c.logger.Debug("Method not allowed", "method", method)
		w.WriteHeader(CORSPreflightErrorStatus)
		return
	}
	if !c.originAllowed(origin) {
		c.logger.Debug("Origin not allowed", "origin", origin)
		w.WriteHeader(CORSPreflightErrorStatus)
		return
	}

	requestHeaders := splitHeaderList(r.Header.Get(HeaderAccessControlRequestHdrs))
	if !c.headersAllowed(requestHeaders) {
		c.logger.Debug("Headers not allowed", "headers", requestHeaders)
		w.WriteHeader(CORSPreflightErrorStatus)
		return
	}

	w.Header().Set(HeaderAllowOrigin, origin)
	w.Header().Set(HeaderAllowMethods, method)
	if len(requestHeaders) > 0 {
		w.Header().Set(HeaderAllowHeaders, strings.Join(requestHeaders, ","))
	}
	w.Header().Set(HeaderMaxAge, strconv.Itoa(c.maxAge))
	w.Header().Set(HeaderAllowCredentials, strconv.FormatBool(c.allowCredentials))
	w.WriteHeader(http.StatusOK)
}

func (c *CORS) originAllowed(origin string) bool {
	return slices.Contains(c.allowOrigins, AllValue) || slices.Contains(c.allowOrigins, origin)
}

func (c *CORS) headersAllowed(requested []string) bool {
	if slices.Contains(c.allowHeaders, AllValue) {
		return true
	}
	for _, h := range requested {
		if !slices.ContainsFunc(c.allowHeaders, func(allowed string) bool {
			return strings.EqualFold(allowed, h)
		}) {
			return false
		}
	}
	return true
}

func splitHeaderList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	headers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			headers = append(headers, p)
		}
	}
	return headers
}

func appendMissing(list []string, value string) []string {
	if slices.ContainsFunc(list, func(s string) bool { return strings.EqualFold(s, value) }) {
		return list
	}
	return append(slices.Clone(list), value)
}
