/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package httpserver

// Request surface
const (
	// HeaderToken carries the JWT authorizing an upload or download.
	HeaderToken = "X-Token"

	// ParamFileID is the download query parameter naming the file.
	ParamFileID = "id"
)

// CORS header names
const (
	HeaderOrigin                     = "Origin"
	HeaderAllow                      = "Allow"
	HeaderAccessControlRequestMethod = "Access-Control-Request-Method"
	HeaderAccessControlRequestHdrs   = "Access-Control-Request-Headers"
	HeaderAllowOrigin                = "Access-Control-Allow-Origin"
	HeaderAllowCredentials           = "Access-Control-Allow-Credentials"
	HeaderAllowMethods               = "Access-Control-Allow-Methods"
	HeaderAllowHeaders               = "Access-Control-Allow-Headers"
	HeaderExposeHeaders              = "Access-Control-Expose-Headers"
	HeaderMaxAge                     = "Access-Control-Max-Age"
)

// AllValue matches any origin or header in a CORS allow-list.
const AllValue = "*"
