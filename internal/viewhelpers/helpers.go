// internal/viewhelpers/helpers.go
//
// Template helpers that pull data out of *requestinfo.RequestInfo.
// Registered by the view engine before templates are parsed, so every
// template can call:
//
//	{{ browser .Req }} {{ browserVersion .Req }}
//	{{ os .Req }} – {{ osVersion .Req }}
//	{{ device .Req }}  {{ platform .Req }}
//	{{ if isBot .Req }}Robot!{{ end }}
package viewhelpers

import (
	"html/template"

	"github.com/farmsathi/portal/internal/requestinfo"
)

// FuncMap returns UA helpers keyed off *requestinfo.RequestInfo.  All of
// them tolerate a nil receiver so layouts render even when the enrich
// middleware did not run (tests, health checks).
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"browser":        func(ri *requestinfo.RequestInfo) string { return uaField(ri, func(r *requestinfo.RequestInfo) string { return r.UA.Browser }) },
		"browserVersion": func(ri *requestinfo.RequestInfo) string { return uaField(ri, func(r *requestinfo.RequestInfo) string { return r.UA.Version }) },
		"os":             func(ri *requestinfo.RequestInfo) string { return uaField(ri, func(r *requestinfo.RequestInfo) string { return r.UA.OS }) },
		"osVersion":      func(ri *requestinfo.RequestInfo) string { return uaField(ri, func(r *requestinfo.RequestInfo) string { return r.UA.OSVersion }) },
		"device":         func(ri *requestinfo.RequestInfo) string { return uaField(ri, func(r *requestinfo.RequestInfo) string { return r.UA.Device }) },
		"platform":       func(ri *requestinfo.RequestInfo) string { return uaField(ri, func(r *requestinfo.RequestInfo) string { return r.UA.Platform }) },
		"isBot":          func(ri *requestinfo.RequestInfo) bool { return ri != nil && ri.UA.IsBot },
	}
}

func uaField(ri *requestinfo.RequestInfo, get func(*requestinfo.RequestInfo) string) string {
	if ri == nil {
		return ""
	}
	return get(ri)
}
