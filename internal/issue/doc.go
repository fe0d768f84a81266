// Package issue is the wire contract shared by the issue server and the
// dashboard client: the JSON shape of an Issue and its Screenshots, the
// classification enums with their display labels, the defaults applied to
// missing fields, and identifier generation.
package issue
