// Package api groups the message catalogs of the simulated chain. Each
// subpackage declares the request and response types of one module
// together with the routing paths they travel under: message type URLs
// ("/<ns>.<module>.<version>.Msg<Name>") for execution and query paths
// ("/<ns>.<module>.<version>.Query/<Method>") for reads.
package api
