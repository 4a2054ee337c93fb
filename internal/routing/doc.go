// Package routing selects the destination site for a content item.
// Site configuration and routing rules live in constructor-injected
// in-memory stores loaded from config at startup and reloadable
// without a restart. Routing itself is a pure function of the request
// and current rule state, so previewing a route has no side effects.
package routing
