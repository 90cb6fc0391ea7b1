// Package main provides the entry point of markstash, a self hosted bookmark
// service. This module contains its authentication component: users log in
// through an OpenID Connect identity provider with the authorization code
// flow, and a successful login binds the local user to an identity cookie.
// The web server is built on Fiber, users are stored with gorm and sessions
// can live in memory, MySQL, Postgres or Redis.
package main
