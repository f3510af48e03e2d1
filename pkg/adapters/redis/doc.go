// Package redis provides Redis-backed diagram persistence and distributed locking.
package redis
