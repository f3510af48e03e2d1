/*
Package workspace coordinates concurrent access to stored diagrams.

A Manager serializes writes per diagram id within one process and, when a
ports.DistributedLocker is configured, across replicas sharing the same store.
*/
package workspace
