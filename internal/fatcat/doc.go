// Package fatcat locates the largest files under a directory tree.
//
// It walks directory trees using fastwalk for parallel traversal, keeps
// every regular file at or above a size threshold, ranks the matches by
// size and summarizes them into a fixed set of size buckets.
package fatcat
