package main

import (
	"os"
	"strconv"
)

// getenv returns the environment variable named key, or def if unset or
// empty, the same helper shape the node and coordinator services use.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvInt is getenv's integer-parsing counterpart, falling back to def
// on a missing or malformed value.
func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
