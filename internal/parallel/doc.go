// Package parallel splits CPU image work across a pool of goroutines.
package parallel
