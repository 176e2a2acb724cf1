// Package util holds small parsing and display helpers shared by config
// and logging code.
package util
