// Package utils provides helpers for interacting with the operator's desktop and terminal.
package utils
