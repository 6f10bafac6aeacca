//go:build !windows

package config

// defaultTrigger is the out-of-the-box trigger source.
const defaultTrigger = "signal"
