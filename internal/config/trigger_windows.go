package config

// defaultTrigger is the out-of-the-box trigger source.  Windows has no
// SIGUSR1, so the stdin source is the default there.
const defaultTrigger = "stdin"
