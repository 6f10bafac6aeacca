package registry

// userSubDirs are the per-user manifest locations on macOS, relative to
// the user's home directory.
var userSubDirs = []string{
	"Library/Application Support/Google/Chrome/NativeMessagingHosts",
	"Library/Application Support/Chromium/NativeMessagingHosts",
}

// systemDirs are the system-wide manifest locations on macOS.
var systemDirs = []string{
	"/Library/Google/Chrome/NativeMessagingHosts",
	"/Library/Application Support/Chromium/NativeMessagingHosts",
}
