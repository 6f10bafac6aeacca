package registry

// userSubDirs are the per-user manifest locations on Linux, relative to
// the user's home directory.
var userSubDirs = []string{
	".config/google-chrome/NativeMessagingHosts",
	".config/chromium/NativeMessagingHosts",
}

// systemDirs are the system-wide manifest locations on Linux.
var systemDirs = []string{
	"/etc/opt/chrome/native-messaging-hosts",
	"/etc/chromium/native-messaging-hosts",
}
