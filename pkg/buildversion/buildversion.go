package buildversion

// These values are overridden at build time with -ldflags "-X".
var (
	version   = "1.1.0"
	gitSHA    = ""
	buildTime = ""
)

// Version is the SDK version. It is sent to the licensing API on every request.
func Version() string {
	return version
}

func GitSHA() string {
	return gitSHA
}

func BuildTime() string {
	return buildTime
}
