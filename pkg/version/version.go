package version

// Tag is set at build time with -ldflags "-X github.com/flokiorg/lokirent/pkg/version.Tag=..."
var Tag = "dev"

func UserAgent() string {
	return "Lokirent/" + Tag
}
