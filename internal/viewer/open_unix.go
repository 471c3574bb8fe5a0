//go:build !windows && !darwin

package viewer

func openCommand(url string) (string, []string) {
	return "xdg-open", []string{url}
}
