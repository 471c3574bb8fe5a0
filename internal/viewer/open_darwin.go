//go:build darwin

package viewer

func openCommand(url string) (string, []string) {
	return "open", []string{url}
}
