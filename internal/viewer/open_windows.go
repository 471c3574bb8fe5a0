//go:build windows

package viewer

// rundll32 keeps the #page fragment that "start" would drop.
func openCommand(url string) (string, []string) {
	return "rundll32", []string{"url.dll,FileProtocolHandler", url}
}
