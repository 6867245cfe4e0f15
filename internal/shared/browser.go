package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// OpenerCommand builds the command that hands target (a URL or a URI such as spotify:track:...) to the OS default handler.
//
// Supports macOS, Linux, and Windows platforms.
func OpenerCommand(target string) (*exec.Cmd, error) {
	rt := getRuntime()
	switch rt {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", target), nil
	case "windows":
		// the empty argument is the window title consumed by start
		return exec.Command("cmd", "/c", "start", "", target), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", rt)
	}
}

// OpenBrowser opens target with the system default handler, or with browser when it is set.
func OpenBrowser(browser, target string) error {
	var cmd *exec.Cmd
	if browser != "" {
		cmd = exec.Command(browser, target)
	} else {
		var err error
		if cmd, err = OpenerCommand(target); err != nil {
			return err
		}
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}

	// the opener exits once the handler has the target; reap it without blocking
	go cmd.Wait()

	return nil
}
