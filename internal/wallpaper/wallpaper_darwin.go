//go:build darwin

package wallpaper

import (
	"fmt"
	"os/exec"
)

// setDesktopBackground sets the wallpaper on every desktop via System Events.
// The mode parameter is ignored, macOS keeps its own per-display setting.
func setDesktopBackground(path, _ string) error {
	script := fmt.Sprintf(`tell application "System Events" to tell every desktop to set picture to %q`, path)
	if out, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript: %w: %s", err, out)
	}
	return nil
}
