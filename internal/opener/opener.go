// Package opener hands card links (web, mail and phone) to the desktop.
package opener

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"unicode"

	"github.com/pders01/roster/internal/config"
	"github.com/pders01/roster/internal/debuglog"
)

var (
	ErrNoOpener          = errors.New("no application found to open link")
	ErrUnsupportedScheme = errors.New("unsupported link scheme")
	ErrUnsafeLink        = errors.New("link contains shell metacharacters")
)

// unsafeChars are never part of a link built from a directory record and
// would be interpreted by a shell on some launchers.
const unsafeChars = "&|^<>\"`"

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
}

type Opener struct {
	command string
}

func New(cfg *config.Config) *Opener {
	command := cfg.Opener.Default
	if command == "" || findCommand(command) == "" {
		command = findCommand(platformOpeners()...)
	}
	return &Opener{command: command}
}

// Command is the resolved launcher, empty when none was found.
func (o *Opener) Command() string { return o.command }

// Open starts the launcher detached; it does not wait for it to exit.
func (o *Opener) Open(link string) error {
	if err := CheckLink(link); err != nil {
		return err
	}
	if o.command == "" {
		return ErrNoOpener
	}

	cmd := o.buildCommand(link)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", o.command, err)
	}
	debuglog.WithFields(map[string]interface{}{
		"command": o.command,
		"link":    link,
	}).Debugf("opened link")

	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func (o *Opener) buildCommand(link string) *exec.Cmd {
	name, args := commandLine(runtime.GOOS, o.command, link)
	return exec.Command(name, args...)
}

// commandLine never routes a link through a shell. On Windows the start
// builtin is replaced by the URL protocol handler.
func commandLine(goos, command, link string) (string, []string) {
	if goos == "windows" && command == "start" {
		return "rundll32", []string{"url.dll,FileProtocolHandler", link}
	}
	return command, []string{link}
}

// CheckLink rejects anything other than http(s), mailto and tel links, and
// any link carrying characters a shell would act on.
func CheckLink(link string) error {
	link = strings.TrimSpace(link)
	if strings.ContainsAny(link, unsafeChars) || strings.IndexFunc(link, unicode.IsSpace) >= 0 ||
		strings.IndexFunc(link, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: %q", ErrUnsafeLink, link)
	}

	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid link: %w", err)
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Opaque == "" && u.Host == "" {
		return fmt.Errorf("invalid link: %q has no target", link)
	}
	return nil
}

func platformOpeners() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"start", "explorer"}
	default:
		return []string{"xdg-open", "gio", "sensible-browser"}
	}
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		// start is resolved to the URL protocol handler at launch
		if runtime.GOOS == "windows" && cmd == "start" {
			return cmd
		}
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
