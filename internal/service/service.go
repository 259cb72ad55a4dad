// Package service installs `mentor run` as a macOS launchd agent so the
// Discord bot and check-in scheduler start on login.
package service

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/chris/mentor/config"
	"github.com/joho/godotenv"
)

const (
	label   = "com.mentor.agent"
	binDest = "/usr/local/bin/mentor"
)

// Paths are the files the installer touches, rooted at a home directory.
type Paths struct {
	Home      string
	Plist     string
	StdoutLog string
	StderrLog string
}

func pathsFor(home string) Paths {
	logs := filepath.Join(home, "Library", "Logs")
	return Paths{
		Home:      home,
		Plist:     filepath.Join(home, "Library", "LaunchAgents", label+".plist"),
		StdoutLog: filepath.Join(logs, "mentor-stdout.log"),
		StderrLog: filepath.Join(logs, "mentor-stderr.log"),
	}
}

func defaultPaths() Paths {
	home, _ := os.UserHomeDir()
	return pathsFor(home)
}

// Install copies the binary to /usr/local/bin, seeds ~/.mentor/config from
// .env if needed, writes the launchd plist and loads it.
func Install(out io.Writer) error {
	p := defaultPaths()

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}
	if exe, err = filepath.EvalSymlinks(exe); err != nil {
		return fmt.Errorf("resolving symlinks: %w", err)
	}
	if err := copyFile(exe, binDest, 0o755); err != nil {
		return err
	}
	fmt.Fprintf(out, "installed binary to %s\n", binDest)

	if seeded, err := seedConfig(".env", config.ConfigFile()); err != nil {
		return err
	} else if seeded {
		fmt.Fprintf(out, "seeded config from .env -> %s\n", config.ConfigFile())
	} else {
		fmt.Fprintf(out, "config already exists at %s\n", config.ConfigFile())
	}

	plist, err := renderPlist(p, binDest, resolveWorkDir(config.ConfigFile()))
	if err != nil {
		return fmt.Errorf("generating plist: %w", err)
	}

	// Reinstall over an older version.
	if _, err := os.Stat(p.Plist); err == nil {
		_ = launchctl("unload", p.Plist)
	}
	if err := os.MkdirAll(filepath.Dir(p.Plist), 0o755); err != nil {
		return fmt.Errorf("creating LaunchAgents dir: %w", err)
	}
	if err := os.WriteFile(p.Plist, []byte(plist), 0o644); err != nil {
		return fmt.Errorf("writing plist: %w", err)
	}
	fmt.Fprintf(out, "wrote plist to %s\n", p.Plist)

	if err := launchctl("load", p.Plist); err != nil {
		return fmt.Errorf("loading plist: %w", err)
	}
	fmt.Fprintln(out, "service loaded and will start on login")
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading binary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	if err := os.WriteFile(dst, data, mode); err != nil {
		return fmt.Errorf("copying binary to %s: %w", dst, err)
	}
	return nil
}

// seedConfig copies envFile to configFile when configFile does not exist.
func seedConfig(envFile, configFile string) (bool, error) {
	if _, err := os.Stat(configFile); err == nil {
		return false, nil
	}
	data, err := os.ReadFile(envFile)
	if err != nil {
		return false, nil // nothing to seed from
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
		return false, fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(configFile, data, 0o600); err != nil {
		return false, fmt.Errorf("writing config: %w", err)
	}
	return true, nil
}

// resolveWorkDir keeps the current directory when the configured database
// path is relative, since the service resolves it from there. Otherwise it
// runs from the config directory.
func resolveWorkDir(configFile string) string {
	env, _ := godotenv.Read(configFile)
	if dbPath, ok := env["DATABASE_PATH"]; ok && !filepath.IsAbs(dbPath) {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return filepath.Dir(configFile)
}

// Uninstall unloads and removes the plist and the installed binary.
func Uninstall(out io.Writer) error {
	p := defaultPaths()
	if _, err := os.Stat(p.Plist); err == nil {
		if err := launchctl("unload", p.Plist); err != nil {
			fmt.Fprintf(out, "warning: unload failed: %v\n", err)
		}
		if err := os.Remove(p.Plist); err != nil {
			return fmt.Errorf("removing plist: %w", err)
		}
		fmt.Fprintf(out, "removed %s\n", p.Plist)
	}
	if _, err := os.Stat(binDest); err == nil {
		if err := os.Remove(binDest); err != nil {
			return fmt.Errorf("removing binary: %w", err)
		}
		fmt.Fprintf(out, "removed %s\n", binDest)
	}
	fmt.Fprintln(out, "uninstalled")
	return nil
}

func Start() error { return launchctl("start", label) }
func Stop() error  { return launchctl("stop", label) }

func Restart() error {
	_ = Stop()
	return Start()
}

// Status prints launchctl's view of the agent, or a note that it is not loaded.
func Status(out io.Writer) error {
	cmd := exec.Command("launchctl", "list", label)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		fmt.Fprintln(out, "service is not loaded")
	}
	return nil
}

// Logs tails both log files until interrupted.
func Logs(out io.Writer) error {
	p := defaultPaths()
	cmd := exec.Command("tail", "-f", p.StdoutLog, p.StderrLog)
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

func launchctl(args ...string) error {
	cmd := exec.Command("launchctl", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("launchctl %s: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return nil
}

var plistTemplate = template.Must(template.New("plist").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{.BinPath}}</string>
		<string>run</string>
	</array>
	<key>EnvironmentVariables</key>
	<dict>
		<key>LOG_MODE</key>
		<string>prod</string>
	</dict>
	<key>WorkingDirectory</key>
	<string>{{.WorkDir}}</string>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>StandardOutPath</key>
	<string>{{.StdoutLog}}</string>
	<key>StandardErrorPath</key>
	<string>{{.StderrLog}}</string>
</dict>
</plist>
`))

func renderPlist(p Paths, binPath, workDir string) (string, error) {
	var buf bytes.Buffer
	err := plistTemplate.Execute(&buf, struct {
		Label, BinPath, WorkDir, StdoutLog, StderrLog string
	}{label, binPath, workDir, p.StdoutLog, p.StderrLog})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
