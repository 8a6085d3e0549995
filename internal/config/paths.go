// ABOUTME: Standard filesystem paths for pi-go hook settings and extensions
// ABOUTME: Resolves ~/.pi-go/ for user-global and .pi-go/ for project-local paths

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName    = ".pi-go"
	projectDirName   = ".pi-go"
	extensionsDir    = "extensions"
	extensionHookYML = "hooks.yaml"
)

// GlobalDir returns the user-global config directory (~/.pi-go/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.pi-go/ in projectRoot).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// UserSettingsFile returns the path to the user settings file.
func UserSettingsFile() string {
	return filepath.Join(GlobalDir(), "settings.json")
}

// UserSettingsFileIn returns the user settings file under home, or "" when
// home is unknown.
func UserSettingsFileIn(home string) string {
	if home == "" {
		return ""
	}
	return filepath.Join(home, globalDirName, "settings.json")
}

// ProjectSettingsFile returns the path to the project settings file.
func ProjectSettingsFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "settings.json")
}

// LocalSettingsFile returns the path to the local (gitignored) settings file.
func LocalSettingsFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "settings.local.json")
}

// ExtensionDirs returns the directories scanned for extension hook
// manifests: project-local first, then user-global.
func ExtensionDirs(projectRoot, home string) []string {
	dirs := []string{filepath.Join(ProjectDir(projectRoot), extensionsDir)}
	if home != "" {
		dirs = append(dirs, filepath.Join(home, globalDirName, extensionsDir))
	}
	return dirs
}
