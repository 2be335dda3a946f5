// Package where resolves the directories and files lectern keeps its state in.
package where

import (
	"os"
	"path/filepath"

	"github.com/lectern-cli/lectern/constant"
	"github.com/lectern-cli/lectern/filesystem"
	"github.com/lectern-cli/lectern/key"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvConfigPath overrides the config directory.
const EnvConfigPath = "LECTERN_CONFIG_PATH"

func mkdir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the root of all persistent state: XDG_CONFIG_HOME/lectern on Linux,
// the platform equivalent elsewhere, or $LECTERN_CONFIG_PATH when set.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return mkdir(custom)
	}

	return mkdir(filepath.Join(lo.Must(os.UserConfigDir()), constant.Lectern))
}

// Cache holds rebuildable data such as query history and the release check.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return mkdir(filepath.Join(base, constant.Lectern))
}

func Logs() string {
	return mkdir(filepath.Join(Config(), "logs"))
}

// Catalog is the course catalog file, catalog.path taking precedence.
func Catalog() string {
	if path := viper.GetString(key.CatalogPath); path != "" {
		return path
	}
	return filepath.Join(Config(), "catalog.json")
}

func Session() string {
	return filepath.Join(Config(), "session.json")
}

func Enrollments() string {
	return filepath.Join(Config(), "enrollments.json")
}

func Certificates() string {
	return filepath.Join(Config(), "certificates.json")
}

// CertificateExports is where rendered certificates are written, certificate.export_dir taking precedence.
func CertificateExports() string {
	if dir := viper.GetString(key.CertificateExportDir); dir != "" {
		return mkdir(dir)
	}
	return mkdir(filepath.Join(Config(), "certificates"))
}

func Comments() string {
	return filepath.Join(Config(), "comments.json")
}

func Queries() string {
	return filepath.Join(Cache(), "queries.json")
}

// Temp is the scratch directory for player sockets.
func Temp() string {
	return mkdir(filepath.Join(os.TempDir(), constant.Lectern))
}
