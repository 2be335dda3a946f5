// Package version checks GitHub for newer lectern releases.
package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/lectern-cli/lectern/constant"
	"github.com/lectern-cli/lectern/internal/store"
	"github.com/lectern-cli/lectern/util"
	"github.com/lectern-cli/lectern/where"
)

var latest = store.New(
	func() string { return filepath.Join(where.Cache(), "version.json") },
	func() string { return "" },
	store.WithLifetime[string](48*time.Hour),
)

// Latest returns the newest released version, consulting GitHub at most every two days.
func Latest() (string, error) {
	cached, err := latest.Load()
	if err != nil {
		return "", err
	}
	if cached != "" {
		return cached, nil
	}

	resp, err := http.Get(fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", constant.Repository))
	if err != nil {
		return "", err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release lookup: %s", resp.Status)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}

	version := strings.TrimPrefix(release.TagName, "v")
	_ = latest.Save(version)
	return version, nil
}
