package locations

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultCacheDir holds downloaded location catalogs
const DefaultCacheDir = "~/.cache/placeimages/locations"

// DownloadConfig configures catalog downloading
type DownloadConfig struct {
	CacheDir      string `mapstructure:"cache_dir"`
	ForceDownload bool   `mapstructure:"force_download"`
	Token         string `mapstructure:"token"` // bearer token for private catalogs
}

// Downloader fetches remote location catalogs and caches them on disk
type Downloader struct {
	config     DownloadConfig
	httpClient *http.Client
}

// NewDownloader creates a new catalog downloader
func NewDownloader(config DownloadConfig) *Downloader {
	if config.CacheDir == "" {
		config.CacheDir = DefaultCacheDir
	}

	// Expand ~ to home directory
	if strings.HasPrefix(config.CacheDir, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			config.CacheDir = filepath.Join(homeDir, config.CacheDir[1:])
		}
	}

	return &Downloader{
		config:     config,
		httpClient: &http.Client{},
	}
}

// IsRemote reports whether source names an http(s) catalog
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch returns a local path for source, downloading remote catalogs into the
// cache first. Local paths are returned unchanged.
func (d *Downloader) Fetch(ctx context.Context, source string) (string, error) {
	if !IsRemote(source) {
		return source, nil
	}

	cachedPath, err := d.CachePath(source)
	if err != nil {
		return "", err
	}

	if !d.config.ForceDownload {
		if _, err := os.Stat(cachedPath); err == nil {
			slog.Info("Using cached location catalog", "path", cachedPath)
			return cachedPath, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(cachedPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	slog.Info("Downloading location catalog", "url", source)
	if err := d.downloadFile(ctx, source, cachedPath); err != nil {
		return "", fmt.Errorf("failed to download location catalog: %w", err)
	}

	slog.Info("Location catalog downloaded", "path", cachedPath)
	return cachedPath, nil
}

// CachePath returns where a remote catalog is cached: <cache>/<host>/<url path>
func (d *Downloader) CachePath(source string) (string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("invalid catalog url %q: %w", source, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("catalog url %q does not name a file", source)
	}
	return filepath.Join(d.config.CacheDir, u.Host, filepath.FromSlash(path.Clean(u.Path))), nil
}

func (d *Downloader) downloadFile(ctx context.Context, source, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if d.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+d.config.Token)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	// Write to a temporary file and move it into place once complete
	tempPath := destPath + ".tmp"
	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("download failed: %w", err)
	}
	slog.Debug("Downloaded location catalog", "bytes", written)

	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move file: %w", err)
	}

	return nil
}

// LoadOrDownload returns a loader for source, downloading it first when remote
func LoadOrDownload(ctx context.Context, source string, config DownloadConfig) (*Loader, error) {
	localPath, err := NewDownloader(config).Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	return NewLoader(localPath), nil
}
