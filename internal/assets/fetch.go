package assets

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; rv:109.0) Gecko/20100101 Firefox/115.0"

// Fetcher downloads remote assets into a cache directory. A cached file is reused without a request.
type Fetcher struct {
	Client   *http.Client
	CacheDir string
	Retries  int           // extra attempts after the first
	Backoff  time.Duration // doubled after each failed attempt
}

// NewFetcher returns a fetcher with a 60 second client timeout.
func NewFetcher(cacheDir string, retries int) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: 60 * time.Second},
		CacheDir: cacheDir,
		Retries:  retries,
		Backoff:  250 * time.Millisecond,
	}
}

// IsRemote reports whether src is an http(s) URL.
func IsRemote(src string) bool {
	s := strings.ToLower(src)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// errPermanent marks a response that retrying will not fix.
var errPermanent = errors.New("permanent")

// Fetch returns a local path for url, downloading it on first use.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if cached := f.cachedPath(url); cached != "" {
		return cached, nil
	}
	wait := f.Backoff
	var err error
	for attempt := 0; attempt <= f.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("fetch %s: %w", url, ctx.Err())
			case <-time.After(wait):
			}
			wait *= 2
		}
		var path string
		path, err = f.download(ctx, url)
		if err == nil {
			return path, nil
		}
		if errors.Is(err, errPermanent) || ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("fetch %s: %w", url, err)
}

// cachedPath finds an earlier download of url, whatever extension it was saved with.
func (f *Fetcher) cachedPath(url string) string {
	matches, _ := filepath.Glob(filepath.Join(f.CacheDir, cacheStem(url)+".*"))
	for _, m := range matches {
		if strings.HasSuffix(m, ".part") {
			continue
		}
		if fi, err := os.Stat(m); err == nil && fi.Size() > 0 {
			return m
		}
	}
	return ""
}

func (f *Fetcher) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errPermanent, err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("HTTP %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			err = fmt.Errorf("%w: %w", errPermanent, err)
		}
		return "", err
	}
	ext := extensionFromURL(url)
	if ext == "" {
		ext = extensionFromContentType(resp.Header.Get("Content-Type"))
	}
	if ext == "" {
		ext = ".bin"
	}
	if err := os.MkdirAll(f.CacheDir, 0755); err != nil {
		return "", fmt.Errorf("%w: %w", errPermanent, err)
	}
	savedPath := filepath.Join(f.CacheDir, cacheStem(url)+ext)
	tmp := savedPath + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errPermanent, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, savedPath); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return savedPath, nil
}

// cacheStem is a readable name plus a short hash so distinct URLs with the same basename do not collide.
func cacheStem(url string) string {
	sum := sha1.Sum([]byte(url))
	return sanitizeFilename(filenameFromURL(url)) + "-" + hex.EncodeToString(sum[:4])
}

func extensionFromContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = ct[:idx]
	}
	switch {
	case strings.Contains(ct, "gltf-binary"):
		return ".glb"
	case strings.Contains(ct, "gltf"):
		return ".gltf"
	case strings.Contains(ct, "png"):
		return ".png"
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return ".jpg"
	case strings.Contains(ct, "gif"):
		return ".gif"
	}
	return ""
}

func extensionFromURL(url string) string {
	ext := strings.ToLower(filepath.Ext(trimQuery(url)))
	switch ext {
	case ".glb", ".gltf", ".png", ".jpg", ".jpeg", ".gif":
		return ext
	}
	return ""
}

func filenameFromURL(url string) string {
	base := filepath.Base(trimQuery(url))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func trimQuery(url string) string {
	if idx := strings.IndexAny(url, "?#"); idx >= 0 {
		return url[:idx]
	}
	return url
}

var safeNameRe = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

func sanitizeFilename(name string) string {
	if name == "" || name == "." || name == "/" {
		return "asset"
	}
	name = safeNameRe.ReplaceAllString(name, "_")
	if len(name) > 96 {
		name = name[:96]
	}
	return name
}
